package models

// CardAction is the closed set of card effects. Each card carries exactly one
// action plus the payload fields that action reads.
type CardAction string

const (
	CardMoveTo          CardAction = "move_to"
	CardMoveToNearest   CardAction = "move_to_nearest"
	CardMoveRelative    CardAction = "move_relative"
	CardReceiveMoney    CardAction = "receive_money"
	CardPayMoney        CardAction = "pay_money"
	CardPayAllPlayers   CardAction = "pay_all_players"
	CardReceiveFromAll  CardAction = "receive_from_all"
	CardRepairBuildings CardAction = "repair_buildings"
	CardGoToJail        CardAction = "go_to_jail"
	CardJailFreeCard    CardAction = "jail_free_card"
)

type DeckType string

const (
	DeckChance    DeckType = "chance"
	DeckCommunity DeckType = "community"
)

type Card struct {
	ID         int        `json:"id"`
	Text       string     `json:"text"`
	Action     CardAction `json:"action"`
	Target     int        `json:"target,omitempty"`
	TargetType FieldType  `json:"targetType,omitempty"`
	Steps      int        `json:"steps,omitempty"`
	Amount     int        `json:"amount,omitempty"`
	HouseCost  int        `json:"houseCost,omitempty"`
	HotelCost  int        `json:"hotelCost,omitempty"`
}
