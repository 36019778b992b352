package game

import (
	"fmt"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

type EventType string

const (
	EventRentPaid            EventType = "rent_paid"
	EventBuyOffer            EventType = "buy_offer"
	EventTaxPaid             EventType = "tax_paid"
	EventSentToJail          EventType = "sent_to_jail"
	EventJailFreeCardUsed    EventType = "jail_free_card_used"
	EventDrawCardRequired    EventType = "draw_card_required"
	EventFreeParking         EventType = "free_parking"
	EventLiquidationRequired EventType = "liquidation_required"
	EventPlayerBankrupt      EventType = "player_bankrupt"
	EventGameOver            EventType = "game_over"

	EventMoved               EventType = "moved"
	EventMoneyReceived       EventType = "money_received"
	EventMoneyPaid           EventType = "money_paid"
	EventPaidAllPlayers      EventType = "paid_all_players"
	EventReceivedFromAll     EventType = "received_from_all"
	EventRepairsPaid         EventType = "repairs_paid"
	EventJailFreeCardGranted EventType = "jail_free_card_granted"
)

// Event is one entry of the landing/card pipeline outcome. Message carries the
// human-readable log line shown in the client event feed.
type Event struct {
	Type        EventType           `json:"type"`
	PlayerID    string              `json:"playerId,omitempty"`
	Position    int                 `json:"position,omitempty"`
	FieldName   string              `json:"fieldName,omitempty"`
	Amount      int                 `json:"amount,omitempty"`
	OwnerID     string              `json:"ownerId,omitempty"`
	Deck        models.DeckType     `json:"deck,omitempty"`
	Pot         int                 `json:"pot,omitempty"`
	Move        *MoveResult         `json:"move,omitempty"`
	Jail        *models.JailResult  `json:"jail,omitempty"`
	Liquidation *LiquidationRequest `json:"liquidation,omitempty"`
	WinnerID    string              `json:"winnerId,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// interactive reports whether any event leaves the turn waiting on a player
// decision, which suppresses the deferred turn transition.
func interactive(events []Event) bool {
	for _, ev := range events {
		switch ev.Type {
		case EventBuyOffer, EventDrawCardRequired, EventLiquidationRequired:
			return true
		}
	}
	return false
}

// handleLanding runs the field pipeline for the player's current position.
func (g *Game) handleLanding(p *models.Player) []Event {
	f, err := board.FieldAt(p.Position)
	if err != nil {
		return nil
	}

	switch {
	case f.Purchasable():
		owner, owned := g.ownership[f.Position]
		if !owned {
			return []Event{{
				Type:      EventBuyOffer,
				PlayerID:  p.ID,
				Position:  f.Position,
				FieldName: f.Name,
				Amount:    f.Price,
				Message:   fmt.Sprintf("%s kann %s für %d M kaufen", p.Name, f.Name, f.Price),
			}}
		}
		if owner == p.ID {
			return nil
		}
		return g.payRent(p, f, owner)

	case f.Type == models.FieldTax:
		return g.payTax(p, f)

	case f.Type == models.FieldGoToJail:
		g.doubles = 0
		jr := p.GoToJail()
		ev := Event{PlayerID: p.ID, Jail: &jr}
		if jr.UsedFreeCard {
			ev.Type = EventJailFreeCardUsed
			ev.Message = fmt.Sprintf("%s nutzt einen Freibrief", p.Name)
		} else {
			ev.Type = EventSentToJail
			ev.Message = fmt.Sprintf("%s muss ins Gefängnis", p.Name)
		}
		return []Event{ev}

	case f.Type == models.FieldChance:
		return []Event{{Type: EventDrawCardRequired, PlayerID: p.ID, Deck: models.DeckChance, FieldName: f.Name}}

	case f.Type == models.FieldCommunity:
		return []Event{{Type: EventDrawCardRequired, PlayerID: p.ID, Deck: models.DeckCommunity, FieldName: f.Name}}

	case f.Type == models.FieldFreeParking:
		if g.pot == 0 {
			return nil
		}
		amount := g.pot
		g.pot = 0
		p.AddMoney(amount)
		return []Event{{
			Type:     EventFreeParking,
			PlayerID: p.ID,
			Amount:   amount,
			Message:  fmt.Sprintf("%s kassiert %d M von Frei Parken", p.Name, amount),
		}}
	}
	return nil
}

// payRent settles rent against the owner. A shortfall turns into a pending
// liquidation request, or into bankruptcy with the remaining cash handed over
// as partial payment.
func (g *Game) payRent(p *models.Player, f models.Field, ownerID string) []Event {
	if g.mortgaged[f.Position] {
		return nil
	}
	owner := g.player(ownerID)
	if owner == nil || owner.IsBankrupt {
		return nil
	}
	rent := g.calculateRent(f, owner)
	if rent <= 0 {
		return nil
	}

	if p.Money >= rent {
		p.Money -= rent
		owner.AddMoney(rent)
		return []Event{{
			Type:      EventRentPaid,
			PlayerID:  p.ID,
			OwnerID:   ownerID,
			Position:  f.Position,
			FieldName: f.Name,
			Amount:    rent,
			Message:   fmt.Sprintf("%s zahlt %d M Miete an %s", p.Name, rent, owner.Name),
		}}
	}

	if req := g.assessShortfall(p, rent, paymentRent, f.Position, 0, fmt.Sprintf("Miete für %s", f.Name)); req != nil {
		return []Event{{Type: EventLiquidationRequired, PlayerID: p.ID, Amount: rent, Liquidation: req}}
	}

	// Not even liquidation can cover it: whatever is left goes to the owner.
	partial := p.Money
	p.Money = 0
	owner.AddMoney(partial)
	events := []Event{{
		Type:      EventRentPaid,
		PlayerID:  p.ID,
		OwnerID:   ownerID,
		Position:  f.Position,
		FieldName: f.Name,
		Amount:    partial,
		Message:   fmt.Sprintf("%s zahlt %d M Restvermögen an %s", p.Name, partial, owner.Name),
	}}
	return append(events, g.bankruptPlayer(p)...)
}

func (g *Game) payTax(p *models.Player, f models.Field) []Event {
	tax := f.Rent[0]
	if p.Money >= tax {
		p.Money -= tax
		g.pot += tax
		return []Event{{
			Type:      EventTaxPaid,
			PlayerID:  p.ID,
			Position:  f.Position,
			FieldName: f.Name,
			Amount:    tax,
			Pot:       g.pot,
			Message:   fmt.Sprintf("%s zahlt %d M %s", p.Name, tax, f.Name),
		}}
	}
	if req := g.assessShortfall(p, tax, paymentTax, f.Position, 0, f.Name); req != nil {
		return []Event{{Type: EventLiquidationRequired, PlayerID: p.ID, Amount: tax, Liquidation: req}}
	}
	partial := p.Money
	p.Money = 0
	g.pot += partial
	events := []Event{{
		Type:      EventTaxPaid,
		PlayerID:  p.ID,
		Position:  f.Position,
		FieldName: f.Name,
		Amount:    partial,
		Pot:       g.pot,
	}}
	return append(events, g.bankruptPlayer(p)...)
}

// calculateRent prices a landing on an owned, unmortgaged field.
func (g *Game) calculateRent(f models.Field, owner *models.Player) int {
	switch f.Type {
	case models.FieldRailroad:
		n := len(owner.Railroads)
		if n == 0 {
			return 0
		}
		if n > len(f.Rent) {
			n = len(f.Rent)
		}
		return f.Rent[n-1]
	case models.FieldUtility:
		sum := 0
		if g.lastRoll != nil {
			sum = g.lastRoll.Sum
		}
		if len(owner.Utilities) >= 2 {
			return sum * 10
		}
		return sum * 4
	case models.FieldProperty:
		b := g.buildings[f.Position]
		if g.hasMonopoly(owner.ID, f.Color) {
			if b != nil && b.Hotel {
				return f.Rent[5]
			}
			if b != nil && b.Houses > 0 {
				return f.Rent[b.Houses]
			}
			return f.Rent[0] * 2
		}
		return f.Rent[0]
	}
	return 0
}

// hasMonopoly reports whether the player owns the complete color group.
func (g *Game) hasMonopoly(playerID, color string) bool {
	group := board.ColorGroup(color)
	if len(group) == 0 {
		return false
	}
	for _, f := range group {
		if g.ownership[f.Position] != playerID {
			return false
		}
	}
	return true
}
