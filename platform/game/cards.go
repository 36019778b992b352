package game

import (
	"fmt"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

// DrawCard takes the next card off the cyclic deck. The deck is reshuffled
// whenever the cursor wraps around.
func (g *Game) DrawCard(playerID string, deck models.DeckType) (models.Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return models.Card{}, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return models.Card{}, ErrNotYourTurn
	}
	switch deck {
	case models.DeckChance:
		card := g.chanceDeck[g.chanceIdx]
		g.chanceIdx++
		if g.chanceIdx >= len(g.chanceDeck) {
			g.chanceIdx = 0
			g.shuffle(g.chanceDeck)
		}
		return card, nil
	case models.DeckCommunity:
		card := g.communityDeck[g.communityIdx]
		g.communityIdx++
		if g.communityIdx >= len(g.communityDeck) {
			g.communityIdx = 0
			g.shuffle(g.communityDeck)
		}
		return card, nil
	}
	return models.Card{}, ErrUnknownDeck
}

// CardResult is the applied card effect plus any follow-up landing events.
type CardResult struct {
	Card   models.Card `json:"card"`
	Events []Event     `json:"events"`
}

// ExecuteCardAction applies a drawn card to the current player. Movement
// cards run the landing pipeline on the new field, so a card can chain into
// rent, another draw requirement, or jail.
func (g *Game) ExecuteCardAction(playerID string, card models.Card) (*CardResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}

	res := &CardResult{Card: card}
	switch card.Action {
	case models.CardMoveTo:
		steps := card.Target - cur.Position
		if steps <= 0 {
			steps += board.Size
		}
		mv := g.movePlayer(cur, steps)
		res.Events = append(res.Events, Event{Type: EventMoved, PlayerID: cur.ID, Position: mv.To, Move: &mv})
		res.Events = append(res.Events, g.handleLanding(cur)...)

	case models.CardMoveToNearest:
		target := g.nearestOfType(cur.Position, card.TargetType)
		if target == -1 {
			return nil, ErrUnknownCard
		}
		steps := target - cur.Position
		if steps <= 0 {
			steps += board.Size
		}
		mv := g.movePlayer(cur, steps)
		res.Events = append(res.Events, Event{Type: EventMoved, PlayerID: cur.ID, Position: mv.To, Move: &mv})
		res.Events = append(res.Events, g.handleLanding(cur)...)

	case models.CardMoveRelative:
		mv := g.movePlayer(cur, card.Steps)
		res.Events = append(res.Events, Event{Type: EventMoved, PlayerID: cur.ID, Position: mv.To, Move: &mv})
		res.Events = append(res.Events, g.handleLanding(cur)...)

	case models.CardReceiveMoney:
		cur.AddMoney(card.Amount)
		res.Events = append(res.Events, Event{
			Type: EventMoneyReceived, PlayerID: cur.ID, Amount: card.Amount,
			Message: fmt.Sprintf("%s erhält %d M", cur.Name, card.Amount),
		})

	case models.CardPayMoney:
		res.Events = append(res.Events, g.cardPayToPot(cur, card.Amount, card.Text)...)

	case models.CardPayAllPlayers:
		res.Events = append(res.Events, g.cardPayAll(cur, card.Amount, card.Text)...)

	case models.CardReceiveFromAll:
		sum := 0
		for _, other := range g.players {
			if other.ID == cur.ID || other.IsBankrupt {
				continue
			}
			pay := card.Amount
			if pay > other.Money {
				pay = other.Money
			}
			other.Money -= pay
			sum += pay
		}
		cur.AddMoney(sum)
		res.Events = append(res.Events, Event{
			Type: EventReceivedFromAll, PlayerID: cur.ID, Amount: sum,
			Message: fmt.Sprintf("%s erhält %d M von den Mitspielern", cur.Name, sum),
		})

	case models.CardRepairBuildings:
		cost := cur.Houses*card.HouseCost + cur.Hotels*card.HotelCost
		if cost > 0 {
			res.Events = append(res.Events, g.cardPayToPot(cur, cost, card.Text)...)
		} else {
			res.Events = append(res.Events, Event{Type: EventRepairsPaid, PlayerID: cur.ID, Amount: 0})
		}

	case models.CardGoToJail:
		g.doubles = 0
		jr := cur.GoToJail()
		ev := Event{PlayerID: cur.ID, Jail: &jr}
		if jr.UsedFreeCard {
			ev.Type = EventJailFreeCardUsed
			ev.Message = fmt.Sprintf("%s nutzt einen Freibrief", cur.Name)
		} else {
			ev.Type = EventSentToJail
			ev.Message = fmt.Sprintf("%s muss ins Gefängnis", cur.Name)
		}
		res.Events = append(res.Events, ev)

	case models.CardJailFreeCard:
		cur.JailFreeCards++
		res.Events = append(res.Events, Event{
			Type: EventJailFreeCardGranted, PlayerID: cur.ID, Amount: cur.JailFreeCards,
			Message: fmt.Sprintf("%s erhält einen Freibrief", cur.Name),
		})

	default:
		return nil, ErrUnknownCard
	}

	// Turn control: a jailed player's turn ends; otherwise the usual rules
	// apply (doubles keep the turn open, unresolved events suspend it).
	if cur.InJail {
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	} else if !interactive(res.Events) && (g.lastRoll == nil || !g.lastRoll.IsDouble) {
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	}
	return res, nil
}

// cardPayToPot pays a card obligation into the free-parking pot, with the
// standard shortfall handling.
func (g *Game) cardPayToPot(p *models.Player, amount int, reason string) []Event {
	if p.Money >= amount {
		p.Money -= amount
		g.pot += amount
		return []Event{{
			Type: EventMoneyPaid, PlayerID: p.ID, Amount: amount, Pot: g.pot,
			Message: fmt.Sprintf("%s zahlt %d M", p.Name, amount),
		}}
	}
	if req := g.assessShortfall(p, amount, paymentCard, 0, 0, reason); req != nil {
		return []Event{{Type: EventLiquidationRequired, PlayerID: p.ID, Amount: amount, Liquidation: req}}
	}
	partial := p.Money
	p.Money = 0
	g.pot += partial
	events := []Event{{Type: EventMoneyPaid, PlayerID: p.ID, Amount: partial, Pot: g.pot}}
	return append(events, g.bankruptPlayer(p)...)
}

func (g *Game) cardPayAll(p *models.Player, perPlayer int, reason string) []Event {
	var others []*models.Player
	for _, other := range g.players {
		if other.ID != p.ID && !other.IsBankrupt {
			others = append(others, other)
		}
	}
	total := perPlayer * len(others)
	if total == 0 {
		return nil
	}
	if p.Money >= total {
		p.Money -= total
		for _, other := range others {
			other.AddMoney(perPlayer)
		}
		return []Event{{
			Type: EventPaidAllPlayers, PlayerID: p.ID, Amount: total,
			Message: fmt.Sprintf("%s zahlt jedem Spieler %d M", p.Name, perPlayer),
		}}
	}
	if req := g.assessShortfall(p, total, paymentPayAll, 0, perPlayer, reason); req != nil {
		return []Event{{Type: EventLiquidationRequired, PlayerID: p.ID, Amount: total, Liquidation: req}}
	}
	// Bankrupt: split the remaining cash evenly, the rest is lost.
	share := p.Money / len(others)
	for _, other := range others {
		other.AddMoney(share)
	}
	p.Money = 0
	events := []Event{{Type: EventPaidAllPlayers, PlayerID: p.ID, Amount: share * len(others)}}
	return append(events, g.bankruptPlayer(p)...)
}

// nearestOfType finds the next field of the given type ahead of pos.
func (g *Game) nearestOfType(pos int, t models.FieldType) int {
	for i := 1; i <= board.Size; i++ {
		cand := (pos + i) % board.Size
		if f, err := board.FieldAt(cand); err == nil && f.Type == t {
			return cand
		}
	}
	return -1
}
