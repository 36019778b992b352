package game

import (
	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

// TradeTerms lists what each side puts on the table. Properties are board
// positions; mortgage flags travel with the field.
type TradeTerms struct {
	InitiatorMoney      int   `json:"initiatorMoney"`
	InitiatorProperties []int `json:"initiatorProperties"`
	TargetMoney         int   `json:"targetMoney"`
	TargetProperties    []int `json:"targetProperties"`
}

type TradeOffer struct {
	ID            int        `json:"id"`
	InitiatorID   string     `json:"initiatorId"`
	InitiatorName string     `json:"initiatorName"`
	TargetID      string     `json:"targetId"`
	TargetName    string     `json:"targetName"`
	Terms         TradeTerms `json:"terms"`
	Status        string     `json:"status"`
}

// InitiateTrade validates and registers a pending offer. Nothing moves yet.
func (g *Game) InitiateTrade(initiatorID, targetID string, terms TradeTerms) (*TradeOffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	if initiatorID == targetID {
		return nil, ErrSelfTrade
	}
	initiator := g.player(initiatorID)
	target := g.player(targetID)
	if initiator == nil || target == nil || initiator.IsBankrupt || target.IsBankrupt {
		return nil, ErrPlayerNotFound
	}
	offersSomething := terms.InitiatorMoney > 0 || len(terms.InitiatorProperties) > 0
	asksSomething := terms.TargetMoney > 0 || len(terms.TargetProperties) > 0
	if !offersSomething || !asksSomething {
		return nil, ErrEmptyTrade
	}
	if err := g.validateTradeSide(initiator, terms.InitiatorMoney, terms.InitiatorProperties); err != nil {
		return nil, err
	}
	if err := g.validateTradeSide(target, terms.TargetMoney, terms.TargetProperties); err != nil {
		return nil, err
	}

	g.tradeSeq++
	offer := &TradeOffer{
		ID:            g.tradeSeq,
		InitiatorID:   initiator.ID,
		InitiatorName: initiator.Name,
		TargetID:      target.ID,
		TargetName:    target.Name,
		Terms:         terms,
		Status:        "pending",
	}
	g.trades[offer.ID] = offer
	out := *offer
	return &out, nil
}

// validateTradeSide checks solvency and exact ownership of every listed
// position; fields with buildings cannot be traded.
func (g *Game) validateTradeSide(p *models.Player, money int, positions []int) error {
	if money < 0 || money > p.Money {
		return ErrNotEnoughMoney
	}
	seen := map[int]bool{}
	for _, pos := range positions {
		if seen[pos] {
			return ErrNotOwner
		}
		seen[pos] = true
		f, err := board.FieldAt(pos)
		if err != nil || !f.Purchasable() {
			return ErrNotPurchasable
		}
		if g.ownership[pos] != p.ID {
			return ErrNotOwner
		}
		if b := g.buildings[pos]; b != nil && (b.Houses > 0 || b.Hotel) {
			return ErrHasBuildings
		}
	}
	return nil
}

// AcceptTrade re-validates both sides and commits the swap atomically: either
// everything moves or nothing does.
func (g *Game) AcceptTrade(tradeID int, playerID string) (*TradeOffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	offer := g.trades[tradeID]
	if offer == nil {
		return nil, ErrTradeNotFound
	}
	if offer.Status != "pending" {
		return nil, ErrTradeClosed
	}
	if offer.TargetID != playerID {
		return nil, ErrNotTradeTarget
	}
	initiator := g.player(offer.InitiatorID)
	target := g.player(offer.TargetID)
	if initiator == nil || target == nil || initiator.IsBankrupt || target.IsBankrupt {
		offer.Status = "failed"
		delete(g.trades, tradeID)
		return nil, ErrPlayerNotFound
	}
	if err := g.validateTradeSide(initiator, offer.Terms.InitiatorMoney, offer.Terms.InitiatorProperties); err != nil {
		offer.Status = "failed"
		delete(g.trades, tradeID)
		return nil, err
	}
	if err := g.validateTradeSide(target, offer.Terms.TargetMoney, offer.Terms.TargetProperties); err != nil {
		offer.Status = "failed"
		delete(g.trades, tradeID)
		return nil, err
	}

	initiator.Money -= offer.Terms.InitiatorMoney
	target.AddMoney(offer.Terms.InitiatorMoney)
	target.Money -= offer.Terms.TargetMoney
	initiator.AddMoney(offer.Terms.TargetMoney)
	g.transferPositions(initiator, target, offer.Terms.InitiatorProperties)
	g.transferPositions(target, initiator, offer.Terms.TargetProperties)

	offer.Status = "completed"
	delete(g.trades, tradeID)
	out := *offer
	return &out, nil
}

func (g *Game) transferPositions(from, to *models.Player, positions []int) {
	for _, pos := range positions {
		f, err := board.FieldAt(pos)
		if err != nil {
			continue
		}
		from.RemoveHolding(f)
		to.AddHolding(f)
		g.ownership[pos] = to.ID
	}
}

// RejectTrade declines a pending offer. Target only.
func (g *Game) RejectTrade(tradeID int, playerID string) (*TradeOffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	offer := g.trades[tradeID]
	if offer == nil {
		return nil, ErrTradeNotFound
	}
	if offer.Status != "pending" {
		return nil, ErrTradeClosed
	}
	if offer.TargetID != playerID {
		return nil, ErrNotTradeTarget
	}
	offer.Status = "rejected"
	delete(g.trades, tradeID)
	out := *offer
	return &out, nil
}

// CancelTrade withdraws a pending offer. Initiator only.
func (g *Game) CancelTrade(tradeID int, playerID string) (*TradeOffer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	offer := g.trades[tradeID]
	if offer == nil {
		return nil, ErrTradeNotFound
	}
	if offer.Status != "pending" {
		return nil, ErrTradeClosed
	}
	if offer.InitiatorID != playerID {
		return nil, ErrNotTradeInitiator
	}
	offer.Status = "cancelled"
	delete(g.trades, tradeID)
	out := *offer
	return &out, nil
}
