package game

import (
	"github.com/mkehrer/monopoly-server/platform/board"
)

// MortgageResult reports a mortgage state change.
type MortgageResult struct {
	PlayerID  string `json:"playerId"`
	Position  int    `json:"position"`
	FieldName string `json:"fieldName"`
	Amount    int    `json:"amount"`
	Mortgaged bool   `json:"mortgaged"`
}

// MortgageValue is half the list price, floored.
func MortgageValue(price int) int { return price / 2 }

// UnmortgageCost is the mortgage value plus 10 percent, floored.
func UnmortgageCost(price int) int { return MortgageValue(price) * 110 / 100 }

// Mortgage pawns an owned, building-free field for half its price.
func (g *Game) Mortgage(playerID string, pos int) (*MortgageResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	p := g.player(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	f, err := board.FieldAt(pos)
	if err != nil || !f.Purchasable() {
		return nil, ErrNotPurchasable
	}
	if g.ownership[pos] != playerID {
		return nil, ErrNotOwner
	}
	if g.mortgaged[pos] {
		return nil, ErrAlreadyMortgaged
	}
	if b := g.buildings[pos]; b != nil && (b.Houses > 0 || b.Hotel) {
		return nil, ErrHasBuildings
	}
	value := MortgageValue(f.Price)
	p.AddMoney(value)
	g.mortgaged[pos] = true
	return &MortgageResult{PlayerID: p.ID, Position: pos, FieldName: f.Name, Amount: value, Mortgaged: true}, nil
}

// Unmortgage redeems a mortgaged field for the mortgage value plus interest.
func (g *Game) Unmortgage(playerID string, pos int) (*MortgageResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	p := g.player(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	f, err := board.FieldAt(pos)
	if err != nil || !f.Purchasable() {
		return nil, ErrNotPurchasable
	}
	if g.ownership[pos] != playerID {
		return nil, ErrNotOwner
	}
	if !g.mortgaged[pos] {
		return nil, ErrNotMortgaged
	}
	cost := UnmortgageCost(f.Price)
	if !p.RemoveMoney(cost) {
		return nil, ErrNotEnoughMoney
	}
	delete(g.mortgaged, pos)
	return &MortgageResult{PlayerID: p.ID, Position: pos, FieldName: f.Name, Amount: cost, Mortgaged: false}, nil
}
