package game

import (
	"github.com/mkehrer/monopoly-server/platform/board"
)

// Purchase reports a completed property buy.
type Purchase struct {
	PlayerID  string `json:"playerId"`
	Position  int    `json:"position"`
	FieldName string `json:"fieldName"`
	Price     int    `json:"price"`
}

// BuyProperty accepts a pending buy offer at list price and, unless a double
// keeps the turn open, arms the turn transition.
func (g *Game) BuyProperty(playerID string, position int) (*Purchase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}
	f, err := board.FieldAt(position)
	if err != nil || !f.Purchasable() {
		return nil, ErrNotPurchasable
	}
	if _, owned := g.ownership[position]; owned {
		return nil, ErrAlreadyOwned
	}
	if !cur.RemoveMoney(f.Price) {
		return nil, ErrNotEnoughMoney
	}
	g.ownership[position] = cur.ID
	cur.AddHolding(f)

	if g.lastRoll == nil || !g.lastRoll.IsDouble {
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	}
	return &Purchase{PlayerID: cur.ID, Position: position, FieldName: f.Name, Price: f.Price}, nil
}

// DeclineProperty refuses a buy offer. Declining an unowned purchasable field
// opens an auction among all active players; otherwise the turn just moves on.
func (g *Game) DeclineProperty(playerID string) (*Auction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}
	f, err := board.FieldAt(cur.Position)
	if err == nil && f.Purchasable() {
		if _, owned := g.ownership[f.Position]; !owned && g.auction == nil {
			a := g.startAuction(f.Position, f.Name)
			return &a, nil
		}
	}
	if g.lastRoll == nil || !g.lastRoll.IsDouble {
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	}
	return nil, nil
}
