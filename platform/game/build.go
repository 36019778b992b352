package game

import (
	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

// BuildResult reports a completed house/hotel build or sale.
type BuildResult struct {
	PlayerID   string `json:"playerId"`
	Position   int    `json:"position"`
	FieldName  string `json:"fieldName"`
	Cost       int    `json:"cost,omitempty"`
	Refund     int    `json:"refund,omitempty"`
	Houses     int    `json:"houses"`
	Hotel      bool   `json:"hotel"`
	AutoHotel  bool   `json:"autoHotel,omitempty"`
	BankHouses int    `json:"bankHouses"`
	BankHotels int    `json:"bankHotels"`
}

func (g *Game) buildings4(pos int) *Buildings {
	b := g.buildings[pos]
	if b == nil {
		b = &Buildings{}
		g.buildings[pos] = b
	}
	return b
}

// level is the build level used for even-build checks; a hotel counts as five
// houses.
func (g *Game) level(pos int) int {
	b := g.buildings[pos]
	if b == nil {
		return 0
	}
	if b.Hotel {
		return 5
	}
	return b.Houses
}

func (g *Game) checkBuildable(playerID string, pos int) (*models.Player, models.Field, error) {
	p := g.player(playerID)
	if p == nil {
		return nil, models.Field{}, ErrPlayerNotFound
	}
	f, err := board.FieldAt(pos)
	if err != nil || f.Type != models.FieldProperty {
		return nil, models.Field{}, ErrNotProperty
	}
	if g.ownership[pos] != playerID {
		return nil, models.Field{}, ErrNotOwner
	}
	if g.mortgaged[pos] {
		return nil, models.Field{}, ErrMortgaged
	}
	if !g.hasMonopoly(playerID, f.Color) {
		return nil, models.Field{}, ErrNoMonopoly
	}
	return p, f, nil
}

// BuildHouse adds one house. Building the fourth house while the bank has a
// hotel converts the field straight to a hotel: the player pays one house
// cost, three houses go back to the bank and one hotel comes out.
func (g *Game) BuildHouse(playerID string, pos int) (*BuildResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	p, f, err := g.checkBuildable(playerID, pos)
	if err != nil {
		return nil, err
	}
	b := g.buildings4(pos)
	if b.Hotel {
		return nil, ErrHotelPresent
	}
	// Even-build: this field must be at the lowest level of its group.
	for _, gf := range board.ColorGroup(f.Color) {
		if g.level(gf.Position) < b.Houses {
			return nil, ErrUnevenBuild
		}
	}
	if p.Money < f.HouseCost {
		return nil, ErrNotEnoughMoney
	}

	if b.Houses == 3 {
		if g.hotels == 0 {
			return nil, ErrNoHotelsLeft
		}
		p.Money -= f.HouseCost
		b.Houses = 0
		b.Hotel = true
		g.hotels--
		g.houses += 3
		p.Houses -= 3
		p.Hotels++
		return &BuildResult{
			PlayerID: p.ID, Position: pos, FieldName: f.Name, Cost: f.HouseCost,
			Hotel: true, AutoHotel: true, BankHouses: g.houses, BankHotels: g.hotels,
		}, nil
	}

	if g.houses == 0 {
		return nil, ErrNoHousesLeft
	}
	p.Money -= f.HouseCost
	b.Houses++
	g.houses--
	p.Houses++
	return &BuildResult{
		PlayerID: p.ID, Position: pos, FieldName: f.Name, Cost: f.HouseCost,
		Houses: b.Houses, BankHouses: g.houses, BankHotels: g.hotels,
	}, nil
}

// BuildHotel upgrades four houses to a hotel explicitly. Kept alongside the
// automatic conversion for clients that issue the dedicated action.
func (g *Game) BuildHotel(playerID string, pos int) (*BuildResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	p, f, err := g.checkBuildable(playerID, pos)
	if err != nil {
		return nil, err
	}
	b := g.buildings4(pos)
	if b.Hotel {
		return nil, ErrHotelPresent
	}
	if b.Houses != 4 {
		return nil, ErrNeedsFourHouses
	}
	for _, gf := range board.ColorGroup(f.Color) {
		if g.level(gf.Position) < 4 {
			return nil, ErrNeedsFourHouses
		}
	}
	if g.hotels == 0 {
		return nil, ErrNoHotelsLeft
	}
	if p.Money < f.HouseCost {
		return nil, ErrNotEnoughMoney
	}
	p.Money -= f.HouseCost
	b.Houses = 0
	b.Hotel = true
	g.hotels--
	g.houses += 4
	p.Houses -= 4
	p.Hotels++
	return &BuildResult{
		PlayerID: p.ID, Position: pos, FieldName: f.Name, Cost: f.HouseCost,
		Hotel: true, BankHouses: g.houses, BankHotels: g.hotels,
	}, nil
}

// SellHouse removes one house for half its cost. Even-sell: only the highest
// level fields of the group may sell.
func (g *Game) SellHouse(playerID string, pos int) (*BuildResult, error) {
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
	if err != nil || f.Type != models.FieldProperty {
		return nil, ErrNotProperty
	}
	if g.ownership[pos] != playerID {
		return nil, ErrNotOwner
	}
	b := g.buildings[pos]
	if b == nil || b.Hotel || b.Houses == 0 {
		return nil, ErrNoHouses
	}
	for _, gf := range board.ColorGroup(f.Color) {
		if g.level(gf.Position) > b.Houses {
			return nil, ErrUnevenSell
		}
	}
	refund := f.HouseCost / 2
	b.Houses--
	g.houses++
	p.Houses--
	p.AddMoney(refund)
	if b.Houses == 0 {
		delete(g.buildings, pos)
	}
	houses := 0
	if bb := g.buildings[pos]; bb != nil {
		houses = bb.Houses
	}
	return &BuildResult{
		PlayerID: p.ID, Position: pos, FieldName: f.Name, Refund: refund,
		Houses: houses, BankHouses: g.houses, BankHotels: g.hotels,
	}, nil
}

// SellHotel turns a hotel back into three houses for half a house cost. Needs
// three houses in the bank, and the hotel must be either the only one in the
// group or part of an all-hotel group.
func (g *Game) SellHotel(playerID string, pos int) (*BuildResult, error) {
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
	if err != nil || f.Type != models.FieldProperty {
		return nil, ErrNotProperty
	}
	if g.ownership[pos] != playerID {
		return nil, ErrNotOwner
	}
	b := g.buildings[pos]
	if b == nil || !b.Hotel {
		return nil, ErrNoHotel
	}
	if g.houses < 3 {
		return nil, ErrBankHousesShort
	}
	group := board.ColorGroup(f.Color)
	hotelsInGroup := 0
	for _, gf := range group {
		if gb := g.buildings[gf.Position]; gb != nil && gb.Hotel {
			hotelsInGroup++
		}
	}
	if hotelsInGroup != 1 && hotelsInGroup != len(group) {
		return nil, ErrUnevenSell
	}
	refund := f.HouseCost / 2
	b.Hotel = false
	b.Houses = 3
	g.hotels++
	g.houses -= 3
	p.Hotels--
	p.Houses += 3
	p.AddMoney(refund)
	return &BuildResult{
		PlayerID: p.ID, Position: pos, FieldName: f.Name, Refund: refund,
		Houses: 3, BankHouses: g.houses, BankHotels: g.hotels,
	}, nil
}
