package game

import (
	"testing"
)

// buildUp raises both fields of the brown group to the given house level.
func buildUp(t *testing.T, g *Game, playerID string, level int) {
	t.Helper()
	for i := 0; i < level; i++ {
		for _, pos := range []int{1, 3} {
			if _, err := g.BuildHouse(playerID, pos); err != nil {
				t.Fatalf("BuildHouse(%d) round %d: %v", pos, i+1, err)
			}
		}
	}
}

func TestBuildRequiresMonopolyAndOwnership(t *testing.T) {
	g := newTestGame(t, 2)
	own(t, g, "p1", 1)
	if _, err := g.BuildHouse("p1", 1); err != ErrNoMonopoly {
		t.Fatalf("partial group: want ErrNoMonopoly, got %v", err)
	}
	own(t, g, "p1", 3)
	if _, err := g.BuildHouse("p2", 1); err != ErrNotOwner {
		t.Fatalf("stranger build: want ErrNotOwner, got %v", err)
	}
	if _, err := g.BuildHouse("p1", 5); err != ErrNotProperty {
		t.Fatalf("railroad build: want ErrNotProperty, got %v", err)
	}
	g.mortgaged[1] = true
	if _, err := g.BuildHouse("p1", 1); err != ErrMortgaged {
		t.Fatalf("mortgaged build: want ErrMortgaged, got %v", err)
	}
}

func TestEvenBuildAndEvenSell(t *testing.T) {
	g := newTestGame(t, 2)
	own(t, g, "p1", 1, 3)

	if _, err := g.BuildHouse("p1", 1); err != nil {
		t.Fatalf("first house: %v", err)
	}
	if _, err := g.BuildHouse("p1", 1); err != ErrUnevenBuild {
		t.Fatalf("second house on same field: want ErrUnevenBuild, got %v", err)
	}
	if _, err := g.BuildHouse("p1", 3); err != nil {
		t.Fatalf("leveling house: %v", err)
	}
	if _, err := g.BuildHouse("p1", 1); err != nil {
		t.Fatalf("second round: %v", err)
	}

	// 1 now holds two houses, 3 holds one: only 1 may sell.
	if _, err := g.SellHouse("p1", 3); err != ErrUnevenSell {
		t.Fatalf("selling the low field: want ErrUnevenSell, got %v", err)
	}
	res, err := g.SellHouse("p1", 1)
	if err != nil {
		t.Fatalf("SellHouse: %v", err)
	}
	if res.Refund != 25 || res.Houses != 1 {
		t.Fatalf("sale = %+v, want refund 25 and one house left", res)
	}
}

func TestFourthHouseConvertsToHotel(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	own(t, g, "p1", 1, 3)
	buildUp(t, g, "p1", 3)
	moneyBefore := p.Money
	housesBefore := g.houses

	res, err := g.BuildHouse("p1", 1)
	if err != nil {
		t.Fatalf("fourth house: %v", err)
	}
	if !res.AutoHotel || !res.Hotel {
		t.Fatalf("want auto hotel conversion, got %+v", res)
	}
	if p.Money != moneyBefore-50 {
		t.Fatalf("conversion cost = %d, want one house cost (50)", moneyBefore-p.Money)
	}
	// Three houses come off the field and back to the bank, one hotel leaves it.
	if g.houses != housesBefore+3 {
		t.Fatalf("bank houses = %d, want %d", g.houses, housesBefore+3)
	}
	if g.hotels != BankHotels-1 {
		t.Fatalf("bank hotels = %d, want %d", g.hotels, BankHotels-1)
	}
	b := g.buildings[1]
	if b == nil || !b.Hotel || b.Houses != 0 {
		t.Fatalf("buildings on 1 = %+v", b)
	}
	if p.Hotels != 1 || p.Houses != 3 {
		t.Fatalf("player counters: houses=%d hotels=%d, want 3/1", p.Houses, p.Hotels)
	}
}

func TestFourthHouseWithoutBankHotelFails(t *testing.T) {
	g := newTestGame(t, 2)
	own(t, g, "p1", 1, 3)
	buildUp(t, g, "p1", 3)
	g.hotels = 0
	if _, err := g.BuildHouse("p1", 1); err != ErrNoHotelsLeft {
		t.Fatalf("want ErrNoHotelsLeft, got %v", err)
	}
}

func TestBuildWithEmptyBankFails(t *testing.T) {
	g := newTestGame(t, 2)
	own(t, g, "p1", 1, 3)
	g.houses = 0
	if _, err := g.BuildHouse("p1", 1); err != ErrNoHousesLeft {
		t.Fatalf("want ErrNoHousesLeft, got %v", err)
	}
}

func TestSellHotelNeedsThreeBankHouses(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	own(t, g, "p1", 1, 3)
	g.buildings[1] = &Buildings{Hotel: true}
	g.buildings[3] = &Buildings{Hotel: true}
	p.Hotels = 2
	g.hotels -= 2

	g.houses = 2
	if _, err := g.SellHotel("p1", 1); err != ErrBankHousesShort {
		t.Fatalf("want ErrBankHousesShort, got %v", err)
	}

	g.houses = 3
	res, err := g.SellHotel("p1", 1)
	if err != nil {
		t.Fatalf("SellHotel: %v", err)
	}
	if res.Refund != 25 || res.Houses != 3 {
		t.Fatalf("sale = %+v, want refund 25 and three houses", res)
	}
	if g.houses != 0 || g.hotels != BankHotels-1 {
		t.Fatalf("bank after sale: houses=%d hotels=%d", g.houses, g.hotels)
	}
	if p.Hotels != 1 || p.Houses != 3 {
		t.Fatalf("player counters: houses=%d hotels=%d", p.Houses, p.Hotels)
	}
}

func TestSellSoleHotelNextToHousesRejected(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	own(t, g, "p1", 6, 8, 9) // three-field group
	g.buildings[6] = &Buildings{Hotel: true}
	g.buildings[8] = &Buildings{Hotel: true}
	g.buildings[9] = &Buildings{Houses: 4}
	p.Hotels = 2
	p.Houses = 4

	// Two of three fields carry hotels: neither sole-hotel nor all-hotel.
	if _, err := g.SellHotel("p1", 6); err != ErrUnevenSell {
		t.Fatalf("want ErrUnevenSell, got %v", err)
	}
}
