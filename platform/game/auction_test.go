package game

import (
	"testing"
)

// declineIntoAuction rolls p1 onto the first station and declines the offer.
func declineIntoAuction(t *testing.T, g *Game) *Auction {
	t.Helper()
	stubDice(g, [2]int{2, 3})
	if _, err := g.RollDice("p1"); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	a, err := g.DeclineProperty("p1")
	if err != nil {
		t.Fatalf("DeclineProperty: %v", err)
	}
	if a == nil {
		t.Fatal("declining an unowned field must open an auction")
	}
	return a
}

func TestBuyPropertyAtListPrice(t *testing.T) {
	g := newTestGame(t, 2)
	stubDice(g, [2]int{2, 3})
	if _, err := g.RollDice("p1"); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if _, err := g.BuyProperty("p2", 5); err != ErrNotYourTurn {
		t.Fatalf("stranger buy: want ErrNotYourTurn, got %v", err)
	}
	res, err := g.BuyProperty("p1", 5)
	if err != nil {
		t.Fatalf("BuyProperty: %v", err)
	}
	if res.Price != 200 || g.ownership[5] != "p1" {
		t.Fatalf("purchase = %+v, owner = %q", res, g.ownership[5])
	}
	p := g.player("p1")
	if p.Money != 1300 || len(p.Railroads) != 1 {
		t.Fatalf("holder state: money=%d railroads=%v", p.Money, p.Railroads)
	}
	if _, err := g.BuyProperty("p1", 5); err != ErrAlreadyOwned {
		t.Fatalf("double buy: want ErrAlreadyOwned, got %v", err)
	}
}

func TestDeclineOpensAuctionForAllPlayers(t *testing.T) {
	g := newTestGame(t, 3)
	a := declineIntoAuction(t, g)
	if a.Position != 5 || a.CurrentBid != OpeningBid {
		t.Fatalf("auction = %+v", a)
	}
	if len(a.Participants) != 3 {
		t.Fatalf("participants = %v, want all three players", a.Participants)
	}
	// The declining player stays eligible to bid.
	if !contains(a.Participants, "p1") {
		t.Fatalf("decliner missing from %v", a.Participants)
	}
}

func TestBidMustBeatCurrentBid(t *testing.T) {
	g := newTestGame(t, 2)
	declineIntoAuction(t, g)
	if _, err := g.PlaceBid("p2", OpeningBid); err != ErrBidTooLow {
		t.Fatalf("bid at opening: want ErrBidTooLow, got %v", err)
	}
	if _, err := g.PlaceBid("p2", 2000); err != ErrNotEnoughMoney {
		t.Fatalf("bid over cash: want ErrNotEnoughMoney, got %v", err)
	}
	a, err := g.PlaceBid("p2", 50)
	if err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if a.CurrentBid != 50 || a.HighestBidderID != "p2" {
		t.Fatalf("auction = %+v", a)
	}
	if _, err := g.PlaceBid("p1", 40); err != ErrBidTooLow {
		t.Fatalf("lower counter: want ErrBidTooLow, got %v", err)
	}
}

func TestAuctionResolvesWhenOthersPassAndWinnerPays(t *testing.T) {
	g := newTestGame(t, 3)
	declineIntoAuction(t, g)
	if _, err := g.PlaceBid("p2", 120); err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	res, err := g.PassAuction("p1")
	if err != nil {
		t.Fatalf("PassAuction(p1): %v", err)
	}
	if res.Ended {
		t.Fatal("auction ended with two bidders still active")
	}
	res, err = g.PassAuction("p3")
	if err != nil {
		t.Fatalf("PassAuction(p3): %v", err)
	}
	if !res.Ended || res.Outcome == nil || !res.Outcome.Sold {
		t.Fatalf("result = %+v, want a sale", res)
	}
	if res.Outcome.WinnerID != "p2" || res.Outcome.FinalPrice != 120 {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if g.player("p2").Money != 1380 || g.ownership[5] != "p2" {
		t.Fatalf("winner state: money=%d owner=%q", g.player("p2").Money, g.ownership[5])
	}
	// Losers pay nothing.
	if g.player("p1").Money != 1500 || g.player("p3").Money != 1500 {
		t.Fatal("a non-winner was charged")
	}
	if g.auction != nil {
		t.Fatal("auction still open after resolution")
	}
}

func TestAuctionUnsoldWhenEveryonePasses(t *testing.T) {
	g := newTestGame(t, 2)
	declineIntoAuction(t, g)
	if _, err := g.PassAuction("p1"); err != nil {
		t.Fatalf("PassAuction(p1): %v", err)
	}
	res, err := g.PassAuction("p2")
	if err != nil {
		t.Fatalf("PassAuction(p2): %v", err)
	}
	if !res.Ended || res.Outcome.Sold {
		t.Fatalf("result = %+v, want unsold resolution", res)
	}
	if _, owned := g.ownership[5]; owned {
		t.Fatal("unsold field has an owner")
	}
}

func TestBidReopensRoundForPassedPlayers(t *testing.T) {
	g := newTestGame(t, 3)
	declineIntoAuction(t, g)
	if _, err := g.PassAuction("p3"); err != nil {
		t.Fatalf("PassAuction(p3): %v", err)
	}
	a, err := g.PlaceBid("p2", 60)
	if err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if len(a.Passed) != 0 {
		t.Fatalf("passed set = %v, want cleared after a bid", a.Passed)
	}
	// p3 may now outbid despite the earlier pass.
	if _, err := g.PlaceBid("p3", 80); err != nil {
		t.Fatalf("re-entry bid: %v", err)
	}
}

func TestLeavingBidderFallsOutOfAuction(t *testing.T) {
	g := newTestGame(t, 3)
	declineIntoAuction(t, g)
	if _, err := g.PlaceBid("p2", 90); err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if _, err := g.RemovePlayer("p2"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if g.auction == nil {
		t.Fatal("auction closed while two players remain")
	}
	if g.auction.HighestBidderID != "" {
		t.Fatalf("stale high bidder %q", g.auction.HighestBidderID)
	}
	if contains(g.auction.Participants, "p2") {
		t.Fatal("leaver still listed as participant")
	}
	if _, owned := g.ownership[5]; owned {
		t.Fatal("field sold to a player who left")
	}
}

func TestOutsiderCannotBid(t *testing.T) {
	g := newTestGame(t, 2)
	declineIntoAuction(t, g)
	if _, err := g.PlaceBid("ghost", 50); err != ErrNotInAuction {
		t.Fatalf("want ErrNotInAuction, got %v", err)
	}
	if _, err := g.PassAuction("ghost"); err != ErrNotInAuction {
		t.Fatalf("want ErrNotInAuction, got %v", err)
	}
}
