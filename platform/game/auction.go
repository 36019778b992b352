package game

import (
	"github.com/mkehrer/monopoly-server/platform/board"
)

// Auction is a live bidding round for one declined field. Winner-pays-only:
// the final price is charged to the highest bidder alone, on resolution.
type Auction struct {
	ID              int      `json:"id"`
	Position        int      `json:"position"`
	FieldName       string   `json:"fieldName"`
	CurrentBid      int      `json:"currentBid"`
	HighestBidderID string   `json:"highestBidderId"`
	Participants    []string `json:"participants"`
	Passed          []string `json:"passed"`
	Status          string   `json:"status"`
}

func (a Auction) clone() Auction {
	a.Participants = append([]string{}, a.Participants...)
	a.Passed = append([]string{}, a.Passed...)
	return a
}

// AuctionOutcome reports how an auction resolved.
type AuctionOutcome struct {
	Position   int    `json:"position"`
	FieldName  string `json:"fieldName"`
	WinnerID   string `json:"winnerId,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`
	FinalPrice int    `json:"finalPrice,omitempty"`
	Sold       bool   `json:"sold"`
}

// PassResult is the outcome of a single pass: either the auction continues or
// it just resolved.
type PassResult struct {
	Auction *Auction        `json:"auction,omitempty"`
	Ended   bool            `json:"ended"`
	Outcome *AuctionOutcome `json:"outcome,omitempty"`
}

func (g *Game) startAuction(position int, name string) Auction {
	g.auctionSeq++
	participants := make([]string, 0, len(g.players))
	for _, p := range g.players {
		if !p.IsBankrupt {
			participants = append(participants, p.ID)
		}
	}
	g.auction = &Auction{
		ID:           g.auctionSeq,
		Position:     position,
		FieldName:    name,
		CurrentBid:   OpeningBid,
		Participants: participants,
		Status:       "active",
	}
	return g.auction.clone()
}

// PlaceBid raises the auction. A valid bid reopens the round for everyone who
// had already passed.
func (g *Game) PlaceBid(playerID string, amount int) (*Auction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.auction == nil {
		return nil, ErrNoAuction
	}
	p := g.player(playerID)
	if p == nil || p.IsBankrupt || !contains(g.auction.Participants, playerID) {
		return nil, ErrNotInAuction
	}
	if amount <= g.auction.CurrentBid {
		return nil, ErrBidTooLow
	}
	if amount > p.Money {
		return nil, ErrNotEnoughMoney
	}
	g.auction.CurrentBid = amount
	g.auction.HighestBidderID = playerID
	g.auction.Passed = nil
	a := g.auction.clone()
	return &a, nil
}

// PassAuction withdraws the player from the current round. The auction
// resolves once at most one active bidder is left holding the high bid, or
// everyone passed without a bid.
func (g *Game) PassAuction(playerID string) (*PassResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.auction == nil {
		return nil, ErrNoAuction
	}
	if !contains(g.auction.Participants, playerID) {
		return nil, ErrNotInAuction
	}
	if !contains(g.auction.Passed, playerID) {
		g.auction.Passed = append(g.auction.Passed, playerID)
	}

	if !g.auctionDecided() {
		a := g.auction.clone()
		return &PassResult{Auction: &a}, nil
	}

	outcome := g.endAuction()
	if cur := g.currentPlayer(); cur != nil && (g.lastRoll == nil || !g.lastRoll.IsDouble) {
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.auctionDelay)
	}
	return &PassResult{Ended: true, Outcome: outcome}, nil
}

// auctionDecided checks the resolution condition against the players still in
// the round.
func (g *Game) auctionDecided() bool {
	active := 0
	for _, id := range g.auction.Participants {
		if contains(g.auction.Passed, id) {
			continue
		}
		if p := g.player(id); p == nil || p.IsBankrupt {
			continue
		}
		active++
	}
	if active == 0 {
		return true
	}
	return active <= 1 && g.auction.HighestBidderID != ""
}

func (g *Game) endAuction() *AuctionOutcome {
	a := g.auction
	g.auction = nil
	outcome := &AuctionOutcome{Position: a.Position, FieldName: a.FieldName}
	if a.HighestBidderID == "" {
		return outcome
	}
	w := g.player(a.HighestBidderID)
	if w == nil || !w.RemoveMoney(a.CurrentBid) {
		return outcome
	}
	f, err := board.FieldAt(a.Position)
	if err != nil {
		return outcome
	}
	g.ownership[a.Position] = w.ID
	w.AddHolding(f)
	outcome.WinnerID = w.ID
	outcome.WinnerName = w.Name
	outcome.FinalPrice = a.CurrentBid
	outcome.Sold = true
	return outcome
}

// dropFromAuction removes a leaving player from a running auction and resolves
// it if that pass settles things.
func (g *Game) dropFromAuction(playerID string) {
	if g.auction == nil || !contains(g.auction.Participants, playerID) {
		return
	}
	g.auction.Participants = remove(g.auction.Participants, playerID)
	g.auction.Passed = remove(g.auction.Passed, playerID)
	if g.auction.HighestBidderID == playerID {
		g.auction.HighestBidderID = ""
	}
	if len(g.auction.Participants) == 0 {
		g.auction = nil
		return
	}
	if g.auctionDecided() {
		g.endAuction()
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func remove(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
