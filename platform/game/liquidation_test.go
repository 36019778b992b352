package game

import (
	"testing"
	"time"
)

// taxShortfall puts p1 on the income tax field with too little cash but enough
// assets, producing a pending liquidation request.
func taxShortfall(t *testing.T, g *Game) *LiquidationRequest {
	t.Helper()
	p := g.player("p1")
	p.Money = 30
	own(t, g, "p1", 1, 3, 5)
	g.buildings[1] = &Buildings{Houses: 2}
	g.buildings[3] = &Buildings{Houses: 2}
	p.Houses = 4
	g.houses -= 4

	stubDice(g, [2]int{1, 3}) // income tax, 200
	res, err := g.RollDice("p1")
	if err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Type != EventLiquidationRequired {
		t.Fatalf("events = %+v, want liquidation_required", res.Events)
	}
	req := res.Events[0].Liquidation
	if req == nil {
		t.Fatal("event carries no request")
	}
	return req
}

func TestShortfallProducesLiquidationRequest(t *testing.T) {
	g := newTestGame(t, 2)
	req := taxShortfall(t, g)

	if req.RequiredAmount != 200 || req.AvailableMoney != 30 || req.Shortfall != 170 {
		t.Fatalf("request = %+v", req)
	}
	// Four house sales at 25 each; only the station is mortgageable since the
	// brown fields carry buildings.
	if len(req.Houses) != 4 {
		t.Fatalf("house options = %+v", req.Houses)
	}
	if len(req.Properties) != 1 || req.Properties[0].Position != 5 || req.Properties[0].Amount != 100 {
		t.Fatalf("property options = %+v", req.Properties)
	}
	// An open request keeps the turn waiting.
	if g.turnTimer != nil {
		t.Fatal("turn transition armed while liquidation is pending")
	}
}

func TestPerformLiquidationCoversAndSettles(t *testing.T) {
	g := newTestGame(t, 2)
	req := taxShortfall(t, g)
	p := g.player("p1")

	sel := LiquidationSelection{
		Houses:     []int{req.Houses[0].ID, req.Houses[1].ID, req.Houses[2].ID, req.Houses[3].ID},
		Properties: []int{req.Properties[0].ID},
	}
	res, err := g.PerformLiquidation("p1", req.ID, sel)
	if err != nil {
		t.Fatalf("PerformLiquidation: %v", err)
	}
	if res.AmountRaised != 200 || !res.Covered {
		t.Fatalf("result = %+v", res)
	}
	// 30 + 200 raised - 200 tax.
	if p.Money != 30 {
		t.Fatalf("money = %d, want 30", p.Money)
	}
	if g.pot != 200 {
		t.Fatalf("pot = %d, want 200", g.pot)
	}
	if !g.mortgaged[5] {
		t.Fatal("station not mortgaged")
	}
	if g.buildings[1] != nil || g.buildings[3] != nil {
		t.Fatal("sold houses still on the board")
	}
	if g.houses != BankHouses || p.Houses != 0 {
		t.Fatalf("house accounting: bank=%d player=%d", g.houses, p.Houses)
	}
	if _, err := g.PerformLiquidation("p1", req.ID, sel); err != ErrLiquidationNotFound {
		t.Fatalf("replay: want ErrLiquidationNotFound, got %v", err)
	}
}

func TestPerformLiquidationRejectsBadSelections(t *testing.T) {
	g := newTestGame(t, 2)
	req := taxShortfall(t, g)

	if _, err := g.PerformLiquidation("p2", req.ID, LiquidationSelection{}); err != ErrNotYourLiquidation {
		t.Fatalf("stranger: want ErrNotYourLiquidation, got %v", err)
	}
	dup := LiquidationSelection{Houses: []int{req.Houses[0].ID, req.Houses[0].ID}}
	if _, err := g.PerformLiquidation("p1", req.ID, dup); err != ErrDuplicateSelection {
		t.Fatalf("duplicate: want ErrDuplicateSelection, got %v", err)
	}
	unknown := LiquidationSelection{Properties: []int{999}}
	if _, err := g.PerformLiquidation("p1", req.ID, unknown); err != ErrUnknownOption {
		t.Fatalf("unknown id: want ErrUnknownOption, got %v", err)
	}
	// Rejected selections must leave the request open.
	if g.liquidations[req.ID] == nil {
		t.Fatal("request vanished after a failed selection")
	}
}

func TestHotelSaleNeedsBankHousesAtCommitTime(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	p.Money = 10
	own(t, g, "p1", 1, 3)
	g.buildings[1] = &Buildings{Hotel: true}
	p.Hotels = 1
	g.hotels--

	req := g.assessShortfall(p, 40, paymentTax, 4, 0, "Einkommensteuer")
	if req == nil {
		t.Fatal("expected a request, got bankruptcy")
	}
	if len(req.Hotels) != 1 {
		t.Fatalf("hotel options = %+v", req.Hotels)
	}

	// The bank ran dry between assessment and commit.
	g.houses = 0
	sel := LiquidationSelection{Hotels: []int{req.Hotels[0].ID}}
	if _, err := g.PerformLiquidation("p1", req.ID, sel); err != ErrBankHousesShort {
		t.Fatalf("want ErrBankHousesShort, got %v", err)
	}
}

func TestShortfallAssessmentBoundary(t *testing.T) {
	// Cash 30 against a 200 tax: assets worth 170 just cover it, assets worth
	// 150 do not.
	t.Run("assets close the gap exactly", func(t *testing.T) {
		g := newTestGame(t, 2)
		p := g.player("p1")
		p.Money = 30
		own(t, g, "p1", 5, 11) // mortgage values 100 + 70

		stubDice(g, [2]int{1, 3})
		res, err := g.RollDice("p1")
		if err != nil {
			t.Fatalf("RollDice: %v", err)
		}
		if len(res.Events) != 1 || res.Events[0].Type != EventLiquidationRequired {
			t.Fatalf("events = %+v, want a liquidation request", res.Events)
		}
		if p.IsBankrupt {
			t.Fatal("player went bankrupt despite sufficient assets")
		}
	})
	t.Run("assets fall short", func(t *testing.T) {
		g := newTestGame(t, 2)
		p := g.player("p1")
		p.Money = 30
		own(t, g, "p1", 5, 6) // mortgage values 100 + 50

		stubDice(g, [2]int{1, 3})
		res, err := g.RollDice("p1")
		if err != nil {
			t.Fatalf("RollDice: %v", err)
		}
		if !p.IsBankrupt {
			t.Fatalf("expected immediate bankruptcy, events = %+v", res.Events)
		}
	})
}

func TestUncoverableDebtBankruptsWithPartialPayment(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	p.Money = 30

	stubDice(g, [2]int{1, 3}) // income tax, 200, no assets to sell
	res, err := g.RollDice("p1")
	if err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	types := []EventType{}
	for _, ev := range res.Events {
		types = append(types, ev.Type)
	}
	want := []EventType{EventTaxPaid, EventPlayerBankrupt, EventGameOver}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("events = %v, want %v", types, want)
		}
	}
	// The remaining cash still reaches the pot before the bankruptcy.
	if res.Events[0].Amount != 30 || g.pot != 30 {
		t.Fatalf("partial payment = %d, pot = %d", res.Events[0].Amount, g.pot)
	}
	if !p.IsBankrupt || p.Money != 0 {
		t.Fatalf("player state: bankrupt=%v money=%d", p.IsBankrupt, p.Money)
	}
	if res.Events[2].WinnerID != "p2" || g.Phase() != PhaseFinished {
		t.Fatalf("game over event = %+v phase=%s", res.Events[2], g.Phase())
	}
}

func TestRentShortfallSettlesToOwnerAfterLiquidation(t *testing.T) {
	g := newTestGame(t, 2)
	p := g.player("p1")
	p.Money = 10
	own(t, g, "p1", 1, 3)
	own(t, g, "p2", 5, 15) // two stations, rent 50

	stubDice(g, [2]int{2, 3})
	res, err := g.RollDice("p1")
	if err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Type != EventLiquidationRequired {
		t.Fatalf("events = %+v", res.Events)
	}
	req := res.Events[0].Liquidation

	sel := LiquidationSelection{Properties: []int{req.Properties[0].ID, req.Properties[1].ID}}
	lr, err := g.PerformLiquidation("p1", req.ID, sel)
	if err != nil {
		t.Fatalf("PerformLiquidation: %v", err)
	}
	if !lr.Covered || len(lr.Events) != 1 || lr.Events[0].Type != EventRentPaid {
		t.Fatalf("result = %+v", lr)
	}
	// 10 cash + 30 + 30 mortgage value - 50 rent.
	if p.Money != 20 || g.player("p2").Money != 1550 {
		t.Fatalf("money: p1=%d p2=%d", p.Money, g.player("p2").Money)
	}
}

func TestCoveredLiquidationResumesTheTurn(t *testing.T) {
	g := newTestGame(t, 2)
	req := taxShortfall(t, g)

	sel := LiquidationSelection{
		Houses:     []int{req.Houses[0].ID, req.Houses[1].ID, req.Houses[2].ID, req.Houses[3].ID},
		Properties: []int{req.Properties[0].ID},
	}
	if _, err := g.PerformLiquidation("p1", req.ID, sel); err != nil {
		t.Fatalf("PerformLiquidation: %v", err)
	}
	// The settled debt closes the turn: the deferred transition is armed and
	// the roller cannot roll again.
	if g.turnTimer == nil {
		t.Fatal("turn transition not re-armed after the debt was settled")
	}
	if _, err := g.RollDice("p1"); err != ErrAlreadyRolled {
		t.Fatalf("re-roll: want ErrAlreadyRolled, got %v", err)
	}
	cur, _ := g.CurrentPlayer()
	if cur.ID != "p1" {
		t.Fatalf("turn moved before the delay: %s up", cur.ID)
	}
}

func TestShortSelectionKeepsDebtAlive(t *testing.T) {
	g := newTestGame(t, 2)
	req := taxShortfall(t, g)
	p := g.player("p1")

	// Mortgaging only the station raises 100, leaving 130 against the 200 tax.
	// The obligation must not evaporate: a follow-up request replaces the
	// spent one and the turn stays suspended.
	sel := LiquidationSelection{Properties: []int{req.Properties[0].ID}}
	res, err := g.PerformLiquidation("p1", req.ID, sel)
	if err != nil {
		t.Fatalf("PerformLiquidation: %v", err)
	}
	if res.Covered {
		t.Fatalf("result = %+v, selection cannot cover the debt", res)
	}
	if len(res.Events) != 1 || res.Events[0].Type != EventLiquidationRequired {
		t.Fatalf("events = %+v, want a follow-up request", res.Events)
	}
	next := res.Events[0].Liquidation
	if next == nil || next.ID == req.ID {
		t.Fatalf("follow-up request = %+v", next)
	}
	if next.RequiredAmount != 200 || next.AvailableMoney != 130 || next.Shortfall != 70 {
		t.Fatalf("follow-up request = %+v", next)
	}
	// Only the four house sales remain; the station is mortgaged now.
	if len(next.Houses) != 4 || len(next.Properties) != 0 {
		t.Fatalf("follow-up options: houses=%+v properties=%+v", next.Houses, next.Properties)
	}
	if g.pot != 0 {
		t.Fatalf("pot = %d before the debt is covered", g.pot)
	}
	if g.turnTimer != nil {
		t.Fatal("turn transition armed while the debt is still open")
	}

	sel = LiquidationSelection{Houses: []int{next.Houses[0].ID, next.Houses[1].ID, next.Houses[2].ID, next.Houses[3].ID}}
	res, err = g.PerformLiquidation("p1", next.ID, sel)
	if err != nil {
		t.Fatalf("PerformLiquidation: %v", err)
	}
	if !res.Covered {
		t.Fatalf("result = %+v", res)
	}
	// 130 + 100 raised - 200 tax.
	if p.Money != 30 || g.pot != 200 {
		t.Fatalf("money = %d pot = %d", p.Money, g.pot)
	}
	if g.turnTimer == nil {
		t.Fatal("turn transition not re-armed after the debt was settled")
	}
}

func TestTurnMovesOnAfterDeclaredBankruptcy(t *testing.T) {
	ch := make(chan TurnChange, 1)
	g := New("TESTGAME", "p1", sinkFunc(func(event string, payload interface{}) {
		if event == "turn_ended" {
			ch <- payload.(TurnChange)
		}
	}))
	g.turnDelay = 20 * time.Millisecond
	g.auctionDelay = time.Hour
	g.guardDelay = 0
	g.rollThrottle = 0
	g.AddPlayer("p1", "Alice")
	g.AddPlayer("p2", "Bob")
	g.AddPlayer("p3", "Carol")
	if err := g.Start("p1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	req := taxShortfall(t, g)

	if _, err := g.DeclareBankruptcy("p1", req.ID); err != nil {
		t.Fatalf("DeclareBankruptcy: %v", err)
	}
	// The bankrupt player held the cursor; the session must move on without
	// waiting for an end-turn action that can never come.
	select {
	case tc := <-ch:
		if tc.CurrentPlayerID != "p2" {
			t.Fatalf("turn passed to %s, want p2", tc.CurrentPlayerID)
		}
	case <-time.After(time.Second):
		t.Fatal("turn never moved on after the bankruptcy")
	}
}

func TestDeclareBankruptcyOnRequest(t *testing.T) {
	g := newTestGame(t, 3)
	req := taxShortfall(t, g)

	if _, err := g.DeclareBankruptcy("p2", req.ID); err != ErrNotYourLiquidation {
		t.Fatalf("stranger: want ErrNotYourLiquidation, got %v", err)
	}
	events, err := g.DeclareBankruptcy("p1", req.ID)
	if err != nil {
		t.Fatalf("DeclareBankruptcy: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventPlayerBankrupt {
		t.Fatalf("events = %+v", events)
	}
	p := g.player("p1")
	if !p.IsBankrupt || len(g.ownership) != 0 {
		t.Fatalf("holdings survived bankruptcy: %v", g.ownership)
	}
	if g.houses != BankHouses {
		t.Fatalf("bank houses = %d", g.houses)
	}
	// Two players remain, the game continues.
	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %s", g.Phase())
	}
}
