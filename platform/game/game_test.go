package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mkehrer/monopoly-server/platform/board"
)

// newTestGame builds a started session with n players (p1..pn, p1 hosting)
// and timers that never fire on their own.
func newTestGame(t *testing.T, n int) *Game {
	t.Helper()
	g := New("TESTGAME", "p1", nil)
	g.turnDelay = time.Hour
	g.auctionDelay = time.Hour
	g.guardDelay = 0
	g.rollThrottle = 0
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		if _, err := g.AddPlayer(id, fmt.Sprintf("Player%d", i)); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if err := g.Start("p1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

// stubDice feeds fixed rolls in order; the last roll repeats.
func stubDice(g *Game, rolls ...[2]int) {
	i := 0
	g.roll = func() (int, int) {
		r := rolls[i]
		if i < len(rolls)-1 {
			i++
		}
		return r[0], r[1]
	}
}

// own hands positions to a player directly, bypassing purchase.
func own(t *testing.T, g *Game, playerID string, positions ...int) {
	t.Helper()
	p := g.player(playerID)
	if p == nil {
		t.Fatalf("no player %s", playerID)
	}
	for _, pos := range positions {
		f, err := board.FieldAt(pos)
		if err != nil {
			t.Fatalf("FieldAt(%d): %v", pos, err)
		}
		g.ownership[pos] = playerID
		p.AddHolding(f)
	}
}

type sinkFunc func(event string, payload interface{})

func (f sinkFunc) Broadcast(event string, payload interface{}) { f(event, payload) }

func TestJoinAssignsUniqueColorsAndPieces(t *testing.T) {
	g := New("TESTGAME", "p1", nil)
	seenColor := map[string]bool{}
	seenPiece := map[string]bool{}
	for i := 1; i <= MaxPlayers; i++ {
		p, err := g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i))
		if err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
		if p.Color == "" || seenColor[p.Color] {
			t.Fatalf("player %d got color %q", i, p.Color)
		}
		if p.Piece == "" || seenPiece[p.Piece] {
			t.Fatalf("player %d got piece %q", i, p.Piece)
		}
		seenColor[p.Color] = true
		seenPiece[p.Piece] = true
	}
	if _, err := g.AddPlayer("p7", "Player7"); err != ErrGameFull {
		t.Fatalf("7th join: want ErrGameFull, got %v", err)
	}
}

func TestStartRequiresHostAndMinPlayers(t *testing.T) {
	g := New("TESTGAME", "p1", nil)
	g.AddPlayer("p1", "Alice")
	if err := g.Start("p1"); err != ErrNotEnoughPlayers {
		t.Fatalf("solo start: want ErrNotEnoughPlayers, got %v", err)
	}
	g.AddPlayer("p2", "Bob")
	if err := g.Start("p2"); err != ErrNotHost {
		t.Fatalf("non-host start: want ErrNotHost, got %v", err)
	}
	if err := g.Start("p1"); err != nil {
		t.Fatalf("host start: %v", err)
	}
	if err := g.Start("p1"); err != ErrAlreadyStarted {
		t.Fatalf("double start: want ErrAlreadyStarted, got %v", err)
	}
	if _, err := g.AddPlayer("p3", "Carol"); err != ErrAlreadyStarted {
		t.Fatalf("join after start: want ErrAlreadyStarted, got %v", err)
	}
}

func TestChangeColorRejectsTakenAndUnknown(t *testing.T) {
	g := New("TESTGAME", "p1", nil)
	g.AddPlayer("p1", "Alice") // red
	g.AddPlayer("p2", "Bob")   // blue
	if err := g.ChangeColor("p2", "red"); err != ErrColorTaken {
		t.Fatalf("want ErrColorTaken, got %v", err)
	}
	if err := g.ChangeColor("p2", "mauve"); err != ErrInvalidColor {
		t.Fatalf("want ErrInvalidColor, got %v", err)
	}
	if err := g.ChangeColor("p2", "green"); err != nil {
		t.Fatalf("free color: %v", err)
	}
	free := g.AvailableColors()
	for _, c := range free {
		if c == "red" || c == "green" {
			t.Fatalf("taken color %q listed as available", c)
		}
	}
}

func TestHostMigrationOnLeave(t *testing.T) {
	g := New("TESTGAME", "p1", nil)
	g.AddPlayer("p1", "Alice")
	g.AddPlayer("p2", "Bob")
	g.AddPlayer("p3", "Carol")
	res, err := g.RemovePlayer("p1")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if res.NewHostID != "p2" {
		t.Fatalf("want host p2, got %q", res.NewHostID)
	}
	if g.HostID() != "p2" {
		t.Fatalf("registry host not migrated: %q", g.HostID())
	}
}

func TestRemoveCurrentPlayerRepairsTurnCursor(t *testing.T) {
	g := newTestGame(t, 3)
	cur, _ := g.CurrentPlayer()
	if cur.ID != "p1" {
		t.Fatalf("expected p1 up first, got %s", cur.ID)
	}
	res, err := g.RemovePlayer("p1")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if res.TurnPassedTo != "p2" {
		t.Fatalf("want turn passed to p2, got %q", res.TurnPassedTo)
	}
	cur, _ = g.CurrentPlayer()
	if cur.ID != "p2" || cur.HasRolled {
		t.Fatalf("p2 should be up with a fresh turn, got %+v", cur)
	}
}

func TestRemoveEarlierPlayerShiftsCursor(t *testing.T) {
	g := newTestGame(t, 3)
	g.mu.Lock()
	g.currentIdx = 2 // p3 up
	g.mu.Unlock()
	if _, err := g.RemovePlayer("p1"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	cur, _ := g.CurrentPlayer()
	if cur.ID != "p3" {
		t.Fatalf("cursor broke: want p3 up, got %s", cur.ID)
	}
}

func TestMidGameLeaveReturnsHoldingsToBank(t *testing.T) {
	g := newTestGame(t, 3)
	own(t, g, "p2", 1, 3)
	g.buildings[1] = &Buildings{Houses: 2}
	g.houses -= 2
	g.player("p2").Houses = 2
	g.mortgaged[3] = true

	if _, err := g.RemovePlayer("p2"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if _, owned := g.ownership[1]; owned {
		t.Fatal("position 1 still owned after leave")
	}
	if g.mortgaged[3] {
		t.Fatal("mortgage flag survived the leave")
	}
	if g.houses != BankHouses {
		t.Fatalf("houses not returned to bank: %d", g.houses)
	}
}

func TestLeaveDownToOnePlayerFinishesGame(t *testing.T) {
	g := newTestGame(t, 2)
	res, err := g.RemovePlayer("p2")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if !res.Finished || res.WinnerID != "p1" {
		t.Fatalf("want finished with winner p1, got %+v", res)
	}
	if g.Phase() != PhaseFinished {
		t.Fatalf("phase = %s", g.Phase())
	}
}

func TestSnapshotIsIdempotent(t *testing.T) {
	g := newTestGame(t, 3)
	own(t, g, "p2", 1, 3, 5)
	g.buildings[1] = &Buildings{Houses: 2}
	g.mortgaged[3] = true
	g.pot = 150

	first, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("snapshots of unchanged state differ:\n%s\n%s", first, second)
	}
}

func TestSnapshotDoesNotAliasLiveState(t *testing.T) {
	g := newTestGame(t, 2)
	own(t, g, "p1", 5)
	snap := g.Snapshot()
	snap.PropertyOwnership[5] = "p2"
	snap.Players[0].Money = 0
	if g.ownership[5] != "p1" {
		t.Fatal("snapshot mutation leaked into ownership map")
	}
	if g.player("p1").Money != 1500 {
		t.Fatal("snapshot mutation leaked into player record")
	}
}

func TestDeferredTurnAdvanceBroadcasts(t *testing.T) {
	ch := make(chan TurnChange, 1)
	g := New("TESTGAME", "p1", sinkFunc(func(event string, payload interface{}) {
		if event == "turn_ended" {
			ch <- payload.(TurnChange)
		}
	}))
	g.turnDelay = 20 * time.Millisecond
	g.guardDelay = 0
	g.rollThrottle = 0
	g.AddPlayer("p1", "Alice")
	g.AddPlayer("p2", "Bob")
	if err := g.Start("p1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stubDice(g, [2]int{4, 6}) // lands on jail-visit, nothing open
	if _, err := g.RollDice("p1"); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	select {
	case tc := <-ch:
		if tc.CurrentPlayerID != "p2" {
			t.Fatalf("turn passed to %s, want p2", tc.CurrentPlayerID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deferred turn transition")
	}
}

func TestDeferredAdvanceSkipsWhenTurnAlreadyMoved(t *testing.T) {
	fired := make(chan string, 2)
	g := New("TESTGAME", "p1", sinkFunc(func(event string, payload interface{}) {
		fired <- payload.(TurnChange).CurrentPlayerID
	}))
	g.turnDelay = 30 * time.Millisecond
	g.guardDelay = 0
	g.rollThrottle = 0
	g.AddPlayer("p1", "Alice")
	g.AddPlayer("p2", "Bob")
	g.AddPlayer("p3", "Carol")
	g.Start("p1")
	stubDice(g, [2]int{4, 6})
	g.RollDice("p1")

	// The player leaves before the timer fires; the stale transition must
	// not advance past p2.
	if _, err := g.RemovePlayer("p1"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	select {
	case id := <-fired:
		t.Fatalf("stale timer advanced the turn to %s", id)
	case <-time.After(100 * time.Millisecond):
	}
	cur, _ := g.CurrentPlayer()
	if cur.ID != "p2" {
		t.Fatalf("want p2 up, got %s", cur.ID)
	}
}
