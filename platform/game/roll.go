package game

import (
	"time"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

type DiceRoll struct {
	Dice1    int  `json:"dice1"`
	Dice2    int  `json:"dice2"`
	Sum      int  `json:"sum"`
	IsDouble bool `json:"isDouble"`
}

// MoveResult describes one token movement. Moved is false when the token
// ended up where it started.
type MoveResult struct {
	Moved    bool `json:"moved"`
	From     int  `json:"from"`
	To       int  `json:"to"`
	PassedGo bool `json:"passedGo"`
}

// RollResult is everything one dice roll produced, including the landing
// pipeline outcome.
type RollResult struct {
	Dice             DiceRoll           `json:"dice"`
	Move             *MoveResult        `json:"move,omitempty"`
	GoToJail         bool               `json:"goToJail,omitempty"`
	Jail             *models.JailResult `json:"jail,omitempty"`
	StayedInJail     bool               `json:"stayedInJail,omitempty"`
	JailTurns        int                `json:"jailTurns,omitempty"`
	ReleasedFromJail bool               `json:"releasedFromJail,omitempty"`
	PaidJailFine     bool               `json:"paidJailFine,omitempty"`
	Events           []Event            `json:"events"`
}

// RollDice is the main turn action: roll, move, run the landing pipeline and
// arm the deferred turn transition unless the roll left something open.
func (g *Game) RollDice(playerID string) (*RollResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requirePlaying(); err != nil {
		return nil, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if cur.HasRolled {
		return nil, ErrAlreadyRolled
	}
	if g.rollThrottle > 0 && !cur.LastRollAt.IsZero() && time.Since(cur.LastRollAt) < g.rollThrottle {
		return nil, ErrRollTooSoon
	}
	cur.LastRollAt = time.Now()

	if cur.InJail {
		return g.rollInJail(cur), nil
	}

	d := g.rollDice()
	res := &RollResult{Dice: d}

	// Third consecutive double: straight to jail, no movement along the way.
	if d.IsDouble && g.doubles >= 3 {
		g.doubles = 0
		old := cur.Position
		jr := cur.GoToJail()
		res.GoToJail = true
		res.Jail = &jr
		mv := moveResult(old, cur.Position, false)
		res.Move = &mv
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
		return res, nil
	}

	mv := g.movePlayer(cur, d.Sum)
	res.Move = &mv
	res.Events = g.handleLanding(cur)

	if d.IsDouble && !cur.InJail {
		// Doubles grant another roll.
		cur.HasRolled = false
	} else {
		cur.HasRolled = true
		if !interactive(res.Events) {
			g.scheduleTurnEnd(cur.ID, g.turnDelay)
		}
	}
	return res, nil
}

func (g *Game) rollInJail(cur *models.Player) *RollResult {
	d := g.rollDice()
	res := &RollResult{Dice: d}

	if d.IsDouble {
		cur.LeaveJail()
		res.ReleasedFromJail = true
		mv := g.movePlayer(cur, d.Sum)
		res.Move = &mv
		res.Events = g.handleLanding(cur)
		if !cur.InJail {
			cur.HasRolled = false
		} else {
			cur.HasRolled = true
			g.scheduleTurnEnd(cur.ID, g.turnDelay)
		}
		return res
	}

	cur.JailTurns++
	if cur.JailTurns < 3 {
		res.StayedInJail = true
		res.JailTurns = cur.JailTurns
		cur.HasRolled = true
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
		return res
	}

	// Third failed attempt: the fine is forced, even into a negative balance.
	cur.Money -= JailFine
	res.PaidJailFine = true
	cur.LeaveJail()
	res.ReleasedFromJail = true
	mv := g.movePlayer(cur, d.Sum)
	res.Move = &mv
	res.Events = g.handleLanding(cur)
	cur.HasRolled = true
	if !interactive(res.Events) {
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	}
	return res
}

// rollDice rolls both dice and updates the doubles counter.
func (g *Game) rollDice() DiceRoll {
	d1, d2 := g.roll()
	d := DiceRoll{Dice1: d1, Dice2: d2, Sum: d1 + d2, IsDouble: d1 == d2}
	g.lastRoll = &d
	if d.IsDouble {
		g.doubles++
	} else {
		g.doubles = 0
	}
	return d
}

// movePlayer advances the token steps fields (steps may be negative) and pays
// the Go bonus when the start field was crossed forwards.
func (g *Game) movePlayer(p *models.Player, steps int) MoveResult {
	old := p.Position
	pos := ((old+steps)%board.Size + board.Size) % board.Size
	passedGo := (pos < old && steps > 0) || old+steps >= board.Size
	if passedGo {
		p.HasPassedGo = true
		p.AddMoney(GoBonus)
	}
	p.Position = pos
	return moveResult(old, pos, passedGo)
}

func moveResult(from, to int, passedGo bool) MoveResult {
	return MoveResult{Moved: from != to, From: from, To: to, PassedGo: passedGo}
}

// UseJailFreeCard spends a held card to leave jail without moving.
func (g *Game) UseJailFreeCard(playerID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requirePlaying(); err != nil {
		return 0, err
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != playerID {
		return 0, ErrNotYourTurn
	}
	if !cur.InJail {
		return 0, ErrNotInJail
	}
	if cur.JailFreeCards == 0 {
		return 0, ErrNoJailFreeCard
	}
	cur.JailFreeCards--
	cur.LeaveJail()
	return cur.JailFreeCards, nil
}

func (g *Game) requirePlaying() error {
	switch g.phase {
	case PhasePlaying:
		return nil
	case PhaseWaiting:
		return ErrNotStarted
	default:
		return ErrGameFinished
	}
}
