package models

import "time"

const StartingMoney = 1500

// Player is the per-session player record. Holdings are stored as board
// positions, split by field type so rent lookups stay counter-based.
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	Piece         string `json:"piece"`
	Money         int    `json:"money"`
	Position      int    `json:"position"`
	Properties    []int  `json:"properties"`
	Railroads     []int  `json:"railroads"`
	Utilities     []int  `json:"utilities"`
	Houses        int    `json:"houses"`
	Hotels        int    `json:"hotels"`
	InJail        bool   `json:"inJail"`
	JailTurns     int    `json:"jailTurns"`
	JailFreeCards int    `json:"jailFreeCards"`
	IsBankrupt    bool   `json:"isBankrupt"`
	HasRolled     bool   `json:"hasRolled"`
	HasPassedGo   bool   `json:"-"`

	LastRollAt time.Time `json:"-"`
}

func NewPlayer(id, name, color, piece string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Color:      color,
		Piece:      piece,
		Money:      StartingMoney,
		Properties: []int{},
		Railroads:  []int{},
		Utilities:  []int{},
	}
}

func (p *Player) AddMoney(amount int) {
	p.Money += amount
}

// RemoveMoney deducts only when the player can afford it.
func (p *Player) RemoveMoney(amount int) bool {
	if p.Money < amount {
		return false
	}
	p.Money -= amount
	return true
}

func (p *Player) AddHolding(f Field) {
	switch f.Type {
	case FieldProperty:
		p.Properties = append(p.Properties, f.Position)
	case FieldRailroad:
		p.Railroads = append(p.Railroads, f.Position)
	case FieldUtility:
		p.Utilities = append(p.Utilities, f.Position)
	}
}

func (p *Player) RemoveHolding(f Field) {
	remove := func(s []int, pos int) []int {
		for i, v := range s {
			if v == pos {
				return append(s[:i], s[i+1:]...)
			}
		}
		return s
	}
	switch f.Type {
	case FieldProperty:
		p.Properties = remove(p.Properties, f.Position)
	case FieldRailroad:
		p.Railroads = remove(p.Railroads, f.Position)
	case FieldUtility:
		p.Utilities = remove(p.Utilities, f.Position)
	}
}

func (p *Player) OwnsPosition(pos int) bool {
	for _, group := range [][]int{p.Properties, p.Railroads, p.Utilities} {
		for _, v := range group {
			if v == pos {
				return true
			}
		}
	}
	return false
}

// Holdings returns every owned position across all three holding groups.
func (p *Player) Holdings() []int {
	out := make([]int, 0, len(p.Properties)+len(p.Railroads)+len(p.Utilities))
	out = append(out, p.Properties...)
	out = append(out, p.Railroads...)
	out = append(out, p.Utilities...)
	return out
}

// JailResult reports how a jailing attempt resolved: a held jail-free card is
// consumed automatically instead of jailing.
type JailResult struct {
	Jailed         bool `json:"jailed"`
	UsedFreeCard   bool `json:"usedFreeCard"`
	RemainingCards int  `json:"remainingCards"`
}

const JailPosition = 10

// GoToJail moves the player to the jail field. A held jail-free card is spent
// instead of locking them in.
func (p *Player) GoToJail() JailResult {
	p.Position = JailPosition
	if p.JailFreeCards > 0 {
		p.JailFreeCards--
		return JailResult{UsedFreeCard: true, RemainingCards: p.JailFreeCards}
	}
	p.InJail = true
	p.JailTurns = 0
	return JailResult{Jailed: true}
}

func (p *Player) LeaveJail() {
	p.InJail = false
	p.JailTurns = 0
}

// Public returns a broadcast-safe value copy with cloned holding slices, so a
// snapshot cannot alias live state.
func (p *Player) Public() Player {
	cp := *p
	cp.Properties = append([]int{}, p.Properties...)
	cp.Railroads = append([]int{}, p.Railroads...)
	cp.Utilities = append([]int{}, p.Utilities...)
	return cp
}
