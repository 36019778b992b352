// Package game holds the server-authoritative session state machine. All rule
// validation and state mutation happens here, under one mutex per session;
// the socket layer is a thin translation in front of it.
package game

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
	"github.com/sirupsen/logrus"
)

const (
	MaxPlayers = 6
	MinPlayers = 2

	GoBonus    = 200
	JailFine   = 50
	OpeningBid = 10

	BankHouses = 32
	BankHotels = 12
)

// Turn transitions are deferred so clients see the roll outcome before the
// turn indicator moves. The guard delay keeps a second transition from firing
// while one is still settling.
const (
	DefaultTurnDelay    = 2 * time.Second
	DefaultAuctionDelay = 3 * time.Second
	DefaultGuardDelay   = 2 * time.Second
	DefaultRollThrottle = 1 * time.Second
)

var Colors = []string{"red", "blue", "green", "yellow", "purple", "orange", "pink", "cyan"}

var Pieces = []string{"🎩", "🦄", "🐕", "🚗", "⛵", "✈️", "🍕", "👑"}

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Broadcaster receives asynchronous outcomes the session produces on its own,
// i.e. deferred turn transitions. Implemented by the socket gateway.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Buildings is the house/hotel level of a single street property.
type Buildings struct {
	Houses int  `json:"houses"`
	Hotel  bool `json:"hotel"`
}

// Game is one running session. Every exported method takes the mutex;
// lowercase helpers assume it is already held.
type Game struct {
	mu sync.Mutex

	id     string
	hostID string
	phase  Phase

	players    []*models.Player
	currentIdx int

	lastRoll *DiceRoll
	doubles  int

	houses    int
	hotels    int
	ownership map[int]string
	mortgaged map[int]bool
	buildings map[int]*Buildings

	chanceDeck    []models.Card
	chanceIdx     int
	communityDeck []models.Card
	communityIdx  int

	pot int

	auction    *Auction
	auctionSeq int

	trades   map[int]*TradeOffer
	tradeSeq int

	liquidations map[int]*LiquidationRequest
	liqSeq       int

	turnTimer      *time.Timer
	turnInProgress bool

	turnDelay    time.Duration
	auctionDelay time.Duration
	guardDelay   time.Duration
	rollThrottle time.Duration

	rng  *rand.Rand
	roll func() (int, int)

	sink Broadcaster
}

// New creates a session in the waiting phase. The host still has to join as a
// regular player. sink may be nil (timer-driven broadcasts are dropped).
func New(id, hostID string, sink Broadcaster) *Game {
	g := &Game{
		id:           id,
		hostID:       hostID,
		phase:        PhaseWaiting,
		houses:       BankHouses,
		hotels:       BankHotels,
		ownership:    map[int]string{},
		mortgaged:    map[int]bool{},
		buildings:    map[int]*Buildings{},
		trades:       map[int]*TradeOffer{},
		liquidations: map[int]*LiquidationRequest{},
		turnDelay:    DefaultTurnDelay,
		auctionDelay: DefaultAuctionDelay,
		guardDelay:   DefaultGuardDelay,
		rollThrottle: DefaultRollThrottle,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sink:         sink,
	}
	g.roll = func() (int, int) { return g.rng.Intn(6) + 1, g.rng.Intn(6) + 1 }
	g.chanceDeck = board.ChanceCards()
	g.communityDeck = board.CommunityCards()
	g.shuffle(g.chanceDeck)
	g.shuffle(g.communityDeck)
	return g
}

func (g *Game) shuffle(deck []models.Card) {
	g.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

func (g *Game) ID() string { return g.id }

func (g *Game) HostID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hostID
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// Player returns a public copy of the given player.
func (g *Game) Player(id string) (models.Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.player(id); p != nil {
		return p.Public(), true
	}
	return models.Player{}, false
}

func (g *Game) player(id string) *models.Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) currentPlayer() *models.Player {
	if len(g.players) == 0 || g.currentIdx < 0 || g.currentIdx >= len(g.players) {
		return nil
	}
	return g.players[g.currentIdx]
}

// CurrentPlayer returns a public copy of the player whose turn it is.
func (g *Game) CurrentPlayer() (models.Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying {
		return models.Player{}, false
	}
	if p := g.currentPlayer(); p != nil {
		return p.Public(), true
	}
	return models.Player{}, false
}

// AddPlayer joins a new player while the session is still waiting. The first
// free color and piece are assigned automatically.
func (g *Game) AddPlayer(id, name string) (models.Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseWaiting {
		return models.Player{}, ErrAlreadyStarted
	}
	if len(g.players) >= MaxPlayers {
		return models.Player{}, ErrGameFull
	}
	if g.player(id) != nil {
		return models.Player{}, ErrPlayerNotFound
	}
	p := models.NewPlayer(id, name, g.freeColor(), g.freePiece())
	g.players = append(g.players, p)
	logrus.WithFields(logrus.Fields{"game": g.id, "player": name}).Info("player joined")
	return p.Public(), nil
}

func (g *Game) freeColor() string {
	for _, c := range Colors {
		if !g.colorTaken(c) {
			return c
		}
	}
	return ""
}

func (g *Game) colorTaken(color string) bool {
	for _, p := range g.players {
		if p.Color == color {
			return true
		}
	}
	return false
}

func (g *Game) freePiece() string {
	for _, pc := range Pieces {
		if !g.pieceTaken(pc) {
			return pc
		}
	}
	return ""
}

func (g *Game) pieceTaken(piece string) bool {
	for _, p := range g.players {
		if p.Piece == piece {
			return true
		}
	}
	return false
}

// ChangeColor switches the player to a free color.
func (g *Game) ChangeColor(playerID, color string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	valid := false
	for _, c := range Colors {
		if c == color {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidColor
	}
	if p.Color != color && g.colorTaken(color) {
		return ErrColorTaken
	}
	p.Color = color
	return nil
}

// ChangePiece switches the player to a free piece.
func (g *Game) ChangePiece(playerID, piece string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	valid := false
	for _, pc := range Pieces {
		if pc == piece {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidPiece
	}
	if p.Piece != piece && g.pieceTaken(piece) {
		return ErrPieceTaken
	}
	p.Piece = piece
	return nil
}

func (g *Game) AvailableColors() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range Colors {
		if !g.colorTaken(c) {
			out = append(out, c)
		}
	}
	return out
}

func (g *Game) AvailablePieces() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, pc := range Pieces {
		if !g.pieceTaken(pc) {
			out = append(out, pc)
		}
	}
	return out
}

// Start moves the session into the playing phase. Host only.
func (g *Game) Start(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if playerID != g.hostID {
		return ErrNotHost
	}
	if g.phase != PhaseWaiting {
		return ErrAlreadyStarted
	}
	if len(g.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	g.phase = PhasePlaying
	g.currentIdx = 0
	logrus.WithFields(logrus.Fields{"game": g.id, "players": len(g.players)}).Info("game started")
	return nil
}

// LeaveResult reports the side effects of a player removal.
type LeaveResult struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	NewHostID    string `json:"newHostId,omitempty"`
	TurnPassedTo string `json:"turnPassedTo,omitempty"`
	Finished     bool   `json:"finished"`
	WinnerID     string `json:"winnerId,omitempty"`
	Empty        bool   `json:"-"`
}

// RemovePlayer takes a player out of the session: holdings go back to the
// bank, the host role migrates, and the turn cursor is repaired if the leaver
// was up. A playing session with one player left is finished.
func (g *Game) RemovePlayer(playerID string) (*LeaveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := -1
	for i, p := range g.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrPlayerNotFound
	}
	p := g.players[idx]
	res := &LeaveResult{PlayerID: p.ID, PlayerName: p.Name}

	g.clearPlayerHoldings(p)
	g.players = append(g.players[:idx], g.players[idx+1:]...)
	g.dropFromAuction(playerID)
	g.liquidations = dropByPlayer(g.liquidations, playerID)

	if g.hostID == playerID {
		g.hostID = ""
		if len(g.players) > 0 {
			g.hostID = g.players[0].ID
			res.NewHostID = g.hostID
		}
	}

	if len(g.players) == 0 {
		res.Empty = true
		g.stopTurnTimer()
		return res, nil
	}

	if g.phase == PhasePlaying {
		if idx < g.currentIdx {
			g.currentIdx--
		} else if idx == g.currentIdx {
			g.currentIdx = g.currentIdx % len(g.players)
			g.skipBankruptFrom(g.currentIdx)
			g.doubles = 0
			g.lastRoll = nil
			g.turnInProgress = false
			g.stopTurnTimer()
			if cur := g.currentPlayer(); cur != nil {
				cur.HasRolled = false
				cur.HasPassedGo = false
				res.TurnPassedTo = cur.ID
			}
		}
		if winner, finished := g.finishIfDecided(); finished {
			res.Finished = true
			if winner != nil {
				res.WinnerID = winner.ID
			}
		}
	}
	logrus.WithFields(logrus.Fields{"game": g.id, "player": p.Name}).Info("player left")
	return res, nil
}

func dropByPlayer(m map[int]*LiquidationRequest, playerID string) map[int]*LiquidationRequest {
	for id, req := range m {
		if req.PlayerID == playerID {
			delete(m, id)
		}
	}
	return m
}

// skipBankruptFrom moves the cursor forward to the next non-bankrupt player,
// starting at (and including) the given index.
func (g *Game) skipBankruptFrom(idx int) {
	n := len(g.players)
	for i := 0; i < n; i++ {
		cand := (idx + i) % n
		if !g.players[cand].IsBankrupt {
			g.currentIdx = cand
			return
		}
	}
}

// finishIfDecided ends a playing session once at most one active player
// remains. Returns the winner, if any.
func (g *Game) finishIfDecided() (*models.Player, bool) {
	if g.phase != PhasePlaying {
		return nil, false
	}
	var active []*models.Player
	for _, p := range g.players {
		if !p.IsBankrupt {
			active = append(active, p)
		}
	}
	if len(active) > 1 {
		return nil, false
	}
	g.phase = PhaseFinished
	g.stopTurnTimer()
	if len(active) == 1 {
		return active[0], true
	}
	return nil, true
}

// advanceTurn moves the cursor to the next active player and resets per-turn
// state. Returns false when a transition is already settling or no active
// player remains.
func (g *Game) advanceTurn() bool {
	if g.phase != PhasePlaying || g.turnInProgress || len(g.players) == 0 {
		return false
	}
	n := len(g.players)
	next := -1
	for i := 1; i <= n; i++ {
		cand := (g.currentIdx + i) % n
		if !g.players[cand].IsBankrupt {
			next = cand
			break
		}
	}
	if next == -1 {
		g.phase = PhaseFinished
		return false
	}
	g.turnInProgress = true
	g.currentIdx = next
	g.doubles = 0
	g.lastRoll = nil
	cur := g.players[g.currentIdx]
	cur.HasRolled = false
	cur.HasPassedGo = false
	time.AfterFunc(g.guardDelay, func() {
		g.mu.Lock()
		g.turnInProgress = false
		g.mu.Unlock()
	})
	return true
}

// TurnChange is the payload for timer-driven turn broadcasts.
type TurnChange struct {
	CurrentPlayerID   string `json:"currentPlayerId"`
	CurrentPlayerName string `json:"currentPlayerName"`
	State             State  `json:"state"`
}

// scheduleTurnEnd arms the (single) deferred turn transition. On fire the
// preconditions are re-checked under the lock: the expected player must still
// be up and must still have rolled.
func (g *Game) scheduleTurnEnd(expectID string, delay time.Duration) {
	g.stopTurnTimer()
	g.turnTimer = time.AfterFunc(delay, func() {
		g.mu.Lock()
		cur := g.currentPlayer()
		if g.phase != PhasePlaying || cur == nil || cur.ID != expectID || !cur.HasRolled || g.turnInProgress {
			g.mu.Unlock()
			return
		}
		if !g.advanceTurn() {
			g.mu.Unlock()
			return
		}
		next := g.currentPlayer()
		payload := TurnChange{CurrentPlayerID: next.ID, CurrentPlayerName: next.Name, State: g.snapshot()}
		sink := g.sink
		g.mu.Unlock()
		if sink != nil {
			sink.Broadcast("turn_ended", payload)
		}
	})
}

func (g *Game) stopTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
}

// Close stops outstanding timers. Called by the registry on teardown.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopTurnTimer()
	g.sink = nil
}

// State is the full public snapshot broadcast after every accepted action.
// Struct marshalling (and sorted map keys) keeps the encoding deterministic,
// so snapshots of unchanged state are byte-identical.
type State struct {
	ID                    string            `json:"id"`
	GamePhase             Phase             `json:"gamePhase"`
	HostPlayerID          string            `json:"hostPlayerId"`
	Players               []models.Player   `json:"players"`
	CurrentPlayerID       string            `json:"currentPlayerId"`
	LastDiceRoll          *DiceRoll         `json:"lastDiceRoll"`
	Houses                int               `json:"houses"`
	Hotels                int               `json:"hotels"`
	PropertyOwnership     map[int]string    `json:"propertyOwnership"`
	MortgagedProperties   []int             `json:"mortgagedProperties"`
	BuildingsOnProperties map[int]Buildings `json:"buildingsOnProperties"`
	CurrentAuction        *Auction          `json:"currentAuction"`
	FreeParkingPot        int               `json:"freeParkingPot"`
}

func (g *Game) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() State {
	players := make([]models.Player, 0, len(g.players))
	for _, p := range g.players {
		players = append(players, p.Public())
	}
	ownership := make(map[int]string, len(g.ownership))
	for pos, owner := range g.ownership {
		ownership[pos] = owner
	}
	mortgaged := make([]int, 0, len(g.mortgaged))
	for pos := range g.mortgaged {
		mortgaged = append(mortgaged, pos)
	}
	sort.Ints(mortgaged)
	buildings := make(map[int]Buildings, len(g.buildings))
	for pos, b := range g.buildings {
		buildings[pos] = *b
	}
	var auction *Auction
	if g.auction != nil {
		a := g.auction.clone()
		auction = &a
	}
	currentID := ""
	if g.phase != PhaseWaiting {
		if cur := g.currentPlayer(); cur != nil {
			currentID = cur.ID
		}
	}
	var lastRoll *DiceRoll
	if g.lastRoll != nil {
		d := *g.lastRoll
		lastRoll = &d
	}
	return State{
		ID:                    g.id,
		GamePhase:             g.phase,
		HostPlayerID:          g.hostID,
		Players:               players,
		CurrentPlayerID:       currentID,
		LastDiceRoll:          lastRoll,
		Houses:                g.houses,
		Hotels:                g.hotels,
		PropertyOwnership:     ownership,
		MortgagedProperties:   mortgaged,
		BuildingsOnProperties: buildings,
		CurrentAuction:        auction,
		FreeParkingPot:        g.pot,
	}
}
