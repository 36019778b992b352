// Package registry owns the id -> session and player -> session maps. Every
// handler reaches running games through it; sessions live only in memory and
// are torn down when the last player leaves.
package registry

import (
	"encoding/json"
	"sync"

	"github.com/gomodule/redigo/redis"
	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/pkg"
	"github.com/mkehrer/monopoly-server/platform/cache"
	"github.com/mkehrer/monopoly-server/platform/game"
	"github.com/sirupsen/logrus"
)

const directoryKey = "sessions"

// SessionInfo is the lobby-listing entry mirrored into redis.
type SessionInfo struct {
	ID          string `json:"id"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	GamePhase   string `json:"gamePhase"`
}

type Registry struct {
	mu      sync.Mutex
	games   map[string]*game.Game
	players map[string]string // player id -> game id

	pool *redis.Pool // nil disables the directory mirror
}

func New(pool *redis.Pool) *Registry {
	return &Registry{
		games:   map[string]*game.Game{},
		players: map[string]string{},
		pool:    pool,
	}
}

// CreateGame allocates a fresh session code, creates the session and joins
// the host as its first player.
func (r *Registry) CreateGame(hostID, hostName string, sink game.Broadcaster) (*game.Game, models.Player, error) {
	r.mu.Lock()
	id := pkg.RandString(8)
	for r.games[id] != nil {
		id = pkg.RandString(8)
	}
	g := game.New(id, hostID, sink)
	r.games[id] = g
	r.players[hostID] = id
	r.mu.Unlock()

	p, err := g.AddPlayer(hostID, hostName)
	if err != nil {
		r.mu.Lock()
		delete(r.games, id)
		delete(r.players, hostID)
		r.mu.Unlock()
		return nil, models.Player{}, err
	}
	r.publish(g)
	logrus.WithFields(logrus.Fields{"game": id, "host": hostName}).Info("session created")
	return g, p, nil
}

// Join adds a player to an existing session.
func (r *Registry) Join(gameID, playerID, name string) (*game.Game, models.Player, error) {
	g, ok := r.Get(gameID)
	if !ok {
		return nil, models.Player{}, game.ErrPlayerNotFound
	}
	p, err := g.AddPlayer(playerID, name)
	if err != nil {
		return nil, models.Player{}, err
	}
	r.mu.Lock()
	r.players[playerID] = gameID
	r.mu.Unlock()
	r.publish(g)
	return g, p, nil
}

func (r *Registry) Get(id string) (*game.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	return g, ok
}

// GameOf resolves the session a connected player belongs to.
func (r *Registry) GameOf(playerID string) (*game.Game, bool) {
	r.mu.Lock()
	id, ok := r.players[playerID]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	g, ok := r.games[id]
	r.mu.Unlock()
	return g, ok
}

// Leave removes the player from their session and tears the session down when
// it became empty.
func (r *Registry) Leave(playerID string) (*game.Game, *game.LeaveResult, error) {
	g, ok := r.GameOf(playerID)
	if !ok {
		return nil, nil, game.ErrPlayerNotFound
	}
	r.mu.Lock()
	delete(r.players, playerID)
	r.mu.Unlock()

	res, err := g.RemovePlayer(playerID)
	if err != nil {
		return g, nil, err
	}
	if res.Empty {
		r.teardown(g)
		return g, res, nil
	}
	r.publish(g)
	return g, res, nil
}

func (r *Registry) teardown(g *game.Game) {
	g.Close()
	r.mu.Lock()
	delete(r.games, g.ID())
	r.mu.Unlock()
	r.unpublish(g.ID())
	logrus.WithField("game", g.ID()).Info("session torn down")
}

// Verify reports whether the code names a joinable session.
func (r *Registry) Verify(id string) bool {
	g, ok := r.Get(id)
	if !ok {
		return false
	}
	return g.Phase() == game.PhaseWaiting && g.PlayerCount() < game.MaxPlayers
}

// Sync refreshes the directory entry, e.g. after a start or phase change.
func (r *Registry) Sync(g *game.Game) {
	r.publish(g)
}

func (r *Registry) info(g *game.Game) SessionInfo {
	hostName := ""
	if host, ok := g.Player(g.HostID()); ok {
		hostName = host.Name
	}
	return SessionInfo{
		ID:          g.ID(),
		HostName:    hostName,
		PlayerCount: g.PlayerCount(),
		MaxPlayers:  game.MaxPlayers,
		GamePhase:   string(g.Phase()),
	}
}

func (r *Registry) publish(g *game.Game) {
	if r.pool == nil {
		return
	}
	conn := r.pool.Get()
	defer conn.Close()
	data, err := json.Marshal(r.info(g))
	if err != nil {
		return
	}
	if err := cache.HSet(conn, directoryKey, g.ID(), data); err != nil {
		logrus.WithError(err).Warn("session directory write failed")
	}
}

func (r *Registry) unpublish(id string) {
	if r.pool == nil {
		return
	}
	conn := r.pool.Get()
	defer conn.Close()
	if err := cache.HDel(conn, directoryKey, id); err != nil {
		logrus.WithError(err).Warn("session directory delete failed")
	}
}

// List returns the lobby listing. The redis mirror is the primary source so
// the HTTP side never touches game locks; it falls back to the in-memory maps
// when redis is unavailable.
func (r *Registry) List() []SessionInfo {
	if r.pool != nil {
		conn := r.pool.Get()
		defer conn.Close()
		if entries, err := cache.HGetAll(conn, directoryKey); err == nil {
			out := make([]SessionInfo, 0, len(entries))
			for _, raw := range entries {
				var info SessionInfo
				if json.Unmarshal([]byte(raw), &info) == nil {
					out = append(out, info)
				}
			}
			return out
		}
	}
	r.mu.Lock()
	games := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.Unlock()
	out := make([]SessionInfo, 0, len(games))
	for _, g := range games {
		out = append(out, r.info(g))
	}
	return out
}
