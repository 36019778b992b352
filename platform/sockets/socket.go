// Package sockets is the realtime gateway: it translates socket.io events
// into state-machine calls and broadcasts the outcomes to the session room.
// No rule logic lives here.
package sockets

import (
	"encoding/json"
	"net/http"
	"os"

	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/game"
	"github.com/mkehrer/monopoly-server/platform/registry"
)

const maxChatLen = 200

type Server struct {
	io  *socketio.Server
	reg *registry.Registry
}

// roomCaster pushes timer-driven session outcomes into the room. The room is
// bound right after the session id is allocated.
type roomCaster struct {
	srv  *socketio.Server
	room string
}

func (c *roomCaster) Broadcast(event string, payload interface{}) {
	if c.room == "" {
		return
	}
	c.srv.BroadcastToRoom("/", c.room, event, toJSON(payload))
}

func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CreateSocketIOServer wires all game events and serves the socket.io
// endpoint on its own port. Blocks; run in a goroutine from main.
func CreateSocketIOServer(reg *registry.Registry) {
	io, err := socketio.NewServer(nil)
	if err != nil {
		logrus.WithError(err).Fatal("socket.io server")
	}
	srv := &Server{io: io, reg: reg}
	srv.routes()

	go func() {
		if err := io.Serve(); err != nil {
			logrus.WithError(err).Error("socket.io serve")
		}
	}()
	defer io.Close()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io)
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: true,
	}).Handler(mux)

	port := os.Getenv("SOCKET_PORT")
	if port == "" {
		port = "8000"
	}
	logrus.WithField("port", port).Info("socket.io listening")
	logrus.Fatal(http.ListenAndServe(":"+port, handler))
}

func (srv *Server) routes() {
	io := srv.io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	io.OnError("/", func(s socketio.Conn, err error) {
		logrus.WithError(err).Warn("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.handleLeave(s)
	})

	io.OnEvent("/", "create_game", srv.onCreateGame)
	io.OnEvent("/", "join_game", srv.onJoinGame)
	io.OnEvent("/", "change_color", srv.onChangeColor)
	io.OnEvent("/", "get_available_colors", srv.onAvailableColors)
	io.OnEvent("/", "change_piece", srv.onChangePiece)
	io.OnEvent("/", "get_available_pieces", srv.onAvailablePieces)
	io.OnEvent("/", "start_game", srv.onStartGame)
	io.OnEvent("/", "leave_game", func(s socketio.Conn, _ string) { srv.handleLeave(s) })

	io.OnEvent("/", "roll_dice", srv.onRollDice)
	io.OnEvent("/", "buy_property", srv.onBuyProperty)
	io.OnEvent("/", "decline_property", srv.onDeclineProperty)
	io.OnEvent("/", "place_bid", srv.onPlaceBid)
	io.OnEvent("/", "pass_auction", srv.onPassAuction)
	io.OnEvent("/", "draw_card", srv.onDrawCard)
	io.OnEvent("/", "execute_card_action", srv.onExecuteCardAction)
	io.OnEvent("/", "use_jail_free_card", srv.onUseJailFreeCard)

	io.OnEvent("/", "build_house", srv.onBuildHouse)
	io.OnEvent("/", "build_hotel", srv.onBuildHotel)
	io.OnEvent("/", "sell_house", srv.onSellHouse)
	io.OnEvent("/", "sell_hotel", srv.onSellHotel)
	io.OnEvent("/", "mortgage_property", srv.onMortgage)
	io.OnEvent("/", "unmortgage_property", srv.onUnmortgage)

	io.OnEvent("/", "initiate_trade", srv.onInitiateTrade)
	io.OnEvent("/", "accept_trade", srv.onAcceptTrade)
	io.OnEvent("/", "reject_trade", srv.onRejectTrade)
	io.OnEvent("/", "cancel_trade", srv.onCancelTrade)

	io.OnEvent("/", "perform_liquidation", srv.onPerformLiquidation)
	io.OnEvent("/", "declare_bankruptcy", srv.onDeclareBankruptcy)

	io.OnEvent("/", "chat_message", srv.onChatMessage)
}

func (srv *Server) emitError(s socketio.Conn, err error) {
	s.Emit("error", toJSON(errorDto{Message: err.Error()}))
}

func (srv *Server) broadcast(room, event string, v interface{}) {
	srv.io.BroadcastToRoom("/", room, event, toJSON(v))
}

func (srv *Server) broadcastState(g *game.Game) {
	srv.broadcast(g.ID(), "game_state_update", g.Snapshot())
}

// gameFor resolves the session the connection belongs to.
func (srv *Server) gameFor(s socketio.Conn) (*game.Game, bool) {
	g, ok := srv.reg.GameOf(s.ID())
	if !ok {
		srv.emitError(s, game.ErrPlayerNotFound)
	}
	return g, ok
}

// relayEvents turns pipeline events into the room-facing side channel: the
// event feed plus the dedicated waits (buy offer, card draw, liquidation).
func (srv *Server) relayEvents(g *game.Game, events []game.Event) {
	room := g.ID()
	for _, ev := range events {
		if ev.Message != "" {
			srv.broadcast(room, "game_event", map[string]string{"message": ev.Message})
		}
		switch ev.Type {
		case game.EventBuyOffer:
			srv.broadcast(room, "buy_offer", ev)
		case game.EventDrawCardRequired:
			srv.broadcast(room, "draw_card_required", ev)
		case game.EventLiquidationRequired:
			srv.broadcast(room, "liquidation_required", ev.Liquidation)
		case game.EventPlayerBankrupt:
			srv.broadcast(room, "player_bankrupt", ev)
		case game.EventGameOver:
			srv.broadcast(room, "game_over", ev)
			srv.reg.Sync(g)
		}
	}
}

func parse(s socketio.Conn, raw string, v interface{}, srv *Server) bool {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.Emit("error", toJSON(errorDto{Message: "bad payload"}))
		return false
	}
	return true
}

// --- lobby ---

func (srv *Server) onCreateGame(s socketio.Conn, raw string) {
	var dto createGameDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	caster := &roomCaster{srv: srv.io}
	g, p, err := srv.reg.CreateGame(s.ID(), dto.PlayerName, caster)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	caster.room = g.ID()
	s.Join(g.ID())
	s.Emit("game_created", toJSON(map[string]interface{}{
		"gameId": g.ID(),
		"player": p,
		"state":  g.Snapshot(),
	}))
}

func (srv *Server) onJoinGame(s socketio.Conn, raw string) {
	var dto joinGameDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, p, err := srv.reg.Join(dto.GameID, s.ID(), dto.PlayerName)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	s.Join(g.ID())
	s.Emit("game_joined", toJSON(map[string]interface{}{
		"gameId": g.ID(),
		"player": p,
		"state":  g.Snapshot(),
	}))
	srv.broadcast(g.ID(), "player_joined", map[string]interface{}{
		"player": p,
		"state":  g.Snapshot(),
	})
}

func (srv *Server) onChangeColor(s socketio.Conn, raw string) {
	var dto colorDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	if err := g.ChangeColor(s.ID(), dto.Color); err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcastState(g)
}

func (srv *Server) onAvailableColors(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	s.Emit("available_colors", toJSON(map[string]interface{}{"colors": g.AvailableColors()}))
}

func (srv *Server) onChangePiece(s socketio.Conn, raw string) {
	var dto pieceDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	if err := g.ChangePiece(s.ID(), dto.Piece); err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcastState(g)
}

func (srv *Server) onAvailablePieces(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	s.Emit("available_pieces", toJSON(map[string]interface{}{"pieces": g.AvailablePieces()}))
}

func (srv *Server) onStartGame(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	if err := g.Start(s.ID()); err != nil {
		srv.emitError(s, err)
		return
	}
	srv.reg.Sync(g)
	cur, _ := g.CurrentPlayer()
	srv.broadcast(g.ID(), "game_started", map[string]interface{}{
		"currentPlayerId": cur.ID,
		"state":           g.Snapshot(),
	})
}

func (srv *Server) handleLeave(s socketio.Conn) {
	g, res, err := srv.reg.Leave(s.ID())
	if err != nil || res == nil {
		return
	}
	s.Leave(g.ID())
	if res.Empty {
		return
	}
	srv.broadcast(g.ID(), "player_left", map[string]interface{}{
		"leave": res,
		"state": g.Snapshot(),
	})
}

// --- turn actions ---

func (srv *Server) onRollDice(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	res, err := g.RollDice(s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "dice_rolled", map[string]interface{}{
		"playerId": s.ID(),
		"roll":     res,
		"state":    g.Snapshot(),
	})
	srv.relayEvents(g, res.Events)
}

func (srv *Server) onBuyProperty(s socketio.Conn, raw string) {
	var dto positionDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	purchase, err := g.BuyProperty(s.ID(), dto.Position)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "property_bought", map[string]interface{}{
		"purchase": purchase,
		"state":    g.Snapshot(),
	})
}

func (srv *Server) onDeclineProperty(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	auction, err := g.DeclineProperty(s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	if auction != nil {
		srv.broadcast(g.ID(), "auction_started", map[string]interface{}{
			"auction": auction,
			"state":   g.Snapshot(),
		})
		return
	}
	srv.broadcastState(g)
}

func (srv *Server) onPlaceBid(s socketio.Conn, raw string) {
	var dto bidDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	auction, err := g.PlaceBid(s.ID(), dto.BidAmount)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "bid_placed", map[string]interface{}{
		"auction": auction,
		"state":   g.Snapshot(),
	})
}

func (srv *Server) onPassAuction(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	res, err := g.PassAuction(s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	if res.Ended {
		srv.broadcast(g.ID(), "auction_ended", map[string]interface{}{
			"outcome": res.Outcome,
			"state":   g.Snapshot(),
		})
		return
	}
	srv.broadcast(g.ID(), "auction_passed", map[string]interface{}{
		"auction": res.Auction,
		"state":   g.Snapshot(),
	})
}

func (srv *Server) onDrawCard(s socketio.Conn, raw string) {
	var dto drawCardDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	card, err := g.DrawCard(s.ID(), dto.CardType)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "card_drawn", map[string]interface{}{
		"playerId": s.ID(),
		"cardType": dto.CardType,
		"card":     card,
	})
}

func (srv *Server) onExecuteCardAction(s socketio.Conn, raw string) {
	var dto cardActionDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	res, err := g.ExecuteCardAction(s.ID(), dto.Card)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "card_action_executed", map[string]interface{}{
		"playerId": s.ID(),
		"result":   res,
		"state":    g.Snapshot(),
	})
	srv.relayEvents(g, res.Events)
}

func (srv *Server) onUseJailFreeCard(s socketio.Conn, _ string) {
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	remaining, err := g.UseJailFreeCard(s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "jail_free_card_used", map[string]interface{}{
		"playerId":  s.ID(),
		"remaining": remaining,
		"state":     g.Snapshot(),
	})
}

// --- buildings & mortgages ---

func (srv *Server) onBuildHouse(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "house_built", func(g *game.Game, pos int) (interface{}, error) {
		return g.BuildHouse(s.ID(), pos)
	})
}

func (srv *Server) onBuildHotel(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "hotel_built", func(g *game.Game, pos int) (interface{}, error) {
		return g.BuildHotel(s.ID(), pos)
	})
}

func (srv *Server) onSellHouse(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "house_sold", func(g *game.Game, pos int) (interface{}, error) {
		return g.SellHouse(s.ID(), pos)
	})
}

func (srv *Server) onSellHotel(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "hotel_sold", func(g *game.Game, pos int) (interface{}, error) {
		return g.SellHotel(s.ID(), pos)
	})
}

func (srv *Server) onMortgage(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "property_mortgaged", func(g *game.Game, pos int) (interface{}, error) {
		return g.Mortgage(s.ID(), pos)
	})
}

func (srv *Server) onUnmortgage(s socketio.Conn, raw string) {
	srv.buildingAction(s, raw, "property_unmortgaged", func(g *game.Game, pos int) (interface{}, error) {
		return g.Unmortgage(s.ID(), pos)
	})
}

func (srv *Server) buildingAction(s socketio.Conn, raw, event string, fn func(*game.Game, int) (interface{}, error)) {
	var dto positionDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	result, err := fn(g, dto.Position)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), event, map[string]interface{}{
		"result": result,
		"state":  g.Snapshot(),
	})
}

// --- trades ---

func (srv *Server) onInitiateTrade(s socketio.Conn, raw string) {
	var dto tradeDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	offer, err := g.InitiateTrade(s.ID(), dto.TargetID, dto.Offer)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "trade_offer_received", map[string]interface{}{"offer": offer})
}

func (srv *Server) onAcceptTrade(s socketio.Conn, raw string) {
	var dto tradeIDDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	trade, err := g.AcceptTrade(dto.TradeID, s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "trade_completed", map[string]interface{}{
		"trade": trade,
		"state": g.Snapshot(),
	})
}

func (srv *Server) onRejectTrade(s socketio.Conn, raw string) {
	var dto tradeIDDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	trade, err := g.RejectTrade(dto.TradeID, s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "trade_rejected", map[string]interface{}{"trade": trade})
}

func (srv *Server) onCancelTrade(s socketio.Conn, raw string) {
	var dto tradeIDDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	trade, err := g.CancelTrade(dto.TradeID, s.ID())
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "trade_cancelled", map[string]interface{}{"trade": trade})
}

// --- liquidation / bankruptcy ---

func (srv *Server) onPerformLiquidation(s socketio.Conn, raw string) {
	var dto liquidationDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	res, err := g.PerformLiquidation(s.ID(), dto.LiquidationID, dto.Selections)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcast(g.ID(), "liquidation_completed", map[string]interface{}{
		"result": res,
		"state":  g.Snapshot(),
	})
	srv.relayEvents(g, res.Events)
}

func (srv *Server) onDeclareBankruptcy(s socketio.Conn, raw string) {
	var dto liquidationDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	events, err := g.DeclareBankruptcy(s.ID(), dto.LiquidationID)
	if err != nil {
		srv.emitError(s, err)
		return
	}
	srv.broadcastState(g)
	srv.relayEvents(g, events)
}

// --- chat ---

func (srv *Server) onChatMessage(s socketio.Conn, raw string) {
	var dto chatDto
	if !parse(s, raw, &dto, srv) {
		return
	}
	if dto.Message == "" {
		return
	}
	if runes := []rune(dto.Message); len(runes) > maxChatLen {
		dto.Message = string(runes[:maxChatLen])
	}
	g, ok := srv.gameFor(s)
	if !ok {
		return
	}
	var sender models.Player
	if p, found := g.Player(s.ID()); found {
		sender = p
	}
	srv.broadcast(g.ID(), "chat_message", map[string]interface{}{
		"playerId":   s.ID(),
		"playerName": sender.Name,
		"message":    dto.Message,
	})
}
