package sockets

import (
	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/game"
)

// Inbound payloads. Clients send JSON strings; each handler parses exactly
// the fields it needs.

type createGameDto struct {
	PlayerName string `json:"playerName"`
}

type joinGameDto struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type colorDto struct {
	Color string `json:"color"`
}

type pieceDto struct {
	Piece string `json:"piece"`
}

type positionDto struct {
	Position int `json:"position"`
}

type bidDto struct {
	BidAmount int `json:"bidAmount"`
}

type drawCardDto struct {
	CardType models.DeckType `json:"cardType"`
}

type cardActionDto struct {
	Card models.Card `json:"card"`
}

type tradeDto struct {
	TargetID string          `json:"targetId"`
	Offer    game.TradeTerms `json:"offer"`
}

type tradeIDDto struct {
	TradeID int `json:"tradeId"`
}

type liquidationDto struct {
	LiquidationID int                       `json:"liquidationId"`
	Selections    game.LiquidationSelection `json:"selections"`
}

type chatDto struct {
	Message string `json:"message"`
}

type errorDto struct {
	Message string `json:"message"`
}
