package game

import "errors"

// Validation rejections surface as sentinel errors so the gateway can relay a
// stable reason string without changing any game state.
var (
	ErrGameFull         = errors.New("game is full")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotStarted       = errors.New("game has not started")
	ErrGameFinished     = errors.New("game is finished")
	ErrNotEnoughPlayers = errors.New("need at least 2 players")
	ErrNotHost          = errors.New("only the host can do that")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyRolled    = errors.New("already rolled this turn")
	ErrRollTooSoon      = errors.New("rolling too fast")

	ErrColorTaken   = errors.New("color already taken")
	ErrInvalidColor = errors.New("unknown color")
	ErrPieceTaken   = errors.New("piece already taken")
	ErrInvalidPiece = errors.New("unknown piece")

	ErrNotPurchasable = errors.New("field cannot be bought")
	ErrAlreadyOwned   = errors.New("field already has an owner")
	ErrNotOwner       = errors.New("you do not own this field")
	ErrNotEnoughMoney = errors.New("not enough money")

	ErrNoAuction    = errors.New("no auction in progress")
	ErrNotInAuction = errors.New("you are not part of this auction")
	ErrBidTooLow    = errors.New("bid must exceed the current bid")

	ErrNotProperty      = errors.New("buildings only go on street properties")
	ErrNoMonopoly       = errors.New("you need the full color group")
	ErrMortgaged        = errors.New("field is mortgaged")
	ErrNotMortgaged     = errors.New("field is not mortgaged")
	ErrAlreadyMortgaged = errors.New("field is already mortgaged")
	ErrHasBuildings     = errors.New("field still has buildings")
	ErrUnevenBuild      = errors.New("build evenly across the color group")
	ErrUnevenSell       = errors.New("sell evenly across the color group")
	ErrHotelPresent     = errors.New("field already has a hotel")
	ErrNeedsFourHouses  = errors.New("a hotel needs four houses on every field of the group")
	ErrNoHouses         = errors.New("no houses on this field")
	ErrNoHotel          = errors.New("no hotel on this field")
	ErrNoHousesLeft     = errors.New("the bank has no houses left")
	ErrNoHotelsLeft     = errors.New("the bank has no hotels left")
	ErrBankHousesShort  = errors.New("the bank cannot supply three houses")

	ErrNotInJail      = errors.New("you are not in jail")
	ErrNoJailFreeCard = errors.New("no jail free card held")

	ErrUnknownDeck = errors.New("unknown card deck")
	ErrUnknownCard = errors.New("unknown card action")

	ErrTradeNotFound     = errors.New("trade not found")
	ErrTradeClosed       = errors.New("trade is no longer open")
	ErrNotTradeTarget    = errors.New("only the trade target can respond")
	ErrNotTradeInitiator = errors.New("only the trade initiator can cancel")
	ErrSelfTrade         = errors.New("cannot trade with yourself")
	ErrEmptyTrade        = errors.New("both sides must offer something")

	ErrLiquidationNotFound = errors.New("liquidation request not found")
	ErrLiquidationClosed   = errors.New("liquidation request is no longer open")
	ErrNotYourLiquidation  = errors.New("liquidation request belongs to another player")
	ErrDuplicateSelection  = errors.New("option selected twice")
	ErrUnknownOption       = errors.New("unknown liquidation option")
)
