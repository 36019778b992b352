package game

import (
	"fmt"

	"github.com/mkehrer/monopoly-server/app/models"
	"github.com/mkehrer/monopoly-server/platform/board"
)

// paymentKind records which obligation a liquidation request was raised for,
// so the deferred payment can be settled once the sales went through.
type paymentKind string

const (
	paymentRent   paymentKind = "rent"
	paymentTax    paymentKind = "tax"
	paymentCard   paymentKind = "card"
	paymentPayAll paymentKind = "pay_all"
)

// LiquidationOption is one selectable sale. IDs enumerate all options of a
// request sequentially, across the three lists.
type LiquidationOption struct {
	ID       int    `json:"id"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
}

// LiquidationRequest is the pending "raise money or go bankrupt" decision a
// player faces when an obligation exceeds their cash but not their assets.
type LiquidationRequest struct {
	ID             int                 `json:"id"`
	PlayerID       string              `json:"playerId"`
	PlayerName     string              `json:"playerName"`
	RequiredAmount int                 `json:"requiredAmount"`
	AvailableMoney int                 `json:"availableMoney"`
	Shortfall      int                 `json:"shortfall"`
	Reason         string              `json:"reason"`
	Houses         []LiquidationOption `json:"houses"`
	Hotels         []LiquidationOption `json:"hotels"`
	Properties     []LiquidationOption `json:"properties"`
	Status         string              `json:"status"`

	kind      paymentKind
	position  int
	perPlayer int
}

// LiquidationSelection lists the chosen option ids per class.
type LiquidationSelection struct {
	Houses     []int `json:"houses"`
	Hotels     []int `json:"hotels"`
	Properties []int `json:"properties"`
}

// LiquidationResult reports the applied sales and, when the obligation could
// be covered, the settled deferred payment.
type LiquidationResult struct {
	Request      LiquidationRequest `json:"request"`
	AmountRaised int                `json:"amountRaised"`
	Covered      bool               `json:"covered"`
	Events       []Event            `json:"events,omitempty"`
}

// assessShortfall is the bankruptcy check for a payment the player cannot
// cover in cash. If the sellable assets close the gap, a pending liquidation
// request is registered and returned; otherwise nil, meaning bankruptcy.
func (g *Game) assessShortfall(p *models.Player, required int, kind paymentKind, position, perPlayer int, reason string) *LiquidationRequest {
	var houses, hotels, props []LiquidationOption
	total := 0
	optID := 0

	for _, pos := range p.Properties {
		f, err := board.FieldAt(pos)
		if err != nil {
			continue
		}
		b := g.buildings[pos]
		if b == nil {
			continue
		}
		for i := 0; i < b.Houses; i++ {
			optID++
			houses = append(houses, LiquidationOption{ID: optID, Position: pos, Name: f.Name, Amount: f.HouseCost / 2})
			total += f.HouseCost / 2
		}
		// A hotel sale needs three houses back from the bank.
		if b.Hotel && g.houses >= 3 {
			optID++
			hotels = append(hotels, LiquidationOption{ID: optID, Position: pos, Name: f.Name, Amount: f.HouseCost / 2})
			total += f.HouseCost / 2
		}
	}
	for _, pos := range p.Holdings() {
		if g.mortgaged[pos] {
			continue
		}
		if b := g.buildings[pos]; b != nil && (b.Houses > 0 || b.Hotel) {
			continue
		}
		f, err := board.FieldAt(pos)
		if err != nil {
			continue
		}
		optID++
		props = append(props, LiquidationOption{ID: optID, Position: pos, Name: f.Name, Amount: MortgageValue(f.Price)})
		total += MortgageValue(f.Price)
	}

	if p.Money+total < required {
		return nil
	}

	g.liqSeq++
	req := &LiquidationRequest{
		ID:             g.liqSeq,
		PlayerID:       p.ID,
		PlayerName:     p.Name,
		RequiredAmount: required,
		AvailableMoney: p.Money,
		Shortfall:      required - p.Money,
		Reason:         reason,
		Houses:         houses,
		Hotels:         hotels,
		Properties:     props,
		Status:         "pending",
		kind:           kind,
		position:       position,
		perPlayer:      perPlayer,
	}
	g.liquidations[req.ID] = req
	return req
}

func (g *Game) takeLiquidation(playerID string, liqID int) (*LiquidationRequest, *models.Player, error) {
	req := g.liquidations[liqID]
	if req == nil {
		return nil, nil, ErrLiquidationNotFound
	}
	if req.PlayerID != playerID {
		return nil, nil, ErrNotYourLiquidation
	}
	if req.Status != "pending" {
		return nil, nil, ErrLiquidationClosed
	}
	p := g.player(playerID)
	if p == nil {
		return nil, nil, ErrPlayerNotFound
	}
	return req, p, nil
}

// PerformLiquidation applies the selected sales. The whole selection is
// validated before anything is sold; on success the deferred obligation is
// settled if the raised cash now covers it.
func (g *Game) PerformLiquidation(playerID string, liqID int, sel LiquidationSelection) (*LiquidationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, p, err := g.takeLiquidation(playerID, liqID)
	if err != nil {
		return nil, err
	}

	houseOpts, err := resolveOptions(req.Houses, sel.Houses)
	if err != nil {
		return nil, err
	}
	hotelOpts, err := resolveOptions(req.Hotels, sel.Hotels)
	if err != nil {
		return nil, err
	}
	propOpts, err := resolveOptions(req.Properties, sel.Properties)
	if err != nil {
		return nil, err
	}
	if err := noDuplicates(sel); err != nil {
		return nil, err
	}

	// Validate against current state before committing anything. House sales
	// free bank houses, so they are simulated first.
	simHouses := map[int]int{}
	for pos, b := range g.buildings {
		simHouses[pos] = b.Houses
	}
	bankHouses := g.houses
	for _, opt := range houseOpts {
		if g.ownership[opt.Position] != p.ID || simHouses[opt.Position] <= 0 {
			return nil, ErrUnknownOption
		}
		simHouses[opt.Position]--
		bankHouses++
	}
	for _, opt := range hotelOpts {
		b := g.buildings[opt.Position]
		if g.ownership[opt.Position] != p.ID || b == nil || !b.Hotel {
			return nil, ErrUnknownOption
		}
		if bankHouses < 3 {
			return nil, ErrBankHousesShort
		}
		bankHouses -= 3
	}
	for _, opt := range propOpts {
		if g.ownership[opt.Position] != p.ID || g.mortgaged[opt.Position] {
			return nil, ErrUnknownOption
		}
		if b := g.buildings[opt.Position]; b != nil && (simHouses[opt.Position] > 0 || b.Hotel) {
			return nil, ErrHasBuildings
		}
	}

	// Commit.
	raised := 0
	for _, opt := range houseOpts {
		f, _ := board.FieldAt(opt.Position)
		b := g.buildings4(opt.Position)
		b.Houses--
		g.houses++
		p.Houses--
		p.AddMoney(f.HouseCost / 2)
		raised += f.HouseCost / 2
		if b.Houses == 0 && !b.Hotel {
			delete(g.buildings, opt.Position)
		}
	}
	for _, opt := range hotelOpts {
		f, _ := board.FieldAt(opt.Position)
		b := g.buildings4(opt.Position)
		b.Hotel = false
		b.Houses = 3
		g.hotels++
		g.houses -= 3
		p.Hotels--
		p.Houses += 3
		p.AddMoney(f.HouseCost / 2)
		raised += f.HouseCost / 2
	}
	for _, opt := range propOpts {
		f, _ := board.FieldAt(opt.Position)
		g.mortgaged[opt.Position] = true
		p.AddMoney(MortgageValue(f.Price))
		raised += MortgageValue(f.Price)
	}

	req.Status = "completed"
	delete(g.liquidations, liqID)

	covered := p.Money >= req.RequiredAmount
	res := &LiquidationResult{Request: *req, AmountRaised: raised, Covered: covered}
	if covered {
		res.Events = g.settleObligation(req, p)
		g.resumeTurnAfterDebt(p)
		return res, nil
	}

	// The sales fell short: the debt stays due. Either the remaining assets
	// can still close the gap (a fresh request replaces the spent one), or the
	// player goes under with the cash handed over as partial payment.
	if next := g.assessShortfall(p, req.RequiredAmount, req.kind, req.position, req.perPlayer, req.Reason); next != nil {
		res.Events = []Event{{Type: EventLiquidationRequired, PlayerID: p.ID, Amount: req.RequiredAmount, Liquidation: next}}
		return res, nil
	}
	res.Events = g.settlePartialAndBankrupt(req, p)
	g.resumeTurnAfterDebt(p)
	return res, nil
}

// resumeTurnAfterDebt re-arms the deferred turn transition once no payment
// decision is pending anymore. A double keeps the turn with the roller
// (HasRolled stayed false), so nothing is scheduled then.
func (g *Game) resumeTurnAfterDebt(p *models.Player) {
	if g.phase != PhasePlaying {
		return
	}
	cur := g.currentPlayer()
	if cur == nil || cur.ID != p.ID {
		return
	}
	if p.IsBankrupt {
		cur.HasRolled = true
	}
	if cur.HasRolled {
		g.scheduleTurnEnd(cur.ID, g.turnDelay)
	}
}

// settlePartialAndBankrupt hands the remaining cash to the creditor of the
// deferred obligation, then finalizes the bankruptcy.
func (g *Game) settlePartialAndBankrupt(req *LiquidationRequest, p *models.Player) []Event {
	partial := p.Money
	p.Money = 0
	var events []Event
	switch req.kind {
	case paymentRent:
		if ownerID, ok := g.ownership[req.position]; ok && ownerID != p.ID {
			if owner := g.player(ownerID); owner != nil && !owner.IsBankrupt {
				owner.AddMoney(partial)
				events = append(events, Event{
					Type: EventRentPaid, PlayerID: p.ID, OwnerID: ownerID,
					Position: req.position, Amount: partial,
					Message: fmt.Sprintf("%s zahlt %d M Restvermögen an %s", p.Name, partial, owner.Name),
				})
			}
		}
	case paymentTax, paymentCard:
		g.pot += partial
		typ := EventTaxPaid
		if req.kind == paymentCard {
			typ = EventMoneyPaid
		}
		events = append(events, Event{Type: typ, PlayerID: p.ID, Amount: partial, Pot: g.pot})
	case paymentPayAll:
		var others []*models.Player
		for _, other := range g.players {
			if other.ID != p.ID && !other.IsBankrupt {
				others = append(others, other)
			}
		}
		if len(others) > 0 {
			share := partial / len(others)
			for _, other := range others {
				other.AddMoney(share)
			}
			events = append(events, Event{Type: EventPaidAllPlayers, PlayerID: p.ID, Amount: share * len(others)})
		}
	}
	return append(events, g.bankruptPlayer(p)...)
}

// settleObligation pays the debt the liquidation was raised for.
func (g *Game) settleObligation(req *LiquidationRequest, p *models.Player) []Event {
	switch req.kind {
	case paymentRent:
		ownerID, ok := g.ownership[req.position]
		if !ok || ownerID == p.ID {
			return nil
		}
		owner := g.player(ownerID)
		if owner == nil || owner.IsBankrupt {
			return nil
		}
		f, _ := board.FieldAt(req.position)
		p.Money -= req.RequiredAmount
		owner.AddMoney(req.RequiredAmount)
		return []Event{{
			Type: EventRentPaid, PlayerID: p.ID, OwnerID: ownerID,
			Position: req.position, FieldName: f.Name, Amount: req.RequiredAmount,
			Message: fmt.Sprintf("%s zahlt %d M Miete an %s", p.Name, req.RequiredAmount, owner.Name),
		}}
	case paymentTax, paymentCard:
		p.Money -= req.RequiredAmount
		g.pot += req.RequiredAmount
		typ := EventTaxPaid
		if req.kind == paymentCard {
			typ = EventMoneyPaid
		}
		return []Event{{
			Type: typ, PlayerID: p.ID, Amount: req.RequiredAmount, Pot: g.pot,
			Message: fmt.Sprintf("%s zahlt %d M (%s)", p.Name, req.RequiredAmount, req.Reason),
		}}
	case paymentPayAll:
		var events []Event
		for _, other := range g.players {
			if other.ID == p.ID || other.IsBankrupt {
				continue
			}
			p.Money -= req.perPlayer
			other.AddMoney(req.perPlayer)
		}
		events = append(events, Event{
			Type: EventPaidAllPlayers, PlayerID: p.ID, Amount: req.perPlayer,
			Message: fmt.Sprintf("%s zahlt jedem Spieler %d M", p.Name, req.perPlayer),
		})
		return events
	}
	return nil
}

// DeclareBankruptcy gives up on a pending liquidation request: holdings fall
// back to the bank and the player is out.
func (g *Game) DeclareBankruptcy(playerID string, liqID int) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, p, err := g.takeLiquidation(playerID, liqID)
	if err != nil {
		return nil, err
	}
	req.Status = "bankrupt"
	delete(g.liquidations, liqID)
	events := g.bankruptPlayer(p)
	g.resumeTurnAfterDebt(p)
	return events, nil
}

// bankruptPlayer finalizes a bankruptcy and finishes the game once at most
// one active player remains.
func (g *Game) bankruptPlayer(p *models.Player) []Event {
	p.IsBankrupt = true
	p.Money = 0
	g.clearPlayerHoldings(p)
	g.dropFromAuction(p.ID)
	events := []Event{{
		Type:     EventPlayerBankrupt,
		PlayerID: p.ID,
		Message:  fmt.Sprintf("%s ist bankrott", p.Name),
	}}
	if winner, finished := g.finishIfDecided(); finished {
		ev := Event{Type: EventGameOver}
		if winner != nil {
			ev.WinnerID = winner.ID
			ev.Message = fmt.Sprintf("%s gewinnt das Spiel", winner.Name)
		}
		events = append(events, ev)
	}
	return events
}

// clearPlayerHoldings returns every building to the bank and frees all owned
// fields.
func (g *Game) clearPlayerHoldings(p *models.Player) {
	for _, pos := range p.Holdings() {
		if b := g.buildings[pos]; b != nil {
			g.houses += b.Houses
			if b.Hotel {
				g.hotels++
			}
			delete(g.buildings, pos)
		}
		delete(g.ownership, pos)
		delete(g.mortgaged, pos)
	}
	p.Properties = []int{}
	p.Railroads = []int{}
	p.Utilities = []int{}
	p.Houses = 0
	p.Hotels = 0
}

func resolveOptions(options []LiquidationOption, ids []int) ([]LiquidationOption, error) {
	byID := make(map[int]LiquidationOption, len(options))
	for _, opt := range options {
		byID[opt.ID] = opt
	}
	out := make([]LiquidationOption, 0, len(ids))
	for _, id := range ids {
		opt, ok := byID[id]
		if !ok {
			return nil, ErrUnknownOption
		}
		out = append(out, opt)
	}
	return out, nil
}

func noDuplicates(sel LiquidationSelection) error {
	seen := map[int]bool{}
	for _, ids := range [][]int{sel.Houses, sel.Hotels, sel.Properties} {
		for _, id := range ids {
			if seen[id] {
				return ErrDuplicateSelection
			}
			seen[id] = true
		}
	}
	return nil
}
