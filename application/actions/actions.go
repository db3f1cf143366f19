package actions

import (
	"go.uber.org/zap"

	"cardboard/domain/config"
	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/entities"
	"cardboard/domain/core/valueobjects"
	"cardboard/pkg/clock"
	pkgerrors "cardboard/pkg/errors"
)

// Options controls history bookkeeping for a single action layer call.
// History records the mutation on the undo stack; ResetRedo clears the redo
// stack, which every genuinely new forward edit must do. Only the redo
// replay path passes ResetRedo=false.
type Options struct {
	History   bool
	ResetRedo bool
}

// DefaultOptions returns the options used for ordinary user-driven edits
func DefaultOptions() Options {
	return Options{History: true, ResetRedo: true}
}

// Actions is the only sanctioned mutation path into the board. Each
// operation applies one logical step to the card-and-connection graph,
// wraps it with history bookkeeping and returns the affected entity.
//
// All calls are synchronous and single-writer: every entry point must
// finish before another begins. That is a contract with the caller, not an
// enforced isolation.
type Actions struct {
	board   *aggregates.Board
	history *History
	cfg     *config.DomainConfig
	clock   clock.Clock
	logger  *zap.Logger

	onChange func()
}

// New creates an action layer over the given board
func New(board *aggregates.Board, cfg *config.DomainConfig, clk clock.Clock, logger *zap.Logger) *Actions {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{
		board:   board,
		history: NewHistory(cfg.HistoryLimit, cfg.MergeWindow, clk),
		cfg:     cfg,
		clock:   clk,
		logger:  logger,
	}
}

// Board returns the underlying board aggregate. Callers must treat it as
// read-only; mutation outside the action layer breaks history.
func (a *Actions) Board() *aggregates.Board {
	return a.board
}

// History returns the history manager, mainly for inspection in tests
func (a *Actions) History() *History {
	return a.history
}

// SetOnChange registers a callback invoked after every completed mutation.
// The session adapter uses it to schedule debounced saves.
func (a *Actions) SetOnChange(fn func()) {
	a.onChange = fn
}

// CardDraft holds the caller-supplied fields of a new card
type CardDraft struct {
	Content   string
	Pos       valueobjects.Position
	Width     *float64
	Type      entities.CardType
	TodoState entities.TodoState
}

// CardPatch holds a partial card update located by id. Nil fields are left
// untouched.
type CardPatch struct {
	ID        valueobjects.EntityID
	Content   *string
	Pos       *valueobjects.Position
	Width     *float64
	Type      *entities.CardType
	TodoState *entities.TodoState
}

// ConnectionDraft holds the caller-supplied endpoints of a new connection
type ConnectionDraft struct {
	Start valueobjects.EntityID
	End   valueobjects.EntityID
}

// AddCard creates a card with a fresh id and timestamp and appends it to
// the board.
func (a *Actions) AddCard(draft CardDraft, opts Options) *entities.Card {
	card := &entities.Card{
		ID:        valueobjects.NewEntityID(),
		Content:   draft.Content,
		Width:     draft.Width,
		Pos:       draft.Pos,
		UpdatedAt: valueobjects.NewTimestamp(a.clock.Now()),
		Type:      draft.Type,
		TodoState: draft.TodoState,
	}
	if card.Type == "" {
		card.Type = entities.CardTypeMarkdown
	}

	a.insertCard(card, opts)

	a.logger.Debug("card added", zap.String("id", card.ID.String()))
	a.notify()
	return card
}

// RemoveCard removes the card with the given id, cascading removal of every
// connection that references it in the same logical step. Returns the
// removed card; a NotFound error means the whole call was a no-op and the
// result must not be used as an undo basis.
func (a *Actions) RemoveCard(id valueobjects.EntityID, opts Options) (*entities.Card, error) {
	if !a.board.HasCard(id) {
		return nil, pkgerrors.NewNotFoundError("card")
	}

	cascaded := a.board.RemoveConnectionsReferencing(id)
	card := a.board.RemoveCard(id)

	if opts.History {
		rec := DeletedCard{Card: card.Clone()}
		for _, conn := range cascaded {
			rec.Cascaded = append(rec.Cascaded, conn.Clone())
		}
		a.history.Push(rec, opts.ResetRedo)
	}

	a.logger.Debug("card removed",
		zap.String("id", id.String()),
		zap.Int("cascadedConnections", len(cascaded)),
	)
	a.notify()
	return card, nil
}

// UpdateCard merges the patch into the card it locates by id, refreshes its
// timestamp, and returns the card's pre-mutation state. With history
// enabled, recording goes through the coalescing policy: rapid successive
// updates to the same card share one undo record.
func (a *Actions) UpdateCard(patch CardPatch, opts Options) (*entities.Card, error) {
	card := a.board.FindCard(patch.ID)
	if card == nil {
		return nil, pkgerrors.NewNotFoundError("card")
	}

	before := card.Clone()
	if opts.History {
		a.history.PushCardUpdate(before, opts.ResetRedo)
	}

	if patch.Content != nil {
		card.Content = *patch.Content
	}
	if patch.Pos != nil {
		card.Pos = *patch.Pos
	}
	if patch.Width != nil {
		card.Width = patch.Width
	}
	if patch.Type != nil {
		card.Type = *patch.Type
	}
	if patch.TodoState != nil {
		card.TodoState = *patch.TodoState
	}
	card.UpdatedAt = valueobjects.NewTimestamp(a.clock.Now())

	a.notify()
	return before, nil
}

// AddConnection creates a directed connection between two existing cards
// and prepends it to the board. Both endpoints must exist at creation time;
// history replays use the restore path instead and skip this check.
func (a *Actions) AddConnection(draft ConnectionDraft, opts Options) (*entities.Connection, error) {
	if !a.board.HasCard(draft.Start) {
		return nil, pkgerrors.NewValidationError("connection start must reference an existing card")
	}
	if !a.board.HasCard(draft.End) {
		return nil, pkgerrors.NewValidationError("connection end must reference an existing card")
	}
	if !a.cfg.AllowSelfConnections && draft.Start.Equals(draft.End) {
		return nil, pkgerrors.NewValidationError("cannot connect a card to itself")
	}

	conn := &entities.Connection{
		ID:        valueobjects.NewEntityID(),
		Start:     draft.Start,
		End:       draft.End,
		UpdatedAt: valueobjects.NewTimestamp(a.clock.Now()),
	}

	a.insertConnection(conn, opts)

	a.logger.Debug("connection added", zap.String("id", conn.ID.String()))
	a.notify()
	return conn, nil
}

// RemoveConnection removes the connection with the given id and returns it
func (a *Actions) RemoveConnection(id valueobjects.EntityID, opts Options) (*entities.Connection, error) {
	conn := a.board.RemoveConnection(id)
	if conn == nil {
		return nil, pkgerrors.NewNotFoundError("connection")
	}

	if opts.History {
		a.history.Push(DeletedConnection{Connection: conn.Clone()}, opts.ResetRedo)
	}

	a.logger.Debug("connection removed", zap.String("id", id.String()))
	a.notify()
	return conn, nil
}

// Undo reverts the most recent recorded step. With an empty history this is
// a silent no-op. The inverse mutation runs with history disabled so it is
// not itself recorded as a new forward edit; the entity state it displaces
// is pushed onto the redo stack under the original tag.
func (a *Actions) Undo() {
	rec, ok := a.history.PopUndo()
	if !ok {
		return
	}

	quiet := Options{History: false}

	switch r := rec.(type) {
	case NewCard:
		removed, err := a.RemoveCard(r.Card.ID, quiet)
		if err != nil {
			a.logger.Warn("undo target vanished", zap.String("id", r.Card.ID.String()))
			return
		}
		a.history.PushRedo(NewCard{Card: removed.Clone()})

	case UpdatedCard:
		before, err := a.restoreCard(r.Card, quiet)
		if err != nil {
			a.logger.Warn("undo target vanished", zap.String("id", r.Card.ID.String()))
			return
		}
		a.history.PushRedo(UpdatedCard{Card: before})

	case DeletedCard:
		a.insertCard(r.Card.Clone(), quiet)
		for i := len(r.Cascaded) - 1; i >= 0; i-- {
			a.insertConnection(r.Cascaded[i].Clone(), quiet)
		}
		a.history.PushRedo(r)
		a.notify()

	case NewConnection:
		removed, err := a.RemoveConnection(r.Connection.ID, quiet)
		if err != nil {
			a.logger.Warn("undo target vanished", zap.String("id", r.Connection.ID.String()))
			return
		}
		a.history.PushRedo(NewConnection{Connection: removed.Clone()})

	case DeletedConnection:
		a.insertConnection(r.Connection.Clone(), quiet)
		a.history.PushRedo(r)
		a.notify()
	}
}

// Redo replays the most recently undone step. With an empty redo stack this
// is a silent no-op. The replay records history again so it stays undoable,
// but does not reset the redo stack: sibling redo entries must survive.
func (a *Actions) Redo() {
	rec, ok := a.history.PopRedo()
	if !ok {
		return
	}

	replay := Options{History: true, ResetRedo: false}

	switch r := rec.(type) {
	case NewCard:
		a.insertCard(r.Card.Clone(), replay)
		a.notify()

	case UpdatedCard:
		if _, err := a.restoreCard(r.Card, replay); err != nil {
			a.logger.Warn("redo target vanished", zap.String("id", r.Card.ID.String()))
		}

	case DeletedCard:
		if _, err := a.RemoveCard(r.Card.ID, replay); err != nil {
			a.logger.Warn("redo target vanished", zap.String("id", r.Card.ID.String()))
		}

	case NewConnection:
		a.insertConnection(r.Connection.Clone(), replay)
		a.notify()

	case DeletedConnection:
		if _, err := a.RemoveConnection(r.Connection.ID, replay); err != nil {
			a.logger.Warn("redo target vanished", zap.String("id", r.Connection.ID.String()))
		}
	}
}

// ResetHistory clears both stacks. The session adapter calls it on every
// document load.
func (a *Actions) ResetHistory() {
	a.history.Reset()
}

// insertCard places an already-built card on the board, recording a NewCard
// step when asked. Shared by AddCard, deleted-card undo and new-card redo,
// which must keep the card's existing id.
func (a *Actions) insertCard(card *entities.Card, opts Options) {
	a.board.AddCard(card)
	if opts.History {
		a.history.Push(NewCard{Card: card.Clone()}, opts.ResetRedo)
	}
}

// insertConnection places an already-built connection on the board without
// endpoint validation: replayed history entries may reference cards in any
// order of restoration.
func (a *Actions) insertConnection(conn *entities.Connection, opts Options) {
	a.board.AddConnection(conn)
	if opts.History {
		a.history.Push(NewConnection{Connection: conn.Clone()}, opts.ResetRedo)
	}
}

// restoreCard overwrites a card with a full snapshot, refreshing the
// timestamp, and returns the displaced state.
func (a *Actions) restoreCard(snapshot *entities.Card, opts Options) (*entities.Card, error) {
	card := a.board.FindCard(snapshot.ID)
	if card == nil {
		return nil, pkgerrors.NewNotFoundError("card")
	}

	before := card.Clone()
	if opts.History {
		a.history.PushCardUpdate(before, opts.ResetRedo)
	}

	*card = *snapshot.Clone()
	card.UpdatedAt = valueobjects.NewTimestamp(a.clock.Now())

	a.notify()
	return before, nil
}

func (a *Actions) notify() {
	if a.onChange != nil {
		a.onChange()
	}
}
