// Package session bridges the board core to its host: it loads documents
// through the codec, schedules debounced saves when the board changes, and
// reloads when the backing document changes underneath it.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cardboard/application/actions"
	"cardboard/application/ports"
	"cardboard/domain/config"
	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/valueobjects"
	"cardboard/infrastructure/codec"
	pkgerrors "cardboard/pkg/errors"
)

// Session owns one open board document. Edits arrive through the action
// layer; the session observes them and coalesces a burst of edits into a
// single encode+write over a short trailing window. A newer pending save
// supersedes an older one; no two saves are ever in flight at once.
type Session struct {
	actions     *actions.Actions
	codec       *codec.Codec
	store       ports.DocumentStore
	attachments ports.AttachmentStore
	debounce    time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	assets  map[string]string
	timer   *time.Timer
	pending *pendingSave
	closed  bool
}

type pendingSave struct {
	board  aggregates.Snapshot
	assets map[string]string
}

// New creates a session over the given action layer and document store.
// The attachments store may be nil when the host does not support binary
// assets.
func New(
	acts *actions.Actions,
	c *codec.Codec,
	store ports.DocumentStore,
	attachments ports.AttachmentStore,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Session {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		actions:     acts,
		codec:       c,
		store:       store,
		attachments: attachments,
		debounce:    cfg.SaveDebounce,
		logger:      logger,
		assets:      map[string]string{},
	}

	acts.SetOnChange(s.scheduleSave)
	return s
}

// Load reads the document from the store and populates the board. A
// document that fails to decode is logged and replaced with an empty board
// rather than surfaced as a crash. History is reset either way: undo
// context from a previous document is meaningless.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.store.Read(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "read document")
	}
	s.LoadData(data)
	return nil
}

// LoadData populates the board from raw document text
func (s *Session) LoadData(data []byte) {
	doc, err := s.codec.Parse(data)
	if err != nil {
		s.logger.Warn("document failed to decode, falling back to empty board", zap.Error(err))
		doc = &codec.Document{Assets: map[string]string{}}
	}

	s.mu.Lock()
	s.assets = doc.Assets
	if s.assets == nil {
		s.assets = map[string]string{}
	}
	s.mu.Unlock()

	s.actions.Board().Load(doc.Board.Cards, doc.Board.Connections)
	s.actions.ResetHistory()

	s.logger.Info("document loaded",
		zap.Int("cards", s.actions.Board().CardCount()),
		zap.Int("connections", s.actions.Board().ConnectionCount()),
		zap.Int("assets", len(doc.Assets)),
	)
}

// AttachAsset stores binary content through the attachment port, mints an
// asset id and records the returned link under it. The caller typically
// follows up with an AddCard of type asset whose content references the id.
func (s *Session) AttachAsset(ctx context.Context, name string, content []byte) (id, link string, err error) {
	if s.attachments == nil {
		return "", "", pkgerrors.NewInternalError("no attachment store configured")
	}

	link, err = s.attachments.Save(ctx, name, content)
	if err != nil {
		return "", "", pkgerrors.Wrap(err, "save attachment")
	}

	id = valueobjects.NewEntityID().String()
	s.mu.Lock()
	s.assets[id] = link
	s.mu.Unlock()

	s.scheduleSave()
	return id, link, nil
}

// Assets returns a copy of the current asset mapping
func (s *Session) Assets() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.assets))
	for k, v := range s.assets {
		out[k] = v
	}
	return out
}

// scheduleSave captures the current board state and (re)arms the debounce
// timer. The snapshot is taken synchronously inside the mutating call, so
// the deferred write can never observe a torn state.
func (s *Session) scheduleSave() {
	snap := s.actions.Board().Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	assets := make(map[string]string, len(s.assets))
	for k, v := range s.assets {
		assets[k] = v
	}
	s.pending = &pendingSave{board: snap, assets: assets}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// flush writes the latest pending snapshot
func (s *Session) flush() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()

	if p == nil {
		return
	}

	data, err := s.codec.Render(p.board, p.assets)
	if err != nil {
		s.logger.Error("encode failed", zap.Error(err))
		return
	}

	if err := s.store.Write(context.Background(), data); err != nil {
		s.logger.Error("save failed", zap.Error(err))
		return
	}

	s.logger.Debug("document saved",
		zap.Int("cards", len(p.board.Cards)),
		zap.Int("connections", len(p.board.Connections)),
	)
}

// Flush writes any pending save immediately
func (s *Session) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.flush()
}

// Close flushes pending work and stops accepting new saves
func (s *Session) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
