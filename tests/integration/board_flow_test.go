package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cardboard/application/actions"
	"cardboard/domain/config"
	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/valueobjects"
	"cardboard/infrastructure/codec"
	"cardboard/infrastructure/session"
)

const seedDoc = "---\nboard: true\n---\n\n" +
	"## Assets\n\n" +
	"## Board\n\n" +
	"```\n" +
	`{"cards":[{"id":"a","content":"hi","pos":{"x":0,"y":0},"updatedAt":"2024-06-01T12:00:00.000Z","type":"markdown"}],"connections":[]}` +
	"\n```\n"

func newFileSession(t *testing.T, seed string) (*session.Session, *actions.Actions, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "board.md")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	cfg := config.DefaultDomainConfig()
	cfg.SaveDebounce = 20 * time.Millisecond

	acts := actions.New(aggregates.NewBoard(), cfg, nil, zap.NewNop())
	s := session.New(acts, codec.New(), session.NewFileDocumentStore(path), nil, cfg, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s, acts, path
}

// TestLoadRemoveUndo walks the full load, mutate, undo flow on a document
// with a single card.
func TestLoadRemoveUndo(t *testing.T) {
	s, acts, _ := newFileSession(t, seedDoc)
	defer s.Close()

	require.Equal(t, 1, acts.Board().CardCount())

	id, err := valueobjects.NewEntityIDFromString("a")
	require.NoError(t, err)

	removed, err := acts.RemoveCard(id, actions.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "hi", removed.Content)
	assert.Equal(t, 0, acts.Board().CardCount())

	acts.Undo()

	restored := acts.Board().FindCard(id)
	require.NotNil(t, restored)
	assert.Equal(t, "a", restored.ID.String())
	assert.Equal(t, "hi", restored.Content)
	assert.Equal(t, valueobjects.NewPosition(0, 0), restored.Pos)
}

// TestEditPersistReload drives edits through the session, waits for the
// debounced save and reloads the file into a fresh session.
func TestEditPersistReload(t *testing.T) {
	s, acts, path := newFileSession(t, seedDoc)

	c := acts.AddCard(actions.CardDraft{
		Content: "second card",
		Pos:     valueobjects.NewPosition(100, 200),
		Type:    "todo",
	}, actions.DefaultOptions())

	idA, err := valueobjects.NewEntityIDFromString("a")
	require.NoError(t, err)
	conn, err := acts.AddConnection(actions.ConnectionDraft{Start: idA, End: c.ID}, actions.DefaultOptions())
	require.NoError(t, err)

	s.Flush()
	s.Close()

	// Fresh session over the same file sees the persisted state
	s2, acts2, _ := newFileSession(t, "")
	store := session.NewFileDocumentStore(path)
	data, err := store.Read(context.Background())
	require.NoError(t, err)
	s2.LoadData(data)
	defer s2.Close()

	assert.Equal(t, 2, acts2.Board().CardCount())
	assert.Equal(t, 1, acts2.Board().ConnectionCount())
	assert.NotNil(t, acts2.Board().FindCard(c.ID))
	assert.NotNil(t, acts2.Board().FindConnection(conn.ID))

	// History never crosses a load
	assert.Equal(t, 0, acts2.History().Len())
}

// TestWatcherReloadsExternalChange rewrites the file behind the session's
// back, drains the watcher's notification and reloads.
func TestWatcherReloadsExternalChange(t *testing.T) {
	s, acts, path := newFileSession(t, seedDoc)
	defer s.Close()

	w, err := session.NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	rewritten := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n{\"cards\":[],\"connections\":[]}\n```\n"
	require.NoError(t, os.WriteFile(path, []byte(rewritten), 0o644))

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, acts.Board().CardCount())
}

// TestWatcherNeverMutatesBoard edits the board while a change notification
// is pending. The watcher must not reload on its own: board and history
// have no locking, so only the goroutine driving the action layer may load.
func TestWatcherNeverMutatesBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.md")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o644))

	// A save debounce long enough that the session never writes the file
	// back during the test; only the external rewrite touches it.
	cfg := config.DefaultDomainConfig()
	cfg.SaveDebounce = time.Hour

	acts := actions.New(aggregates.NewBoard(), cfg, nil, zap.NewNop())
	s := session.New(acts, codec.New(), session.NewFileDocumentStore(path), nil, cfg, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	defer s.Close()

	w, err := session.NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	rewritten := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n{\"cards\":[],\"connections\":[]}\n```\n"
	require.NoError(t, os.WriteFile(path, []byte(rewritten), 0o644))

	// Keep editing while the notification is in flight; the external
	// change must not appear until this goroutine asks for it.
	for i := 0; i < 20; i++ {
		acts.AddCard(actions.CardDraft{Content: "edit"}, actions.DefaultOptions())
	}
	assert.Equal(t, 21, acts.Board().CardCount())

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	assert.Equal(t, 21, acts.Board().CardCount())

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 0, acts.Board().CardCount())
}
