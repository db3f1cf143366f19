package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/entities"
	"cardboard/domain/core/valueobjects"
	pkgerrors "cardboard/pkg/errors"
)

const sampleDoc = "---\nboard: true\n---\n\n" +
	"## Assets\n\n" +
	"- asset-1: ![[attachments/photo.png]]\n" +
	"- asset-2: ![[attachments/diagram.svg]]\n\n" +
	"## Board\n\n" +
	"```\n" +
	`{"cards":[{"id":"a","content":"hi","pos":{"x":0,"y":0},"updatedAt":"2024-06-01T12:00:00.000Z","type":"markdown"}],"connections":[]}` +
	"\n```\n"

func mustID(t *testing.T, s string) valueobjects.EntityID {
	t.Helper()
	id, err := valueobjects.NewEntityIDFromString(s)
	require.NoError(t, err)
	return id
}

func TestParse_SampleDocument(t *testing.T) {
	doc, err := New().Parse([]byte(sampleDoc))
	require.NoError(t, err)

	require.Len(t, doc.Board.Cards, 1)
	card := doc.Board.Cards[0]
	assert.Equal(t, "a", card.ID.String())
	assert.Equal(t, "hi", card.Content)
	assert.Equal(t, entities.CardTypeMarkdown, card.Type)
	assert.Equal(t, valueobjects.NewPosition(0, 0), card.Pos)
	assert.Empty(t, doc.Board.Connections)

	assert.Equal(t, map[string]string{
		"asset-1": "attachments/photo.png",
		"asset-2": "attachments/diagram.svg",
	}, doc.Assets)

	assert.Equal(t, true, doc.Meta["board"])
}

func TestParse_EmptyAssetsSection(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n{\"cards\":[],\"connections\":[]}\n```\n"

	doc, err := New().Parse([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, doc.Assets)
	assert.Empty(t, doc.Board.Cards)
}

func TestParse_MissingBoardHeading(t *testing.T) {
	raw := "---\nboard: true\n---\n\n## Assets\n\n- a: ![[x.png]]\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_BoardSectionWithoutCodeBlock(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"just some prose instead of a fenced block\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_AssetsSectionNotAList(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"prose where the list should be\n\n" +
		"## Board\n\n" +
		"```\n{\"cards\":[],\"connections\":[]}\n```\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_FrontmatterWithoutBoardMarker(t *testing.T) {
	raw := "---\ntitle: notes\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n{\"cards\":[],\"connections\":[]}\n```\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_MissingFrontmatter(t *testing.T) {
	raw := "## Board\n\n```\n{\"cards\":[],\"connections\":[]}\n```\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_MalformedBoardJSON(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\nnot json at all\n```\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_CardWithUnknownTypeRejected(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n" +
		`{"cards":[{"id":"a","content":"x","pos":{"x":0,"y":0},"updatedAt":"2024-06-01T12:00:00.000Z","type":"mystery"}],"connections":[]}` +
		"\n```\n"

	_, err := New().Parse([]byte(raw))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidDocument(err))
}

func TestParse_NullCardEntriesTolerated(t *testing.T) {
	raw := "---\nboard: true\n---\n\n" +
		"## Assets\n\n" +
		"## Board\n\n" +
		"```\n" +
		`{"cards":[null,{"id":"a","content":"x","pos":{"x":0,"y":0},"updatedAt":"2024-06-01T12:00:00.000Z","type":"markdown"}],"connections":[]}` +
		"\n```\n"

	doc, err := New().Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, doc.Board.Cards, 2)
	assert.Nil(t, doc.Board.Cards[0])
	assert.Equal(t, "a", doc.Board.Cards[1].ID.String())
}

func TestRender_ThenParse_RoundTrips(t *testing.T) {
	width := 320.0
	ts := valueobjects.NewTimestamp(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	board := aggregates.Snapshot{
		Cards: []*entities.Card{
			{
				ID:        mustID(t, "card-1"),
				Content:   "# heading\n\nbody with --- inside",
				Width:     &width,
				Pos:       valueobjects.NewPosition(120, -40),
				UpdatedAt: ts,
				Type:      entities.CardTypeMarkdown,
			},
			{
				ID:        mustID(t, "card-2"),
				Content:   "buy milk",
				Pos:       valueobjects.NewPosition(0, 300),
				UpdatedAt: ts,
				Type:      entities.CardTypeTodo,
				TodoState: entities.TodoStateDone,
			},
		},
		Connections: []*entities.Connection{
			{
				ID:        mustID(t, "conn-1"),
				Start:     mustID(t, "card-1"),
				End:       mustID(t, "card-2"),
				UpdatedAt: ts,
			},
		},
	}
	assets := map[string]string{"asset-1": "attachments/pic.png"}

	c := New()
	rendered, err := c.Render(board, assets)
	require.NoError(t, err)

	doc, err := c.Parse(rendered)
	require.NoError(t, err)

	assert.Equal(t, board, doc.Board)
	assert.Equal(t, assets, doc.Assets)

	// A second render of the parsed document is byte-identical
	again, err := c.Render(doc.Board, doc.Assets)
	require.NoError(t, err)
	assert.Equal(t, string(rendered), string(again))
}

func TestRender_EmptyBoardAndAssets(t *testing.T) {
	c := New()
	rendered, err := c.Render(aggregates.Snapshot{
		Cards:       []*entities.Card{},
		Connections: []*entities.Connection{},
	}, nil)
	require.NoError(t, err)

	doc, err := c.Parse(rendered)
	require.NoError(t, err)
	assert.Empty(t, doc.Board.Cards)
	assert.Empty(t, doc.Board.Connections)
	assert.Empty(t, doc.Assets)
}

func TestParse_TimestampRoundTripsThroughJSON(t *testing.T) {
	doc, err := New().Parse([]byte(sampleDoc))
	require.NoError(t, err)

	card := doc.Board.Cards[0]
	assert.Equal(t, "2024-06-01T12:00:00.000Z", card.UpdatedAt.String())
}
