// Package codec converts between the board's persisted shape and the hybrid
// text document that stores it: a frontmatter header, an "Assets" link list
// and a "Board" section embedding the JSON payload in a fenced code block.
//
// Parse is pure parsing and Render is pure text assembly; neither touches
// board state.
package codec

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/valueobjects"
	pkgerrors "cardboard/pkg/errors"
)

const (
	headingAssets = "Assets"
	headingBoard  = "Board"

	// markerKey flags a file as a board document for the host application
	markerKey = "board"
)

// Document is the decoded form of a board file
type Document struct {
	Board  aggregates.Snapshot
	Assets map[string]string

	// Meta holds the frontmatter mapping, when it parses as YAML
	Meta map[string]interface{}
}

// Codec parses and renders board documents
type Codec struct {
	md       goldmark.Markdown
	validate *validator.Validate
}

// New creates a codec
func New() *Codec {
	v := validator.New()

	// Teach the validator to see through the value-object wrappers
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(valueobjects.EntityID); ok {
			return id.String()
		}
		return nil
	}, valueobjects.EntityID{})

	return &Codec{
		md:       goldmark.New(),
		validate: v,
	}
}

// Parse decodes a board document into its JSON payload and asset mapping.
// Malformed structure is reported as an invalid-document error; callers are
// expected to fall back to an empty board rather than crash.
func (c *Codec) Parse(data []byte) (*Document, error) {
	header, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var meta map[string]interface{}
	if yaml.Unmarshal([]byte(header), &meta) == nil {
		doc.Meta = meta
	}
	if marker, _ := doc.Meta[markerKey].(bool); !marker {
		return nil, pkgerrors.NewInvalidDocumentError("not a board document")
	}

	source := []byte(body)
	root := c.md.Parser().Parse(gmtext.NewReader(source))

	blocks := topLevelBlocks(root)

	boardJSON, err := parseBoardSection(blocks, source)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(boardJSON), &doc.Board); err != nil {
		return nil, pkgerrors.NewInvalidDocumentError("board payload is not valid JSON").WithCause(err)
	}
	if err := c.validateBoard(&doc.Board); err != nil {
		return nil, err
	}

	assets, err := parseAssetsSection(blocks, source)
	if err != nil {
		return nil, err
	}
	doc.Assets = assets

	return doc, nil
}

// splitFrontmatter splits off the metadata header delimited by the
// horizontal-rule marker, returning the header text and the remainder.
func splitFrontmatter(data string) (header, body string, err error) {
	parts := strings.SplitN(data, "---", 3)
	if len(parts) < 3 {
		return "", "", pkgerrors.NewInvalidDocumentError("missing frontmatter header")
	}
	return parts[1], parts[2], nil
}

// topLevelBlocks collects the document's direct children in order
func topLevelBlocks(root ast.Node) []ast.Node {
	blocks := []ast.Node{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = append(blocks, n)
	}
	return blocks
}

// parseBoardSection locates the level-2 "Board" heading and returns the
// text of the fenced code block that must immediately follow it.
func parseBoardSection(blocks []ast.Node, source []byte) (string, error) {
	idx := findHeading(blocks, source, headingBoard)
	if idx < 0 || idx+1 >= len(blocks) {
		return "", pkgerrors.NewInvalidDocumentError("missing Board section")
	}

	code, ok := blocks[idx+1].(*ast.FencedCodeBlock)
	if !ok {
		return "", pkgerrors.NewInvalidDocumentError("Board section must contain a code block")
	}
	return blockText(code, source), nil
}

// parseAssetsSection locates the level-2 "Assets" heading and decodes the
// list that follows it into an id to link mapping. An Assets heading
// directly followed by the Board heading means no assets.
func parseAssetsSection(blocks []ast.Node, source []byte) (map[string]string, error) {
	assets := map[string]string{}

	idx := findHeading(blocks, source, headingAssets)
	if idx < 0 || idx+1 >= len(blocks) {
		return nil, pkgerrors.NewInvalidDocumentError("missing Assets section")
	}

	next := blocks[idx+1]
	if h, ok := next.(*ast.Heading); ok && h.Level == 2 && inlineText(h, source) == headingBoard {
		return assets, nil
	}

	list, ok := next.(*ast.List)
	if !ok {
		return nil, pkgerrors.NewInvalidDocumentError("Assets section must contain a list")
	}

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		block := item.FirstChild()
		if block == nil {
			continue
		}
		text := inlineText(block, source)
		if text == "" {
			continue
		}

		id, value, found := strings.Cut(text, ": ")
		if !found {
			continue
		}
		value = strings.TrimPrefix(value, "![[")
		value = strings.TrimSuffix(value, "]]")
		assets[id] = value
	}

	return assets, nil
}

// findHeading returns the index of the first level-2 heading with the given
// literal title, or -1.
func findHeading(blocks []ast.Node, source []byte, title string) int {
	for i, n := range blocks {
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 && inlineText(h, source) == title {
			return i
		}
	}
	return -1
}

// inlineText concatenates the text segments directly under a block node
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

// blockText concatenates the raw lines of a code block
func blockText(n *ast.FencedCodeBlock, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// validateBoard checks the structural invariants of a decoded payload.
// Nil entries are tolerated; the board drops them on load.
func (c *Codec) validateBoard(snap *aggregates.Snapshot) error {
	for _, card := range snap.Cards {
		if card == nil {
			continue
		}
		if err := c.validate.Struct(card); err != nil {
			return pkgerrors.NewInvalidDocumentError("card fails validation").WithCause(err)
		}
	}
	for _, conn := range snap.Connections {
		if conn == nil {
			continue
		}
		if err := c.validate.Struct(conn); err != nil {
			return pkgerrors.NewInvalidDocumentError("connection fails validation").WithCause(err)
		}
	}
	return nil
}
