package codec

import (
	"encoding/json"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cardboard/domain/core/aggregates"
	pkgerrors "cardboard/pkg/errors"
)

// Render assembles a board document from a snapshot and asset mapping. The
// layout is fixed: frontmatter marker, Assets list, Board section with the
// JSON payload in a fenced block. Rendering a well-formed snapshot never
// fails structurally; output re-parses to the identical document.
func (c *Codec) Render(board aggregates.Snapshot, assets map[string]string) ([]byte, error) {
	payload, err := json.Marshal(board)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal board payload")
	}

	marker, err := yaml.Marshal(map[string]bool{markerKey: true})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal frontmatter")
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(marker)
	sb.WriteString("---\n\n")

	sb.WriteString("## " + headingAssets + "\n\n")
	for _, id := range sortedAssetIDs(assets) {
		sb.WriteString("- " + id + ": ![[" + assets[id] + "]]\n")
	}
	if len(assets) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("## " + headingBoard + "\n\n")
	sb.WriteString("```\n")
	sb.Write(payload)
	sb.WriteString("\n```\n")

	return []byte(sb.String()), nil
}

// sortedAssetIDs keeps rendered asset order deterministic
func sortedAssetIDs(assets map[string]string) []string {
	ids := make([]string, 0, len(assets))
	for id := range assets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
