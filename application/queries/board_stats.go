package queries

import (
	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/entities"
)

// BoardStatsResult summarizes a board for inspection tooling
type BoardStatsResult struct {
	CardCount       int                       `json:"card_count"`
	ConnectionCount int                       `json:"connection_count"`
	AssetCount      int                       `json:"asset_count"`
	CardsByType     map[entities.CardType]int `json:"cards_by_type"`
	TodoOpen        int                       `json:"todo_open"`
	TodoDone        int                       `json:"todo_done"`
}

// BoardStats computes summary statistics over a snapshot and its assets
func BoardStats(snap aggregates.Snapshot, assets map[string]string) BoardStatsResult {
	result := BoardStatsResult{
		AssetCount:  len(assets),
		CardsByType: map[entities.CardType]int{},
	}

	for _, card := range snap.Cards {
		if card == nil {
			continue
		}
		result.CardCount++
		result.CardsByType[card.Type]++
		if card.IsTodo() {
			if card.TodoState == entities.TodoStateDone {
				result.TodoDone++
			} else {
				result.TodoOpen++
			}
		}
	}
	result.ConnectionCount = len(snap.Connections)

	return result
}
