package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"dupefinder/internal/duplicates"
	"dupefinder/internal/models"
)

// renderGroups lists the members of the first limit groups, marking the files
// that would be deleted. limit <= 0 renders every group.
func renderGroups(groups []*models.DuplicateGroup, limit int) string {
	if len(groups) == 0 {
		return "No duplicate groups found.\n"
	}

	shown := groups
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var rows [][]string
	for i, group := range shown {
		deletes := make(map[string]bool, len(group.Files))
		for _, f := range group.FilesToDelete() {
			deletes[f.Path] = true
		}
		for _, f := range group.Files {
			action := "keep"
			if deletes[f.Path] {
				action = "delete"
			}
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				group.Classification.String(),
				f.Path,
				humanize.IBytes(uint64(max(f.Size, 0))),
				action,
			})
		}
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Group", "Type", "Path", "Size", "Action"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")
	if hidden := len(groups) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "... and %d more groups\n", hidden)
	}
	return b.String()
}

type jsonReport struct {
	ID         string                   `json:"id"`
	DurationMS int64                    `json:"duration_ms"`
	Statistics map[string]any           `json:"statistics"`
	Groups     []*models.DuplicateGroup `json:"groups"`
}

// writeJSON writes the reconciled groups and statistics as an indented JSON document
func writeJSON(w io.Writer, result *duplicates.AnalysisResult) error {
	report := jsonReport{
		ID:         result.ID,
		DurationMS: result.Duration.Milliseconds(),
		Statistics: result.Statistics.Map(),
		Groups:     result.Groups,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
