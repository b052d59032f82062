package duplicates

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"dupefinder/internal/models"
)

// Statistics keys, as exposed by Statistics.Map
const (
	StatTotalFilesAnalyzed    = "total_files_analyzed"
	StatDuplicateGroupsFound  = "duplicate_groups_found"
	StatTotalDuplicateFiles   = "total_duplicate_files"
	StatTotalWastedSpaceBytes = "total_wasted_space_bytes"
	StatDuplicatePercentage   = "duplicate_percentage"
	StatTypeStatistics        = "type_statistics"
)

// Statistics aggregates the reconciled groups of one analysis
type Statistics struct {
	TotalFilesAnalyzed    int                           `json:"total_files_analyzed"`
	DuplicateGroupsFound  int                           `json:"duplicate_groups_found"`
	TotalDuplicateFiles   int                           `json:"total_duplicate_files"`
	TotalWastedSpaceBytes int64                         `json:"total_wasted_space_bytes"`
	DuplicatePercentage   float64                       `json:"duplicate_percentage"`
	GroupsByType          map[models.Classification]int `json:"type_statistics"`
}

// AnalysisResult is the immutable outcome of one analysis.
// The per-strategy lists are the raw, pre-reconciliation outputs.
type AnalysisResult struct {
	ID                 string                   `json:"id"`
	StartedAt          time.Time                `json:"started_at"`
	Duration           time.Duration            `json:"duration"`
	ExactDuplicates    []*models.DuplicateGroup `json:"exact_duplicates"`
	MetadataDuplicates []*models.DuplicateGroup `json:"metadata_duplicates"`
	SizeDuplicates     []*models.DuplicateGroup `json:"size_duplicates"`
	Groups             []*models.DuplicateGroup `json:"groups"`
	Statistics         Statistics               `json:"statistics"`
}

// ComputeStatistics summarizes reconciled groups against the number of files analyzed.
// TotalDuplicateFiles counts every member, including the file that would be kept.
func ComputeStatistics(groups []*models.DuplicateGroup, totalFiles int) Statistics {
	stats := Statistics{
		TotalFilesAnalyzed:   totalFiles,
		DuplicateGroupsFound: len(groups),
		GroupsByType:         make(map[models.Classification]int, len(models.Classifications())),
	}
	for _, c := range models.Classifications() {
		stats.GroupsByType[c] = 0
	}

	for _, g := range groups {
		stats.TotalDuplicateFiles += g.DuplicateCount()
		stats.TotalWastedSpaceBytes += g.WastedSpace()
		stats.GroupsByType[g.Classification]++
	}

	if totalFiles > 0 {
		stats.DuplicatePercentage = float64(stats.TotalDuplicateFiles) / float64(totalFiles) * 100.0
	}
	return stats
}

// Map returns the statistics keyed by their stable names
func (s Statistics) Map() map[string]any {
	byType := make(map[string]int, len(s.GroupsByType))
	for c, n := range s.GroupsByType {
		byType[c.String()] = n
	}
	return map[string]any{
		StatTotalFilesAnalyzed:    s.TotalFilesAnalyzed,
		StatDuplicateGroupsFound:  s.DuplicateGroupsFound,
		StatTotalDuplicateFiles:   s.TotalDuplicateFiles,
		StatTotalWastedSpaceBytes: s.TotalWastedSpaceBytes,
		StatDuplicatePercentage:   s.DuplicatePercentage,
		StatTypeStatistics:        byType,
	}
}

func emptyResult(id string, startedAt time.Time) *AnalysisResult {
	return &AnalysisResult{
		ID:                 id,
		StartedAt:          startedAt,
		ExactDuplicates:    []*models.DuplicateGroup{},
		MetadataDuplicates: []*models.DuplicateGroup{},
		SizeDuplicates:     []*models.DuplicateGroup{},
		Groups:             []*models.DuplicateGroup{},
		Statistics:         ComputeStatistics(nil, 0),
	}
}

// GroupsOf returns the reconciled groups with the given classification
func (r *AnalysisResult) GroupsOf(c models.Classification) []*models.DuplicateGroup {
	var out []*models.DuplicateGroup
	for _, g := range r.Groups {
		if g.Classification == c {
			out = append(out, g)
		}
	}
	return out
}

// Summary renders the statistics as plain text for reports
func (r *AnalysisResult) Summary() string {
	s := r.Statistics
	var b strings.Builder
	b.WriteString("Duplicate Analysis Results\n")
	b.WriteString("==========================\n")
	fmt.Fprintf(&b, "Total Files Analyzed: %d\n", s.TotalFilesAnalyzed)
	fmt.Fprintf(&b, "Duplicate Groups Found: %d\n", s.DuplicateGroupsFound)
	fmt.Fprintf(&b, "Total Duplicate Files: %d (%.1f%%)\n", s.TotalDuplicateFiles, s.DuplicatePercentage)
	fmt.Fprintf(&b, "Total Wasted Space: %s\n", humanize.IBytes(uint64(max(s.TotalWastedSpaceBytes, 0))))
	b.WriteString("\nBreakdown:\n")
	fmt.Fprintf(&b, "- Exact Duplicates: %d groups\n", s.GroupsByType[models.ExactMatch])
	fmt.Fprintf(&b, "- Metadata Duplicates: %d groups\n", s.GroupsByType[models.MetadataMatch])
	fmt.Fprintf(&b, "- Size-based Potential: %d groups\n", s.GroupsByType[models.SizeMatch])
	return b.String()
}
