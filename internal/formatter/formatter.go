// package formatter exports play counts and play history to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "text"
	JSON     Format = "json"
)

// ParseFormat accepts csv, md/markdown, text/txt and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// CountRow is one catalog item with its play count.
type CountRow struct {
	Item  models.Item `json:"item"`
	Count int         `json:"count"`
}

// CountReport is a snapshot of play counts joined with catalog metadata.
type CountReport struct {
	Rows        []CountRow `json:"rows"`
	Min         int        `json:"min"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// NewCountReport joins entries with catalog metadata. Entries for ids that
// are no longer in the catalog keep only their id. Catalog items without an
// entry are included with a zero count.
func NewCountReport(catalog models.Catalog, entries []models.PlayCountEntry, now time.Time) *CountReport {
	index := catalog.Index()
	seen := make(map[string]struct{}, len(entries))
	report := &CountReport{GeneratedAt: now}

	for _, e := range entries {
		item, ok := index[e.ItemID]
		if !ok {
			item = models.Item{ID: e.ItemID, Title: e.ItemID}
		}
		seen[e.ItemID] = struct{}{}
		report.Rows = append(report.Rows, CountRow{Item: item, Count: e.Count})
	}

	for _, item := range catalog {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		report.Rows = append(report.Rows, CountRow{Item: item})
	}

	if len(catalog) > 0 {
		report.Min = -1
		for _, row := range report.Rows {
			if _, ok := index[row.Item.ID]; !ok {
				continue
			}
			if report.Min < 0 || row.Count < report.Min {
				report.Min = row.Count
			}
		}
	}
	return report
}

// CountsToCSV renders the report with columns: ID, Platform, Title, Artist, Plays
func CountsToCSV(report *CountReport) ([]byte, error) {
	records := [][]string{{"ID", "Platform", "Title", "Artist", "Plays"}}
	for _, row := range report.Rows {
		records = append(records, []string{
			row.Item.ID,
			row.Item.Platform.String(),
			row.Item.Title,
			row.Item.Artist,
			strconv.Itoa(row.Count),
		})
	}
	return writeCSV(records)
}

// CountsToMarkdown renders the report as a Markdown table.
func CountsToMarkdown(report *CountReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Play Counts\n\n")
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(report.Rows)))
	buf.WriteString(fmt.Sprintf("**Least played**: %d\n", report.Min))
	if !report.GeneratedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Generated**: %s\n", report.GeneratedAt.Format(time.RFC3339)))
	}

	buf.WriteString("\n| Plays | Platform | Track |\n|---:|---|---|\n")
	for _, row := range report.Rows {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", row.Count, platformLabel(row.Item), escapeCell(row.Item.DisplayName())))
	}

	return buf.Bytes(), nil
}

// CountsToText renders the report as aligned plain text.
func CountsToText(report *CountReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n", len(report.Rows)))
	buf.WriteString(fmt.Sprintf("Least played: %d\n\n", report.Min))
	for _, row := range report.Rows {
		buf.WriteString(fmt.Sprintf("%5d  %-2s  %s\n", row.Count, platformLabel(row.Item), row.Item.DisplayName()))
	}

	return buf.Bytes(), nil
}

// HistoryToCSV renders plays with columns: Played At, Platform, Title, Artist, Play Count, Item ID
func HistoryToCSV(plays []models.Play) ([]byte, error) {
	records := [][]string{{"Played At", "Platform", "Title", "Artist", "Play Count", "Item ID"}}
	for _, p := range plays {
		records = append(records, []string{
			p.PlayedAt.Format(time.RFC3339),
			p.Platform.String(),
			p.Title,
			p.Artist,
			strconv.Itoa(p.PlayCount),
			p.ItemID,
		})
	}
	return writeCSV(records)
}

// HistoryToMarkdown renders plays as a numbered Markdown list.
func HistoryToMarkdown(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Play History\n\n")
	buf.WriteString(fmt.Sprintf("**Plays**: %d\n\n", len(plays)))
	for i, p := range plays {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s, play #%d) _%s_\n",
			i+1, p.Artist, p.Title, p.Platform.Label(), p.PlayCount, p.PlayedAt.Format("2006-01-02 15:04")))
	}

	return buf.Bytes(), nil
}

// HistoryToText renders plays one per line.
func HistoryToText(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Plays: %d\n\n", len(plays)))
	for _, p := range plays {
		buf.WriteString(fmt.Sprintf("%s  %-2s  %s - %s\n", p.PlayedAt.Format("2006-01-02 15:04"), p.Platform.Label(), p.Artist, p.Title))
	}

	return buf.Bytes(), nil
}

// ExportCounts renders report in format.
func ExportCounts(report *CountReport, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return CountsToCSV(report)
	case Markdown:
		return CountsToMarkdown(report)
	case Text:
		return CountsToText(report)
	case JSON:
		return shared.MarshalJSON(report, true)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportHistory renders plays in format.
func ExportHistory(plays []models.Play, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return HistoryToCSV(plays)
	case Markdown:
		return HistoryToMarkdown(plays)
	case Text:
		return HistoryToText(plays)
	case JSON:
		return shared.MarshalJSON(plays, true)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes data to path, defaulting to {base}{ext} when path is empty.
func WriteExport(data []byte, path, base string, format Format) (string, error) {
	if path == "" {
		path = base + format.Extension()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return path, nil
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func platformLabel(item models.Item) string {
	if item.Platform == "" {
		return "?"
	}
	return item.Platform.Label()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
