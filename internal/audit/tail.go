package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// TailFilter selects entries for display.
type TailFilter struct {
	AgentType string    // exact match, empty = any
	Status    string    // danger | caution | error, empty = any
	From      time.Time // zero value = no lower bound
	To        time.Time // zero value = no upper bound
	Limit     int       // keep the last N matches, 0 = all
}

// TailSummary holds status counts for the selected entries.
type TailSummary struct {
	Total          int    `json:"total"`
	DangerCount    int    `json:"danger_count"`
	CautionCount   int    `json:"caution_count"`
	ErrorCount     int    `json:"error_count"`
	FirstTimestamp string `json:"first_timestamp"`
	LastTimestamp  string `json:"last_timestamp"`
}

// TailResult holds filtered entries and their summary.
type TailResult struct {
	Entries []AuditEntry `json:"entries"`
	Summary TailSummary  `json:"summary"`
}

// Tail reads the audit log and returns the entries matching the filter.
// Malformed lines are skipped; use Verify to detect them.
func Tail(path string, filter TailFilter) (*TailResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var matched []AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		var entry AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if filter.matches(entry) {
			matched = append(matched, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}

	result := &TailResult{Entries: matched}
	for _, e := range matched {
		updateSummary(&result.Summary, e)
	}
	return result, nil
}

func (f TailFilter) matches(e AuditEntry) bool {
	if f.AgentType != "" && e.Fields.AgentType != f.AgentType {
		return false
	}
	if f.Status != "" && !strings.EqualFold(e.Status, f.Status) {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	ts, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		return false
	}
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}
	return true
}

func updateSummary(s *TailSummary, e AuditEntry) {
	s.Total++
	switch strings.ToLower(e.Status) {
	case "danger":
		s.DangerCount++
	case "caution":
		s.CautionCount++
	case "error":
		s.ErrorCount++
	}
	if s.FirstTimestamp == "" {
		s.FirstTimestamp = e.Timestamp
	}
	s.LastTimestamp = e.Timestamp
}

const separator = "──────────────────────────────────────────────────────────────────"

// FormatText renders a TailResult as a human-readable table.
func FormatText(result *TailResult) string {
	if len(result.Entries) == 0 {
		return "No entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s – %s UTC\n", formatDateTime(result.Summary.FirstTimestamp), formatDateTime(result.Summary.LastTimestamp))
	b.WriteString(separator + "\n")
	for _, e := range result.Entries {
		fmt.Fprintf(&b, "%-10s %-8s %-18s %-18s %-14s %s\n",
			formatTimeOnly(e.Timestamp),
			strings.ToUpper(e.Status),
			truncate(e.Fields.AgentType, 18),
			truncate(e.Fields.Capability, 18),
			truncate(e.Fields.Tool, 14),
			strings.Join(e.Signals, ","))
	}
	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))
	return b.String()
}

// FormatJSON renders a TailResult as indented JSON.
func FormatJSON(result *TailResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tail result: %w", err)
	}
	return string(data), nil
}

func formatDateTime(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s TailSummary) string {
	parts := []string{}
	if s.DangerCount > 0 {
		parts = append(parts, fmt.Sprintf("%d danger", s.DangerCount))
	}
	if s.CautionCount > 0 {
		parts = append(parts, fmt.Sprintf("%d caution", s.CautionCount))
	}
	if s.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("%d error", s.ErrorCount))
	}
	return fmt.Sprintf("Summary: %d entries | %s\n", s.Total, strings.Join(parts, ", "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
