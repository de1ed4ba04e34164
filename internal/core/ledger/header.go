package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"audit-service/internal/core/normalize"

	"github.com/schollz/closestmatch"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9]+`)

var digitRegex = regexp.MustCompile(`[0-9]`)

// cfopColumn is the CFOP position in both layouts.
const cfopColumn = 6

// headerMatcher decides whether a row is a header by comparing its labels
// against the schema column names, tolerating small spelling differences.
type headerMatcher struct {
	columns []string
	labels  []string
	byLabel map[string]string
	cm      *closestmatch.ClosestMatch
}

func newHeaderMatcher(columns []string) *headerMatcher {
	m := &headerMatcher{
		columns: columns,
		labels:  make([]string, len(columns)),
		byLabel: make(map[string]string, len(columns)),
	}
	for i, col := range columns {
		label := normalizeLabel(col)
		m.labels[i] = label
		m.byLabel[label] = col
	}
	m.cm = closestmatch.New(m.labels, []int{2, 3})
	return m
}

// match returns the schema label closest to cell, or "" when none is close.
func (m *headerMatcher) match(cell string) string {
	label := normalizeLabel(cell)
	if label == "" || !strings.ContainsAny(label, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return ""
	}
	if _, ok := m.byLabel[label]; ok {
		return label
	}
	return m.cm.Closest(label)
}

// inspect reports whether cells is a header row. For header rows it also lists
// the labels that do not sit at their expected position.
func (m *headerMatcher) inspect(cells []string) (bool, []string) {
	if len(cells) > cfopColumn && digitRegex.MatchString(cells[cfopColumn]) {
		return false, nil
	}

	filled, matched := 0, 0
	var misplaced []string
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		filled++
		label := m.match(cell)
		if label == "" {
			continue
		}
		matched++
		if i >= len(m.labels) || m.labels[i] != label {
			misplaced = append(misplaced, fmt.Sprintf("%s na coluna %d", m.byLabel[label], i+1))
		}
	}
	if filled == 0 || matched*2 < filled {
		return false, nil
	}
	return true, misplaced
}

func normalizeLabel(s string) string {
	s = strings.ToUpper(normalize.RemoveAccents(s))
	return nonAlphanumericRegex.ReplaceAllString(s, "")
}
