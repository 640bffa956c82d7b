// ABOUTME: Line-level diff computation between document snapshots
// ABOUTME: Positional comparison with per-category change statistics

package diff

import "strings"

// ChangeType classifies a single line change
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeModified
)

var changeTypeNames = map[ChangeType]string{
	ChangeAdded:    "added",
	ChangeRemoved:  "removed",
	ChangeModified: "modified",
}

func (t ChangeType) String() string {
	if name, ok := changeTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// LineChange represents one changed line
type LineChange struct {
	Line       int        `json:"line"` // 1-based line number
	Type       ChangeType `json:"type"`
	Content    string     `json:"content"`    // line text on the new side (old side for removals)
	OldContent string     `json:"oldContent"` // previous text, set for modifications only
}

// Statistics summarizes a diff per change category
type Statistics struct {
	LinesAdded        int `json:"linesAdded"`
	LinesDeleted      int `json:"linesDeleted"`
	LinesModified     int `json:"linesModified"`
	WordsAdded        int `json:"wordsAdded"`
	WordsDeleted      int `json:"wordsDeleted"`
	CharactersAdded   int `json:"charactersAdded"`
	CharactersDeleted int `json:"charactersDeleted"`
}

// DocumentDiff is the computed difference between two content snapshots
type DocumentDiff struct {
	Additions     []LineChange `json:"additions"`
	Deletions     []LineChange `json:"deletions"`
	Modifications []LineChange `json:"modifications"`
	LineChanges   []LineChange `json:"lineChanges"` // all changes in line order
	Statistics    Statistics   `json:"statistics"`
}

// Engine computes diffs between content snapshots. It is stateless.
type Engine struct{}

// NewEngine creates a diff engine
func NewEngine() *Engine {
	return &Engine{}
}

// Diff compares two content snapshots line by line at matching positional
// indexes. This is deliberately not a minimal-edit-distance algorithm: a line
// inserted near the top shifts every following line into "modified". That
// positional behavior is part of the engine's contract and is covered by tests.
func (e *Engine) Diff(oldContent, newContent string) *DocumentDiff {
	oldLines := SplitLines(oldContent)
	newLines := SplitLines(newContent)

	d := &DocumentDiff{}

	limit := len(oldLines)
	if len(newLines) > limit {
		limit = len(newLines)
	}

	for i := 0; i < limit; i++ {
		switch {
		case i >= len(oldLines):
			change := LineChange{Line: i + 1, Type: ChangeAdded, Content: newLines[i]}
			d.Additions = append(d.Additions, change)
			d.LineChanges = append(d.LineChanges, change)
			d.Statistics.WordsAdded += wordCount(newLines[i])
			d.Statistics.CharactersAdded += len(newLines[i])

		case i >= len(newLines):
			change := LineChange{Line: i + 1, Type: ChangeRemoved, Content: oldLines[i]}
			d.Deletions = append(d.Deletions, change)
			d.LineChanges = append(d.LineChanges, change)
			d.Statistics.WordsDeleted += wordCount(oldLines[i])
			d.Statistics.CharactersDeleted += len(oldLines[i])

		case oldLines[i] != newLines[i]:
			change := LineChange{Line: i + 1, Type: ChangeModified, Content: newLines[i], OldContent: oldLines[i]}
			d.Modifications = append(d.Modifications, change)
			d.LineChanges = append(d.LineChanges, change)
			accumulateModification(&d.Statistics, oldLines[i], newLines[i])
		}
	}

	d.Statistics.LinesAdded = len(d.Additions)
	d.Statistics.LinesDeleted = len(d.Deletions)
	d.Statistics.LinesModified = len(d.Modifications)

	return d
}

// accumulateModification records the positive word/character count difference
// between the two sides of a modified line. This is a length delta, not a true
// character diff.
func accumulateModification(stats *Statistics, oldLine, newLine string) {
	oldWords := wordCount(oldLine)
	newWords := wordCount(newLine)
	if newWords > oldWords {
		stats.WordsAdded += newWords - oldWords
	} else {
		stats.WordsDeleted += oldWords - newWords
	}

	if len(newLine) > len(oldLine) {
		stats.CharactersAdded += len(newLine) - len(oldLine)
	} else {
		stats.CharactersDeleted += len(oldLine) - len(newLine)
	}
}

// SplitLines splits content into lines. Empty content yields no lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func wordCount(line string) int {
	return len(strings.Fields(line))
}
