// ABOUTME: Merge conflict detection between divergent branch contents
// ABOUTME: Line-level overlap classification with auto-resolution heuristics

package conflict

import (
	"strings"
	"time"

	"github.com/nainya/draftstore/pkg/diff"
)

// ContentKind classifies content for auto-resolution purposes
type ContentKind int

const (
	KindPlainText ContentKind = iota
	KindStructuredText // markdown and friends
	KindRichText
	KindBinary
)

func (k ContentKind) isText() bool {
	return k == KindPlainText || k == KindStructuredText
}

// Resolution is a suggested way to settle a conflict
type Resolution string

const (
	ResolveMerge  Resolution = "merge"
	ResolveLocal  Resolution = "local"
	ResolveRemote Resolution = "remote"
	ResolveManual Resolution = "manual"
)

// MergeConflict represents one line-level disagreement between branches
type MergeConflict struct {
	Line          int    `json:"line"`   // 1-based line number
	Column        int    `json:"column"` // always 0, detection is whole-line
	SourceContent string `json:"sourceContent"`
	TargetContent string `json:"targetContent"`
	Resolution    string `json:"resolution,omitempty"` // substitute text once resolved
}

// Resolved reports whether a resolution has been supplied
func (c *MergeConflict) Resolved() bool {
	return c.Resolution != ""
}

// VersionInfo carries the facts the heuristics need about one side
type VersionInfo struct {
	ModifiedAt time.Time
	Kind       ContentKind
}

// Detector finds and classifies conflicts between candidate contents
type Detector struct {
	autoResolveWindow time.Duration
}

// NewDetector creates a detector. window is the wall-clock gap beyond which
// two edits are considered safely orderable; zero selects the 24h default.
func NewDetector(window time.Duration) *Detector {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Detector{autoResolveWindow: window}
}

// DetectConflicts compares contents line by line up to the shorter line count.
// A conflict is recorded when the lines differ and both are non-blank; a blank
// side is not treated as conflicting, which avoids spurious conflicts from
// trailing whitespace.
func (d *Detector) DetectConflicts(sourceContent, targetContent string) []MergeConflict {
	sourceLines := diff.SplitLines(sourceContent)
	targetLines := diff.SplitLines(targetContent)

	limit := len(sourceLines)
	if len(targetLines) < limit {
		limit = len(targetLines)
	}

	var conflicts []MergeConflict
	for i := 0; i < limit; i++ {
		if sourceLines[i] == targetLines[i] {
			continue
		}
		if strings.TrimSpace(sourceLines[i]) == "" || strings.TrimSpace(targetLines[i]) == "" {
			continue
		}
		conflicts = append(conflicts, MergeConflict{
			Line:          i + 1,
			SourceContent: sourceLines[i],
			TargetContent: targetLines[i],
		})
	}

	return conflicts
}

// CanAutoResolve reports whether two divergent versions are safe to resolve
// without human input: either the edits are far enough apart in time that the
// newer one wins safely, or the content is text and mergeable by convention.
func (d *Detector) CanAutoResolve(local, remote VersionInfo) bool {
	gap := local.ModifiedAt.Sub(remote.ModifiedAt)
	if gap < 0 {
		gap = -gap
	}
	if gap > d.autoResolveWindow {
		return true
	}
	return local.Kind.isText() && remote.Kind.isText()
}

// SuggestResolution prefers whichever side was modified strictly later. Equal
// timestamps on text content suggest a merge; anything else needs a human.
func (d *Detector) SuggestResolution(local, remote VersionInfo) Resolution {
	switch {
	case local.ModifiedAt.After(remote.ModifiedAt):
		return ResolveLocal
	case remote.ModifiedAt.After(local.ModifiedAt):
		return ResolveRemote
	case local.Kind.isText() && remote.Kind.isText():
		return ResolveMerge
	default:
		return ResolveManual
	}
}
