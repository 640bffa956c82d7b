// ABOUTME: Tests for conflict detection and resolution heuristics
// ABOUTME: Verifies blank-line handling, time-window auto-resolve, suggestions

package conflict

import (
	"testing"
	"time"
)

func TestDetectConflicts(t *testing.T) {
	d := NewDetector(0)

	conflicts := d.DetectConflicts("line1\nCHANGED", "line1\nline2")

	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(conflicts))
	}

	c := conflicts[0]
	if c.Line != 2 {
		t.Errorf("Expected conflict at line 2, got %d", c.Line)
	}
	if c.SourceContent != "CHANGED" {
		t.Errorf("Expected source CHANGED, got %q", c.SourceContent)
	}
	if c.TargetContent != "line2" {
		t.Errorf("Expected target line2, got %q", c.TargetContent)
	}
	if c.Resolved() {
		t.Error("New conflict should not be resolved")
	}
}

func TestDetectConflictsIgnoresBlankSides(t *testing.T) {
	d := NewDetector(0)

	// Second line is blank on one side, third is whitespace-only.
	conflicts := d.DetectConflicts("a\n\nb", "a\nx\n   ")

	if len(conflicts) != 0 {
		t.Errorf("Expected no conflicts for blank sides, got %d", len(conflicts))
	}
}

func TestDetectConflictsStopsAtShorterContent(t *testing.T) {
	d := NewDetector(0)

	// The extra target lines are beyond the shorter content and never conflict.
	conflicts := d.DetectConflicts("a", "b\nc\nd")

	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Line != 1 {
		t.Errorf("Expected conflict at line 1, got %d", conflicts[0].Line)
	}
}

func TestDetectConflictsIdentical(t *testing.T) {
	d := NewDetector(0)

	if conflicts := d.DetectConflicts("same\ntext", "same\ntext"); len(conflicts) != 0 {
		t.Errorf("Expected no conflicts, got %d", len(conflicts))
	}
}

func TestCanAutoResolveTimeWindow(t *testing.T) {
	d := NewDetector(24 * time.Hour)
	now := time.Now()

	local := VersionInfo{ModifiedAt: now, Kind: KindBinary}
	remote := VersionInfo{ModifiedAt: now.Add(-25 * time.Hour), Kind: KindBinary}

	if !d.CanAutoResolve(local, remote) {
		t.Error("Expected auto-resolve for edits more than 24h apart")
	}

	// Order of sides must not matter.
	if !d.CanAutoResolve(remote, local) {
		t.Error("Expected auto-resolve to be symmetric in its sides")
	}

	remote.ModifiedAt = now.Add(-1 * time.Hour)
	if d.CanAutoResolve(local, remote) {
		t.Error("Expected no auto-resolve for close-together binary edits")
	}
}

func TestCanAutoResolveTextKind(t *testing.T) {
	d := NewDetector(24 * time.Hour)
	now := time.Now()

	local := VersionInfo{ModifiedAt: now, Kind: KindPlainText}
	remote := VersionInfo{ModifiedAt: now, Kind: KindStructuredText}

	if !d.CanAutoResolve(local, remote) {
		t.Error("Expected auto-resolve for text content regardless of timestamps")
	}

	remote.Kind = KindRichText
	if d.CanAutoResolve(local, remote) {
		t.Error("Expected no auto-resolve when one side is rich text")
	}
}

func TestSuggestResolution(t *testing.T) {
	d := NewDetector(0)
	now := time.Now()

	tests := []struct {
		name   string
		local  VersionInfo
		remote VersionInfo
		want   Resolution
	}{
		{
			name:   "local newer",
			local:  VersionInfo{ModifiedAt: now, Kind: KindBinary},
			remote: VersionInfo{ModifiedAt: now.Add(-time.Minute), Kind: KindBinary},
			want:   ResolveLocal,
		},
		{
			name:   "remote newer",
			local:  VersionInfo{ModifiedAt: now.Add(-time.Minute), Kind: KindBinary},
			remote: VersionInfo{ModifiedAt: now, Kind: KindBinary},
			want:   ResolveRemote,
		},
		{
			name:   "equal timestamps text",
			local:  VersionInfo{ModifiedAt: now, Kind: KindPlainText},
			remote: VersionInfo{ModifiedAt: now, Kind: KindStructuredText},
			want:   ResolveMerge,
		},
		{
			name:   "equal timestamps non-text",
			local:  VersionInfo{ModifiedAt: now, Kind: KindBinary},
			remote: VersionInfo{ModifiedAt: now, Kind: KindBinary},
			want:   ResolveManual,
		},
	}

	for _, tt := range tests {
		if got := d.SuggestResolution(tt.local, tt.remote); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
