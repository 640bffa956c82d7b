// ABOUTME: Tests for aggregate statistics reporting
// ABOUTME: Covers totals, status breakdown, contributor ranking, feed limits

package vcs

import (
	"testing"

	"github.com/nainya/draftstore/pkg/conflict"
)

func setupReporter(t *testing.T, feedLimit, contributorLimit int) (*StatisticsReporter, *VersionStore, *BranchManager, *MergeEngine) {
	t.Helper()
	vs, bm := setupTestStores(t)
	me := NewMergeEngine(vs, bm, conflict.NewDetector(0))
	r := NewStatisticsReporter(vs, bm, me, feedLimit, contributorLimit)
	return r, vs, bm, me
}

func TestStatisticsTotals(t *testing.T) {
	r, vs, bm, me := setupReporter(t, 20, 10)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "one", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "b", CommitInfo{Message: "two", Author: "alice"})
	feature, _ := bm.CreateBranch("doc1", "proj1", "feature", "", "bob")
	main := bm.MainBranch("doc1")
	me.CreateMergeRequest(feature.ID, main.ID, "mr", "", "bob")

	stats := r.VersionStatistics("proj1")

	if stats.TotalVersions != 2 {
		t.Errorf("Expected 2 versions, got %d", stats.TotalVersions)
	}
	if stats.TotalBranches != 2 {
		t.Errorf("Expected 2 branches, got %d", stats.TotalBranches)
	}
	if stats.ActiveBranches != 1 {
		t.Errorf("Expected 1 active branch, got %d", stats.ActiveBranches)
	}
	if stats.MergeRequestsByStatus[MergeStatusOpen] != 1 {
		t.Errorf("Expected 1 open merge request, got %d", stats.MergeRequestsByStatus[MergeStatusOpen])
	}
	// 2 versions + 2 branches + 1 merge request.
	if len(stats.RecentActivity) != 5 {
		t.Errorf("Expected 5 activity entries, got %d", len(stats.RecentActivity))
	}
}

func TestStatisticsContributorRanking(t *testing.T) {
	r, vs, _, _ := setupReporter(t, 20, 10)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "b", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "c", CommitInfo{Message: "m", Author: "bob"})
	// Autosaves show in the feed but never count toward contributions.
	vs.CreateAutosaveVersion("doc1", "proj1", "totally different words", "bob")

	stats := r.VersionStatistics("proj1")

	if len(stats.TopContributors) != 2 {
		t.Fatalf("Expected 2 contributors, got %d", len(stats.TopContributors))
	}
	if stats.TopContributors[0].Author != "alice" || stats.TopContributors[0].Versions != 2 {
		t.Errorf("Unexpected top contributor: %+v", stats.TopContributors[0])
	}
	if stats.TopContributors[1].Author != "bob" || stats.TopContributors[1].Versions != 1 {
		t.Errorf("Unexpected second contributor: %+v", stats.TopContributors[1])
	}
	if stats.TotalVersions != 4 {
		t.Errorf("Autosave should count as a version, got %d", stats.TotalVersions)
	}
}

func TestStatisticsContributorTieBreak(t *testing.T) {
	r, vs, _, _ := setupReporter(t, 20, 10)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "m", Author: "zoe"})
	vs.CreateVersion("doc1", "proj1", "b", CommitInfo{Message: "m", Author: "adam"})

	stats := r.VersionStatistics("proj1")
	// Equal counts rank alphabetically.
	if stats.TopContributors[0].Author != "adam" {
		t.Errorf("Expected adam first on tie, got %s", stats.TopContributors[0].Author)
	}
}

func TestStatisticsLimits(t *testing.T) {
	r, vs, _, _ := setupReporter(t, 3, 1)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "b", CommitInfo{Message: "m", Author: "bob"})
	vs.CreateVersion("doc1", "proj1", "c", CommitInfo{Message: "m", Author: "carol"})
	vs.CreateVersion("doc1", "proj1", "d", CommitInfo{Message: "m", Author: "alice"})

	stats := r.VersionStatistics("proj1")

	if len(stats.RecentActivity) != 3 {
		t.Errorf("Feed should be capped at 3, got %d", len(stats.RecentActivity))
	}
	if len(stats.TopContributors) != 1 {
		t.Fatalf("Contributors should be capped at 1, got %d", len(stats.TopContributors))
	}
	if stats.TopContributors[0].Author != "alice" {
		t.Errorf("Expected alice with 2 versions, got %+v", stats.TopContributors[0])
	}
}

func TestStatisticsActivitySortedNewestFirst(t *testing.T) {
	r, vs, _, _ := setupReporter(t, 20, 10)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "b", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc1", "proj1", "c", CommitInfo{Message: "m", Author: "alice"})

	stats := r.VersionStatistics("proj1")
	for i := 1; i < len(stats.RecentActivity); i++ {
		if stats.RecentActivity[i].OccurredAt.After(stats.RecentActivity[i-1].OccurredAt) {
			t.Error("Activity feed should be sorted newest first")
		}
	}
}

func TestStatisticsProjectFilter(t *testing.T) {
	r, vs, _, _ := setupReporter(t, 20, 10)

	vs.CreateVersion("doc1", "proj1", "a", CommitInfo{Message: "m", Author: "alice"})
	vs.CreateVersion("doc2", "proj2", "b", CommitInfo{Message: "m", Author: "bob"})

	filtered := r.VersionStatistics("proj1")
	if filtered.TotalVersions != 1 || filtered.TotalBranches != 1 {
		t.Errorf("Filter should scope to proj1: %+v", filtered)
	}
	if len(filtered.TopContributors) != 1 || filtered.TopContributors[0].Author != "alice" {
		t.Errorf("Filter should scope contributors: %+v", filtered.TopContributors)
	}

	// Empty project id means everything.
	all := r.VersionStatistics("")
	if all.TotalVersions != 2 || all.TotalBranches != 2 {
		t.Errorf("Empty filter should cover all projects: %+v", all)
	}
}

func TestStatisticsEmptyStores(t *testing.T) {
	r, _, _, _ := setupReporter(t, 20, 10)

	stats := r.VersionStatistics("")
	if stats.TotalVersions != 0 || stats.TotalBranches != 0 || stats.ActiveBranches != 0 {
		t.Errorf("Expected zero totals: %+v", stats)
	}
	if len(stats.RecentActivity) != 0 || len(stats.TopContributors) != 0 {
		t.Error("Expected empty feed and ranking")
	}
	if len(stats.MergeRequestsByStatus) != 0 {
		t.Error("Expected empty status map")
	}
}
