// ABOUTME: Read-only aggregate analytics over versions, branches and merges
// ABOUTME: Activity feed, status breakdown, contributor ranking

package vcs

import (
	"fmt"
	"sort"
	"time"
)

// ActivityKind classifies an activity feed entry
type ActivityKind string

const (
	ActivityVersion ActivityKind = "version"
	ActivityBranch  ActivityKind = "branch"
	ActivityMerge   ActivityKind = "merge"
)

// ActivityEntry is one row of the recent-activity feed
type ActivityEntry struct {
	Kind        ActivityKind `json:"kind"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	OccurredAt  time.Time    `json:"occurredAt"`
}

// ContributorStats ranks an author by manual version count
type ContributorStats struct {
	Author   string `json:"author"`
	Versions int    `json:"versions"`
}

// VersionStatistics is the aggregate analytics view
type VersionStatistics struct {
	TotalVersions         int                 `json:"totalVersions"`
	TotalBranches         int                 `json:"totalBranches"`
	ActiveBranches        int                 `json:"activeBranches"`
	MergeRequestsByStatus map[MergeStatus]int `json:"mergeRequestsByStatus"`
	RecentActivity        []ActivityEntry     `json:"recentActivity"`
	TopContributors       []ContributorStats  `json:"topContributors"`
}

// StatisticsReporter derives aggregate analytics by reading the stores. It
// never mutates state.
type StatisticsReporter struct {
	versions *VersionStore
	branches *BranchManager
	merges   *MergeEngine

	feedLimit        int
	contributorLimit int
}

// NewStatisticsReporter creates a reporter over the given stores
func NewStatisticsReporter(versions *VersionStore, branches *BranchManager, merges *MergeEngine, feedLimit, contributorLimit int) *StatisticsReporter {
	return &StatisticsReporter{
		versions:         versions,
		branches:         branches,
		merges:           merges,
		feedLimit:        feedLimit,
		contributorLimit: contributorLimit,
	}
}

// VersionStatistics computes totals, status breakdowns, the recency-sorted
// activity feed and the contributor ranking, filtered to projectID when
// non-empty.
func (r *StatisticsReporter) VersionStatistics(projectID string) *VersionStatistics {
	stats := &VersionStatistics{
		MergeRequestsByStatus: make(map[MergeStatus]int),
	}

	var activity []ActivityEntry
	contributions := make(map[string]int)

	for _, v := range r.versions.Versions() {
		if projectID != "" && v.ProjectID != projectID {
			continue
		}
		stats.TotalVersions++
		// Autosaves update the feed but not contributor counts.
		if !v.Metadata.IsAutosave {
			contributions[v.Author]++
		}
		activity = append(activity, ActivityEntry{
			Kind:        ActivityVersion,
			Description: fmt.Sprintf("Version %s on branch %s", formatVersionNumber(v.VersionNumber), v.BranchName),
			Author:      v.Author,
			OccurredAt:  v.CreatedAt,
		})
	}

	for _, b := range r.branches.Branches() {
		if projectID != "" && b.ProjectID != projectID {
			continue
		}
		stats.TotalBranches++
		if b.IsActive {
			stats.ActiveBranches++
		}
		activity = append(activity, ActivityEntry{
			Kind:        ActivityBranch,
			Description: fmt.Sprintf("Branch %s created", b.Name),
			Author:      b.CreatedBy,
			OccurredAt:  b.CreatedAt,
		})
	}

	for _, mr := range r.merges.Requests() {
		if projectID != "" && mr.ProjectID != projectID {
			continue
		}
		stats.MergeRequestsByStatus[mr.Status]++
		activity = append(activity, ActivityEntry{
			Kind:        ActivityMerge,
			Description: fmt.Sprintf("Merge request %q (%s)", mr.Title, mr.Status),
			Author:      mr.CreatedBy,
			OccurredAt:  mr.UpdatedAt,
		})
	}

	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].OccurredAt.After(activity[j].OccurredAt)
	})
	if len(activity) > r.feedLimit {
		activity = activity[:r.feedLimit]
	}
	stats.RecentActivity = activity

	stats.TopContributors = rankContributors(contributions, r.contributorLimit)

	return stats
}

func rankContributors(contributions map[string]int, limit int) []ContributorStats {
	ranking := make([]ContributorStats, 0, len(contributions))
	for author, count := range contributions {
		ranking = append(ranking, ContributorStats{Author: author, Versions: count})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Versions != ranking[j].Versions {
			return ranking[i].Versions > ranking[j].Versions
		}
		return ranking[i].Author < ranking[j].Author
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
