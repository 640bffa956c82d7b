// ABOUTME: Append-only version store with autosave numbering and revert
// ABOUTME: Owns all DocumentVersion instances and the lineage invariants

package vcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/nainya/draftstore/pkg/diff"
)

// VersionStore owns the append-only history of document versions. Versions
// are never mutated or deleted; the store is unbounded.
type VersionStore struct {
	versions map[VersionID]*DocumentVersion
	order    []VersionID

	branches            *BranchManager
	differ              *diff.Engine
	similarityThreshold float64
}

// NewVersionStore creates a version store backed by the given branch manager
func NewVersionStore(branches *BranchManager, differ *diff.Engine, similarityThreshold float64) *VersionStore {
	return &VersionStore{
		versions:            make(map[VersionID]*DocumentVersion),
		branches:            branches,
		differ:              differ,
		similarityThreshold: similarityThreshold,
	}
}

// CreateVersion stores a manual commit on the document's active branch. The
// main branch is bootstrapped first when the document has no branches yet.
// Returns the new version and the main branch if one was bootstrapped.
func (vs *VersionStore) CreateVersion(documentID, projectID, content string, info CommitInfo) (*DocumentVersion, *DocumentBranch, error) {
	main, bootstrapped := vs.branches.EnsureMainBranch(documentID, projectID, info.Author)

	branch := vs.branches.ActiveBranch(documentID)
	if branch == nil {
		// No branch is active; fall back to main rather than losing the commit.
		branch = main
		branch.IsActive = true
	}

	latest := vs.baseVersion(branch)
	number := 1.0
	if latest != nil {
		number = nextManualNumber(latest.VersionNumber)
	}

	version := vs.commit(branch, content, number, info, false, nil)

	if bootstrapped {
		return version, main, nil
	}
	return version, nil, nil
}

// CreateAutosaveVersion stores an autosave-tagged version with the next
// fractional number in the series. When content similarity against the
// branch's latest version exceeds the threshold, the existing latest version
// is returned and nothing is created.
func (vs *VersionStore) CreateAutosaveVersion(documentID, projectID, content, author string) (*DocumentVersion, *DocumentBranch, bool, error) {
	main, bootstrapped := vs.branches.EnsureMainBranch(documentID, projectID, author)

	branch := vs.branches.ActiveBranch(documentID)
	if branch == nil {
		branch = main
		branch.IsActive = true
	}

	latest := vs.baseVersion(branch)
	if latest != nil && Similarity(latest.Content, content) > vs.similarityThreshold {
		return latest, nil, false, nil
	}

	// With no versions at all the series starts at 0.1, so the first manual
	// commit after it still lands on 1.
	number := 0.1
	if latest != nil {
		number = nextAutosaveNumber(latest.VersionNumber)
	}

	info := CommitInfo{Message: "Autosave", Author: author}
	version := vs.commit(branch, content, number, info, true, nil)

	if bootstrapped {
		return version, main, true, nil
	}
	return version, nil, true, nil
}

// RevertToVersion creates a new version whose content equals the target
// version's content. History is never rewritten; the target stays untouched.
func (vs *VersionStore) RevertToVersion(versionID VersionID, info CommitInfo) (*DocumentVersion, error) {
	target, err := vs.Version(versionID)
	if err != nil {
		return nil, err
	}

	info.Message = fmt.Sprintf("Revert to version %s: %s",
		formatVersionNumber(target.VersionNumber), info.Message)

	version, _, err := vs.CreateVersion(target.DocumentID, target.ProjectID, target.Content, info)
	return version, err
}

// Version returns a version by id
func (vs *VersionStore) Version(versionID VersionID) (*DocumentVersion, error) {
	version, ok := vs.versions[versionID]
	if !ok {
		return nil, ErrVersionNotFound
	}
	return version, nil
}

// LatestVersion returns the document's latest version across its active
// branch, or nil when the document has none
func (vs *VersionStore) LatestVersion(documentID string) *DocumentVersion {
	branch := vs.branches.ActiveBranch(documentID)
	if branch == nil {
		return nil
	}
	return vs.LatestOnBranch(branch.ID)
}

// LatestOnBranch returns the branch's latest version: highest version number,
// tie-broken by latest creation time. Nil when the branch has no versions.
func (vs *VersionStore) LatestOnBranch(branchID BranchID) *DocumentVersion {
	var latest *DocumentVersion
	for _, id := range vs.order {
		v := vs.versions[id]
		if v.BranchID != branchID {
			continue
		}
		if latest == nil ||
			v.VersionNumber > latest.VersionNumber ||
			(v.VersionNumber == latest.VersionNumber && v.CreatedAt.After(latest.CreatedAt)) {
			latest = v
		}
	}
	return latest
}

// VersionsForDocument returns the document's versions in creation order
func (vs *VersionStore) VersionsForDocument(documentID string) []*DocumentVersion {
	var result []*DocumentVersion
	for _, id := range vs.order {
		if v := vs.versions[id]; v.DocumentID == documentID {
			result = append(result, v)
		}
	}
	return result
}

// VersionsOnBranch returns the branch's versions in creation order
func (vs *VersionStore) VersionsOnBranch(branchID BranchID) []*DocumentVersion {
	var result []*DocumentVersion
	for _, id := range vs.order {
		if v := vs.versions[id]; v.BranchID == branchID {
			result = append(result, v)
		}
	}
	return result
}

// Versions returns all versions in creation order
func (vs *VersionStore) Versions() []*DocumentVersion {
	result := make([]*DocumentVersion, 0, len(vs.order))
	for _, id := range vs.order {
		result = append(result, vs.versions[id])
	}
	return result
}

// Count returns the number of stored versions
func (vs *VersionStore) Count() int {
	return len(vs.order)
}

// commit builds and stores a version on the branch and advances its head.
// mergeSources is set for merge commits only.
func (vs *VersionStore) commit(branch *DocumentBranch, content string, number float64, info CommitInfo, isAutosave bool, mergeSources []VersionID) *DocumentVersion {
	latest := vs.baseVersion(branch)

	var parentID VersionID
	var d *diff.DocumentDiff
	if latest != nil {
		parentID = latest.ID
		d = vs.differ.Diff(latest.Content, content)
	}

	version := &DocumentVersion{
		ID:              newVersionID(),
		DocumentID:      branch.DocumentID,
		ProjectID:       branch.ProjectID,
		VersionNumber:   number,
		Content:         content,
		ParentVersionID: parentID,
		BranchID:        branch.ID,
		BranchName:      branch.Name,
		Author:          info.Author,
		CreatedAt:       time.Now(),
		Metadata: VersionMetadata{
			WordCount:         len(strings.Fields(content)),
			CharacterCount:    len([]rune(content)),
			ChangeDescription: info.Message,
			Tags:              info.Tags,
			IsAutosave:        isAutosave,
			IsMajorVersion:    info.IsMajorVersion,
			MergeSourceIDs:    mergeSources,
		},
		Diff: d,
	}

	vs.insert(version)
	vs.branches.advanceHead(branch, version.ID)

	return version
}

// baseVersion returns the version new commits on the branch build upon: the
// branch's own latest version, or its fork-point head for a branch that has
// no versions of its own yet.
func (vs *VersionStore) baseVersion(branch *DocumentBranch) *DocumentVersion {
	if latest := vs.LatestOnBranch(branch.ID); latest != nil {
		return latest
	}
	if branch.HeadVersionID == "" {
		return nil
	}
	head, err := vs.Version(branch.HeadVersionID)
	if err != nil {
		return nil
	}
	return head
}

func (vs *VersionStore) insert(version *DocumentVersion) {
	vs.versions[version.ID] = version
	vs.order = append(vs.order, version.ID)
}

func (vs *VersionStore) restore(versions []*DocumentVersion) {
	vs.versions = make(map[VersionID]*DocumentVersion, len(versions))
	vs.order = vs.order[:0]
	for _, v := range versions {
		vs.insert(v)
	}
}
