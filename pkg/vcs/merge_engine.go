// ABOUTME: Merge request lifecycle and branch merging
// ABOUTME: Conflict-gated merges with first-occurrence resolution substitution

package vcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/nainya/draftstore/pkg/conflict"
)

// MergeEngine owns all MergeRequest instances and orchestrates merges. It
// references branches and versions by id.
type MergeEngine struct {
	requests map[MergeRequestID]*MergeRequest
	order    []MergeRequestID

	versions *VersionStore
	branches *BranchManager
	detector *conflict.Detector
}

// NewMergeEngine creates a merge engine over the given stores
func NewMergeEngine(versions *VersionStore, branches *BranchManager, detector *conflict.Detector) *MergeEngine {
	return &MergeEngine{
		requests: make(map[MergeRequestID]*MergeRequest),
		versions: versions,
		branches: branches,
		detector: detector,
	}
}

// CreateMergeRequest opens a merge request between two branches of the same
// document. Head versions are frozen at creation time and conflicts computed
// from their contents; zero conflicts is a valid open request.
func (me *MergeEngine) CreateMergeRequest(sourceBranchID, targetBranchID BranchID, title, description, author string) (*MergeRequest, error) {
	return me.createRequest(sourceBranchID, targetBranchID, title, description, author, MergeStatusOpen)
}

// CreateDraftMergeRequest creates a merge request in draft state. Conflicts
// are computed exactly as for an open request; MarkReady promotes it.
func (me *MergeEngine) CreateDraftMergeRequest(sourceBranchID, targetBranchID BranchID, title, description, author string) (*MergeRequest, error) {
	return me.createRequest(sourceBranchID, targetBranchID, title, description, author, MergeStatusDraft)
}

func (me *MergeEngine) createRequest(sourceBranchID, targetBranchID BranchID, title, description, author string, status MergeStatus) (*MergeRequest, error) {
	source, err := me.branches.Branch(sourceBranchID)
	if err != nil {
		return nil, err
	}
	target, err := me.branches.Branch(targetBranchID)
	if err != nil {
		return nil, err
	}
	if source.DocumentID != target.DocumentID {
		return nil, ErrCrossDocumentMerge
	}

	sourceContent, sourceVersionID := me.headContent(source)
	targetContent, targetVersionID := me.headContent(target)

	now := time.Now()
	mr := &MergeRequest{
		ID:              newMergeRequestID(),
		DocumentID:      source.DocumentID,
		ProjectID:       source.ProjectID,
		Title:           title,
		Description:     description,
		SourceBranchID:  sourceBranchID,
		TargetBranchID:  targetBranchID,
		SourceVersionID: sourceVersionID,
		TargetVersionID: targetVersionID,
		Status:          status,
		Conflicts:       me.detector.DetectConflicts(sourceContent, targetContent),
		ReviewComments:  []*ReviewComment{},
		Approvals:       []Approval{},
		CreatedBy:       author,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	me.insert(mr)
	return mr, nil
}

// MarkReady promotes a draft merge request to open
func (me *MergeEngine) MarkReady(id MergeRequestID) (*MergeRequest, error) {
	mr, err := me.Request(id)
	if err != nil {
		return nil, err
	}
	if mr.Status != MergeStatusDraft {
		return nil, fmt.Errorf("%w: cannot mark %s request ready", ErrInvalidOperation, mr.Status)
	}

	mr.Status = MergeStatusOpen
	mr.UpdatedAt = time.Now()
	return mr, nil
}

// ResolveConflict supplies the resolution text for one conflict
func (me *MergeEngine) ResolveConflict(id MergeRequestID, index int, resolution string) (*MergeRequest, error) {
	mr, err := me.Request(id)
	if err != nil {
		return nil, err
	}
	if mr.Status != MergeStatusOpen && mr.Status != MergeStatusDraft {
		return nil, ErrMergeNotOpen
	}
	if index < 0 || index >= len(mr.Conflicts) {
		return nil, fmt.Errorf("%w: conflict index %d out of range", ErrInvalidOperation, index)
	}
	if resolution == "" {
		return nil, ErrEmptyResolution
	}

	mr.Conflicts[index].Resolution = resolution
	mr.UpdatedAt = time.Now()
	return mr, nil
}

// MergeBranches performs the merge once every conflict carries a resolution.
// Merged content starts from the target branch's head content; each conflict
// replaces the FIRST textual occurrence of its target line with the
// resolution. If the same line text occurs more than once, only the first
// occurrence is replaced; that first-occurrence behavior is part of the
// contract and is covered by tests. The merge commit lands on the target
// branch, tagged as a major version with both parent version ids.
func (me *MergeEngine) MergeBranches(id MergeRequestID, author string) (*DocumentVersion, error) {
	mr, err := me.Request(id)
	if err != nil {
		return nil, err
	}
	if mr.Status != MergeStatusOpen {
		return nil, ErrMergeNotOpen
	}
	if len(mr.UnresolvedConflicts()) > 0 {
		return nil, ErrUnresolvedConflicts
	}

	source, err := me.branches.Branch(mr.SourceBranchID)
	if err != nil {
		return nil, err
	}
	target, err := me.branches.Branch(mr.TargetBranchID)
	if err != nil {
		return nil, err
	}

	merged, _ := me.headContent(target)
	for _, c := range mr.Conflicts {
		merged = strings.Replace(merged, c.TargetContent, c.Resolution, 1)
	}

	latest := me.versions.baseVersion(target)
	number := 1.0
	if latest != nil {
		number = nextManualNumber(latest.VersionNumber)
	}

	info := CommitInfo{
		Message:        fmt.Sprintf("Merge branch '%s' into '%s'", source.Name, target.Name),
		IsMajorVersion: true,
		Author:         author,
	}
	mergeSources := []VersionID{mr.SourceVersionID, mr.TargetVersionID}
	version := me.versions.commit(target, merged, number, info, false, mergeSources)

	source.IsMerged = true
	mr.Status = MergeStatusMerged
	mr.MergeCommitID = version.ID
	mr.UpdatedAt = time.Now()

	return version, nil
}

// CloseMergeRequest abandons an open or draft merge request
func (me *MergeEngine) CloseMergeRequest(id MergeRequestID) (*MergeRequest, error) {
	mr, err := me.Request(id)
	if err != nil {
		return nil, err
	}
	if mr.Status != MergeStatusOpen && mr.Status != MergeStatusDraft {
		return nil, ErrMergeNotOpen
	}

	mr.Status = MergeStatusClosed
	mr.UpdatedAt = time.Now()
	return mr, nil
}

// Request returns a merge request by id
func (me *MergeEngine) Request(id MergeRequestID) (*MergeRequest, error) {
	mr, ok := me.requests[id]
	if !ok {
		return nil, ErrMergeRequestNotFound
	}
	return mr, nil
}

// RequestsForDocument returns the document's merge requests in creation order
func (me *MergeEngine) RequestsForDocument(documentID string) []*MergeRequest {
	var result []*MergeRequest
	for _, id := range me.order {
		if mr := me.requests[id]; mr.DocumentID == documentID {
			result = append(result, mr)
		}
	}
	return result
}

// Requests returns all merge requests in creation order
func (me *MergeEngine) Requests() []*MergeRequest {
	result := make([]*MergeRequest, 0, len(me.order))
	for _, id := range me.order {
		result = append(result, me.requests[id])
	}
	return result
}

// OpenCount returns the number of open merge requests
func (me *MergeEngine) OpenCount() int {
	count := 0
	for _, id := range me.order {
		if me.requests[id].Status == MergeStatusOpen {
			count++
		}
	}
	return count
}

// headContent resolves a branch's head version content; a branch with no
// versions yet contributes empty content.
func (me *MergeEngine) headContent(branch *DocumentBranch) (string, VersionID) {
	if branch.HeadVersionID == "" {
		return "", ""
	}
	version, err := me.versions.Version(branch.HeadVersionID)
	if err != nil {
		return "", ""
	}
	return version.Content, version.ID
}

func (me *MergeEngine) insert(mr *MergeRequest) {
	me.requests[mr.ID] = mr
	me.order = append(me.order, mr.ID)
}

func (me *MergeEngine) restore(requests []*MergeRequest) {
	me.requests = make(map[MergeRequestID]*MergeRequest, len(requests))
	me.order = me.order[:0]
	for _, mr := range requests {
		me.insert(mr)
	}
}
