// ABOUTME: Version-control data model for documents, branches, merge requests
// ABOUTME: Typed uuid-backed identifiers with fixed metadata structs

package vcs

import (
	"time"

	"github.com/google/uuid"

	"github.com/nainya/draftstore/pkg/conflict"
	"github.com/nainya/draftstore/pkg/diff"
)

// Typed identifiers. Arenas are keyed by these rather than raw strings.
type (
	// VersionID identifies a document version
	VersionID string

	// BranchID identifies a branch
	BranchID string

	// MergeRequestID identifies a merge request
	MergeRequestID string

	// CommentID identifies a review comment
	CommentID string
)

func newVersionID() VersionID           { return VersionID(uuid.NewString()) }
func newBranchID() BranchID             { return BranchID(uuid.NewString()) }
func newMergeRequestID() MergeRequestID { return MergeRequestID(uuid.NewString()) }
func newCommentID() CommentID           { return CommentID(uuid.NewString()) }

// VersionMetadata is the fixed per-version metadata struct
type VersionMetadata struct {
	WordCount         int         `json:"wordCount"`
	CharacterCount    int         `json:"characterCount"`
	ChangeDescription string      `json:"changeDescription"`
	Tags              []string    `json:"tags,omitempty"`
	IsAutosave        bool        `json:"isAutosave"`
	IsMajorVersion    bool        `json:"isMajorVersion"`
	MergeSourceIDs    []VersionID `json:"mergeSourceIds,omitempty"` // set on merge commits only
}

// DocumentVersion is an immutable full-content snapshot of a document.
// Versions are never mutated or deleted once stored.
type DocumentVersion struct {
	ID              VersionID          `json:"id"`
	DocumentID      string             `json:"documentId"` // opaque caller domain key
	ProjectID       string             `json:"projectId"`  // opaque caller domain key
	VersionNumber   float64            `json:"versionNumber"` // whole for commits, fractional for autosaves
	Content         string             `json:"content"`       // full snapshot, never a delta
	ParentVersionID VersionID          `json:"parentVersionId,omitempty"`
	BranchID        BranchID           `json:"branchId"`
	BranchName      string             `json:"branchName"`
	Author          string             `json:"author"`
	CreatedAt       time.Time          `json:"createdAt"`
	Metadata        VersionMetadata    `json:"metadata"`
	Diff            *diff.DocumentDiff `json:"diff,omitempty"` // against the preceding version on the branch
}

// CommitInfo carries the caller-supplied facts about a manual commit
type CommitInfo struct {
	Message        string   `json:"message" validate:"required"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags,omitempty"`
	IsMajorVersion bool     `json:"isMajorVersion"`
	Author         string   `json:"author" validate:"required"`
}

// DocumentBranch is a named pointer into version history
type DocumentBranch struct {
	ID             BranchID  `json:"id"`
	Name           string    `json:"name"` // unique per document
	DocumentID     string    `json:"documentId"`
	ProjectID      string    `json:"projectId"`
	Description    string    `json:"description,omitempty"`
	ParentBranchID BranchID  `json:"parentBranchId,omitempty"` // branch forked from
	HeadVersionID  VersionID `json:"headVersionId,omitempty"`  // latest version on this branch
	IsMainBranch   bool      `json:"isMainBranch"`
	IsActive       bool      `json:"isActive"` // at most one per document
	IsMerged       bool      `json:"isMerged"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MergeStatus is the lifecycle state of a merge request
type MergeStatus string

const (
	MergeStatusDraft  MergeStatus = "draft"
	MergeStatusOpen   MergeStatus = "open"
	MergeStatusMerged MergeStatus = "merged"
	MergeStatusClosed MergeStatus = "closed"
)

// MergeRequest proposes folding one branch's head into another's. Source and
// target version ids are frozen at creation time.
type MergeRequest struct {
	ID              MergeRequestID           `json:"id"`
	DocumentID      string                   `json:"documentId"`
	ProjectID       string                   `json:"projectId"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description,omitempty"`
	SourceBranchID  BranchID                 `json:"sourceBranchId"`
	TargetBranchID  BranchID                 `json:"targetBranchId"`
	SourceVersionID VersionID                `json:"sourceVersionId,omitempty"`
	TargetVersionID VersionID                `json:"targetVersionId,omitempty"`
	Status          MergeStatus              `json:"status"`
	Conflicts       []conflict.MergeConflict `json:"conflicts"`
	ReviewComments  []*ReviewComment         `json:"reviewComments"`
	Approvals       []Approval               `json:"approvals"`
	MergeCommitID   VersionID                `json:"mergeCommitId,omitempty"` // set once merged
	CreatedBy       string                   `json:"createdBy"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// UnresolvedConflicts returns the conflicts still lacking a resolution
func (mr *MergeRequest) UnresolvedConflicts() []conflict.MergeConflict {
	var unresolved []conflict.MergeConflict
	for _, c := range mr.Conflicts {
		if !c.Resolved() {
			unresolved = append(unresolved, c)
		}
	}
	return unresolved
}

// CommentType classifies review feedback
type CommentType string

const (
	CommentSuggestion CommentType = "suggestion"
	CommentQuestion   CommentType = "question"
	CommentApproval   CommentType = "approval"
	CommentConcern    CommentType = "concern"
)

// ReviewComment is threaded feedback attached to a merge request
type ReviewComment struct {
	ID         CommentID        `json:"id"`
	Content    string           `json:"content"`
	Author     string           `json:"author"`
	Type       CommentType      `json:"type"`
	Line       int              `json:"line,omitempty"`
	Section    string           `json:"section,omitempty"`
	IsResolved bool             `json:"isResolved"`
	Replies    []*ReviewComment `json:"replies,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Approval records a reviewer's sign-off on a merge request
type Approval struct {
	Author     string    `json:"author"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// HistoryView is the read-only aggregate of a document's version-control state
type HistoryView struct {
	Branches         []*DocumentBranch  `json:"branches"`
	Versions         []*DocumentVersion `json:"versions"`
	MergeRequests    []*MergeRequest    `json:"mergeRequests"`
	CurrentBranchID  BranchID           `json:"currentBranchId,omitempty"`
	CurrentVersionID VersionID          `json:"currentVersionId,omitempty"`
}
