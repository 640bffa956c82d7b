// Package vcs implements the document version-control engine
package vcs

import "errors"

var (
	// ErrVersionNotFound indicates a referenced version id does not exist
	ErrVersionNotFound = errors.New("vcs: version not found")

	// ErrBranchNotFound indicates a referenced branch id does not exist
	ErrBranchNotFound = errors.New("vcs: branch not found")

	// ErrMergeRequestNotFound indicates a referenced merge request id does not exist
	ErrMergeRequestNotFound = errors.New("vcs: merge request not found")

	// ErrCommentNotFound indicates a referenced review comment id does not exist
	ErrCommentNotFound = errors.New("vcs: review comment not found")

	// ErrInvalidOperation is the root of all invariant violations
	ErrInvalidOperation = errors.New("vcs: invalid operation")
)

// Specializations of ErrInvalidOperation. All satisfy
// errors.Is(err, ErrInvalidOperation).
var (
	// ErrMainBranchProtected indicates an attempt to delete the main branch
	ErrMainBranchProtected = wrapInvalid("main branch cannot be deleted")

	// ErrBranchActive indicates an attempt to delete the active branch
	ErrBranchActive = wrapInvalid("active branch cannot be deleted")

	// ErrDuplicateBranch indicates a branch name already in use for the document
	ErrDuplicateBranch = wrapInvalid("branch name already exists for document")

	// ErrUnresolvedConflicts indicates a merge attempted before every conflict is resolved
	ErrUnresolvedConflicts = wrapInvalid("merge request has unresolved conflicts")

	// ErrMergeNotOpen indicates a state transition from a terminal merge status
	ErrMergeNotOpen = wrapInvalid("merge request is not open")

	// ErrEmptyResolution indicates a conflict resolution with no content
	ErrEmptyResolution = wrapInvalid("conflict resolution must not be empty")

	// ErrCrossDocumentMerge indicates branches of different documents in one merge request
	ErrCrossDocumentMerge = wrapInvalid("branches belong to different documents")
)

type invalidOperationError struct{ reason string }

func (e *invalidOperationError) Error() string { return "vcs: invalid operation: " + e.reason }
func (e *invalidOperationError) Unwrap() error { return ErrInvalidOperation }

func wrapInvalid(reason string) error {
	return &invalidOperationError{reason: reason}
}
