// ABOUTME: Review threads attached to merge requests
// ABOUTME: Comments are advisory and never affect merge eligibility

package vcs

import "time"

// ReviewService attaches discussion threads to merge requests. It depends on
// merge-request identities only.
type ReviewService struct {
	merges *MergeEngine
}

// NewReviewService creates a review service over the merge engine
func NewReviewService(merges *MergeEngine) *ReviewService {
	return &ReviewService{merges: merges}
}

// AddReviewComment appends a comment to the merge request. Comments keep
// insertion order and are advisory: they never gate a merge.
func (rs *ReviewService) AddReviewComment(id MergeRequestID, content, author string, commentType CommentType, line int, section string) (*ReviewComment, error) {
	mr, err := rs.merges.Request(id)
	if err != nil {
		return nil, err
	}

	comment := &ReviewComment{
		ID:        newCommentID(),
		Content:   content,
		Author:    author,
		Type:      commentType,
		Line:      line,
		Section:   section,
		CreatedAt: time.Now(),
	}
	mr.ReviewComments = append(mr.ReviewComments, comment)
	mr.UpdatedAt = comment.CreatedAt

	return comment, nil
}

// ReplyToComment appends a nested reply to an existing comment thread
func (rs *ReviewService) ReplyToComment(id MergeRequestID, commentID CommentID, content, author string) (*ReviewComment, error) {
	mr, err := rs.merges.Request(id)
	if err != nil {
		return nil, err
	}

	parent := findComment(mr.ReviewComments, commentID)
	if parent == nil {
		return nil, ErrCommentNotFound
	}

	reply := &ReviewComment{
		ID:        newCommentID(),
		Content:   content,
		Author:    author,
		Type:      parent.Type,
		CreatedAt: time.Now(),
	}
	parent.Replies = append(parent.Replies, reply)
	mr.UpdatedAt = reply.CreatedAt

	return reply, nil
}

// ResolveComment marks a comment thread as resolved
func (rs *ReviewService) ResolveComment(id MergeRequestID, commentID CommentID) error {
	mr, err := rs.merges.Request(id)
	if err != nil {
		return err
	}

	comment := findComment(mr.ReviewComments, commentID)
	if comment == nil {
		return ErrCommentNotFound
	}

	comment.IsResolved = true
	mr.UpdatedAt = time.Now()
	return nil
}

// Approve records a reviewer's sign-off. A repeat approval by the same
// reviewer refreshes the timestamp instead of duplicating the entry.
func (rs *ReviewService) Approve(id MergeRequestID, author string) error {
	mr, err := rs.merges.Request(id)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range mr.Approvals {
		if mr.Approvals[i].Author == author {
			mr.Approvals[i].ApprovedAt = now
			mr.UpdatedAt = now
			return nil
		}
	}

	mr.Approvals = append(mr.Approvals, Approval{Author: author, ApprovedAt: now})
	mr.UpdatedAt = now
	return nil
}

// findComment walks the comment forest, replies included
func findComment(comments []*ReviewComment, id CommentID) *ReviewComment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
		if found := findComment(c.Replies, id); found != nil {
			return found
		}
	}
	return nil
}
