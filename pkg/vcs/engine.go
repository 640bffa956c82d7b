// ABOUTME: Version-control engine facade composing all stores
// ABOUTME: Validation, logging, metrics, event emission, best-effort persistence

package vcs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nainya/draftstore/internal/logger"
	"github.com/nainya/draftstore/internal/metrics"
	"github.com/nainya/draftstore/pkg/conflict"
	"github.com/nainya/draftstore/pkg/diff"
	"github.com/nainya/draftstore/pkg/persist"
)

// EngineOptions carries the injectable collaborators. Every field is
// optional: a nil store disables persistence, a nil sink discards events.
type EngineOptions struct {
	Store   persist.Store
	Sink    EventSink
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Engine is the document version-control engine. It is an explicit,
// constructible value owned by whatever composes the application; there is no
// package-level singleton. The engine is single-writer: mutating operations
// run synchronously to completion and carry no internal locking.
type Engine struct {
	cfg      Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	store    persist.Store
	sink     EventSink
	validate *validator.Validate

	versions *VersionStore
	branches *BranchManager
	merges   *MergeEngine
	reviews  *ReviewService
	reporter *StatisticsReporter
}

// NewEngine creates an engine from configuration and collaborators. When the
// injected store holds a snapshot, the engine state is restored from it.
func NewEngine(cfg Config, opts EngineOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewLogger(logger.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
	}

	sink := opts.Sink
	if sink == nil {
		sink = NoopSink{}
	}

	branches := NewBranchManager()
	versions := NewVersionStore(branches, diff.NewEngine(), cfg.AutosaveSimilarityThreshold)
	merges := NewMergeEngine(versions, branches, conflict.NewDetector(cfg.AutoResolveWindow.Std()))

	e := &Engine{
		cfg:      cfg,
		log:      log,
		metrics:  opts.Metrics,
		store:    opts.Store,
		sink:     sink,
		validate: validator.New(),
		versions: versions,
		branches: branches,
		merges:   merges,
		reviews:  NewReviewService(merges),
		reporter: NewStatisticsReporter(versions, branches, merges, cfg.ActivityFeedLimit, cfg.TopContributorLimit),
	}

	if e.store != nil {
		if err := e.restore(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Versions exposes the version store for read access
func (e *Engine) Versions() *VersionStore { return e.versions }

// Branches exposes the branch manager for read access
func (e *Engine) Branches() *BranchManager { return e.branches }

// Merges exposes the merge engine for read access
func (e *Engine) Merges() *MergeEngine { return e.merges }

// CreateVersion commits a manual version on the document's active branch
func (e *Engine) CreateVersion(documentID, projectID, content string, info CommitInfo) (*DocumentVersion, error) {
	start := time.Now()

	version, err := e.createVersion(documentID, projectID, content, info)

	e.finish("create_version", documentID, start, err)
	return version, err
}

func (e *Engine) createVersion(documentID, projectID, content string, info CommitInfo) (*DocumentVersion, error) {
	if err := e.validate.Struct(info); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, err)
	}

	version, bootstrapped, err := e.versions.CreateVersion(documentID, projectID, content, info)
	if err != nil {
		return nil, err
	}

	e.metrics.RecordVersionCreated("manual")
	if bootstrapped != nil {
		e.publish(Event{Type: EventBranchCreated, DocumentID: documentID, Branch: bootstrapped})
	}
	e.publish(Event{Type: EventVersionCreated, DocumentID: documentID, Version: version})
	e.persistAfter("create_version")

	return version, nil
}

// CreateAutosaveVersion commits an autosave, or returns the existing latest
// version unchanged when the content is near-identical to it
func (e *Engine) CreateAutosaveVersion(documentID, projectID, content, author string) (*DocumentVersion, error) {
	start := time.Now()

	version, err := e.createAutosave(documentID, projectID, content, author)

	e.finish("create_autosave", documentID, start, err)
	return version, err
}

func (e *Engine) createAutosave(documentID, projectID, content, author string) (*DocumentVersion, error) {
	if err := e.validate.Var(author, "required"); err != nil {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidOperation)
	}

	version, bootstrapped, created, err := e.versions.CreateAutosaveVersion(documentID, projectID, content, author)
	if err != nil {
		return nil, err
	}
	if !created {
		e.metrics.RecordAutosaveSkipped()
		return version, nil
	}

	e.metrics.RecordVersionCreated("autosave")
	if bootstrapped != nil {
		e.publish(Event{Type: EventBranchCreated, DocumentID: documentID, Branch: bootstrapped})
	}
	e.publish(Event{Type: EventVersionCreated, DocumentID: documentID, Version: version})
	e.persistAfter("create_autosave")

	return version, nil
}

// GetVersion returns a version by id
func (e *Engine) GetVersion(versionID VersionID) (*DocumentVersion, error) {
	return e.versions.Version(versionID)
}

// GetLatestVersion returns the document's latest version on its active
// branch, or nil when the document has no versions
func (e *Engine) GetLatestVersion(documentID string) *DocumentVersion {
	return e.versions.LatestVersion(documentID)
}

// RevertToVersion creates a new version restoring an older version's content
func (e *Engine) RevertToVersion(versionID VersionID, info CommitInfo) (*DocumentVersion, error) {
	start := time.Now()

	version, err := e.revertToVersion(versionID, info)

	documentID := ""
	if version != nil {
		documentID = version.DocumentID
	}
	e.finish("revert_to_version", documentID, start, err)
	return version, err
}

func (e *Engine) revertToVersion(versionID VersionID, info CommitInfo) (*DocumentVersion, error) {
	if err := e.validate.Struct(info); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, err)
	}

	version, err := e.versions.RevertToVersion(versionID, info)
	if err != nil {
		return nil, err
	}

	e.metrics.RecordVersionCreated("revert")
	e.publish(Event{Type: EventVersionReverted, DocumentID: version.DocumentID, Version: version})
	e.persistAfter("revert_to_version")

	return version, nil
}

// GetVersionHistory returns the full version-control picture for a document
func (e *Engine) GetVersionHistory(documentID string) *HistoryView {
	view := &HistoryView{
		Branches:      e.branches.BranchesForDocument(documentID),
		Versions:      e.versions.VersionsForDocument(documentID),
		MergeRequests: e.merges.RequestsForDocument(documentID),
	}

	if active := e.branches.ActiveBranch(documentID); active != nil {
		view.CurrentBranchID = active.ID
		view.CurrentVersionID = active.HeadVersionID
	}

	return view
}

// CreateBranch forks a new branch from the document's active branch. The
// main branch is bootstrapped first on a fresh document.
func (e *Engine) CreateBranch(documentID, projectID, name, description, author string) (*DocumentBranch, error) {
	start := time.Now()

	branch, err := e.createBranch(documentID, projectID, name, description, author)

	e.finish("create_branch", documentID, start, err)
	return branch, err
}

func (e *Engine) createBranch(documentID, projectID, name, description, author string) (*DocumentBranch, error) {
	if err := e.validate.Var(name, "required"); err != nil {
		return nil, fmt.Errorf("%w: branch name is required", ErrInvalidOperation)
	}

	main, bootstrapped := e.branches.EnsureMainBranch(documentID, projectID, author)
	if bootstrapped {
		e.publish(Event{Type: EventBranchCreated, DocumentID: documentID, Branch: main})
	}

	branch, err := e.branches.CreateBranch(documentID, projectID, name, description, author)
	if err != nil {
		return nil, err
	}

	e.publish(Event{Type: EventBranchCreated, DocumentID: documentID, Branch: branch})
	e.persistAfter("create_branch")

	return branch, nil
}

// SwitchBranch makes the target branch the document's active branch
func (e *Engine) SwitchBranch(documentID string, branchID BranchID) error {
	start := time.Now()

	branch, err := e.branches.SwitchBranch(documentID, branchID)
	if err == nil {
		e.metrics.RecordBranchSwitch()
		e.publish(Event{Type: EventBranchSwitched, DocumentID: documentID, Branch: branch})
		e.persistAfter("switch_branch")
	}

	e.finish("switch_branch", documentID, start, err)
	return err
}

// DeleteBranch removes a branch pointer; main and active branches are protected
func (e *Engine) DeleteBranch(branchID BranchID) error {
	start := time.Now()

	branch, err := e.branches.DeleteBranch(branchID)

	documentID := ""
	if branch != nil {
		documentID = branch.DocumentID
	}
	if err == nil {
		e.publish(Event{Type: EventBranchDeleted, DocumentID: documentID, Branch: branch})
		e.persistAfter("delete_branch")
	}

	e.finish("delete_branch", documentID, start, err)
	return err
}

// CreateMergeRequest opens a merge request between two branches
func (e *Engine) CreateMergeRequest(sourceBranchID, targetBranchID BranchID, title, description, author string) (*MergeRequest, error) {
	return e.createMergeRequest(sourceBranchID, targetBranchID, title, description, author, false)
}

// CreateDraftMergeRequest creates a merge request in draft state
func (e *Engine) CreateDraftMergeRequest(sourceBranchID, targetBranchID BranchID, title, description, author string) (*MergeRequest, error) {
	return e.createMergeRequest(sourceBranchID, targetBranchID, title, description, author, true)
}

func (e *Engine) createMergeRequest(sourceBranchID, targetBranchID BranchID, title, description, author string, draft bool) (*MergeRequest, error) {
	start := time.Now()

	var mr *MergeRequest
	var err error
	if draft {
		mr, err = e.merges.CreateDraftMergeRequest(sourceBranchID, targetBranchID, title, description, author)
	} else {
		mr, err = e.merges.CreateMergeRequest(sourceBranchID, targetBranchID, title, description, author)
	}

	documentID := ""
	if mr != nil {
		documentID = mr.DocumentID
		e.metrics.RecordConflicts(len(mr.Conflicts))
		e.publish(Event{Type: EventMergeRequestCreated, DocumentID: documentID, MergeRequest: mr})
		e.persistAfter("create_merge_request")
	}

	e.finish("create_merge_request", documentID, start, err)
	return mr, err
}

// MarkReady promotes a draft merge request to open
func (e *Engine) MarkReady(id MergeRequestID) (*MergeRequest, error) {
	mr, err := e.merges.MarkReady(id)
	if err == nil {
		e.persistAfter("mark_ready")
	}
	return mr, err
}

// ResolveConflict supplies the resolution text for one conflict
func (e *Engine) ResolveConflict(id MergeRequestID, index int, resolution string) (*MergeRequest, error) {
	mr, err := e.merges.ResolveConflict(id, index, resolution)
	if err == nil {
		e.persistAfter("resolve_conflict")
	}
	return mr, err
}

// MergeBranches performs the merge once every conflict is resolved
func (e *Engine) MergeBranches(id MergeRequestID, author string) (*DocumentVersion, error) {
	start := time.Now()

	version, err := e.merges.MergeBranches(id, author)

	documentID := ""
	if version != nil {
		documentID = version.DocumentID
		e.metrics.RecordVersionCreated("merge")
		e.metrics.RecordMergeCompleted()
		mr, _ := e.merges.Request(id)
		e.publish(Event{Type: EventBranchMerged, DocumentID: documentID, MergeRequest: mr, Version: version})
		e.persistAfter("merge_branches")
	}

	e.finish("merge_branches", documentID, start, err)
	return version, err
}

// CloseMergeRequest abandons a merge request without merging
func (e *Engine) CloseMergeRequest(id MergeRequestID) (*MergeRequest, error) {
	mr, err := e.merges.CloseMergeRequest(id)
	if err == nil {
		e.persistAfter("close_merge_request")
	}
	return mr, err
}

// AddReviewComment appends advisory review feedback to a merge request
func (e *Engine) AddReviewComment(id MergeRequestID, content, author string, commentType CommentType, line int, section string) (*ReviewComment, error) {
	comment, err := e.reviews.AddReviewComment(id, content, author, commentType, line, section)
	if err == nil {
		e.publish(Event{Type: EventReviewCommentAdded, MergeRequest: mustRequest(e.merges, id), Comment: comment})
		e.persistAfter("add_review_comment")
	}
	return comment, err
}

// ReplyToComment appends a nested reply to a review comment
func (e *Engine) ReplyToComment(id MergeRequestID, commentID CommentID, content, author string) (*ReviewComment, error) {
	reply, err := e.reviews.ReplyToComment(id, commentID, content, author)
	if err == nil {
		e.publish(Event{Type: EventReviewCommentAdded, MergeRequest: mustRequest(e.merges, id), Comment: reply})
		e.persistAfter("reply_to_comment")
	}
	return reply, err
}

// ResolveComment marks a review comment thread as resolved
func (e *Engine) ResolveComment(id MergeRequestID, commentID CommentID) error {
	err := e.reviews.ResolveComment(id, commentID)
	if err == nil {
		e.persistAfter("resolve_comment")
	}
	return err
}

// Approve records a reviewer's sign-off on a merge request
func (e *Engine) Approve(id MergeRequestID, author string) error {
	err := e.reviews.Approve(id, author)
	if err == nil {
		e.persistAfter("approve")
	}
	return err
}

// Statistics computes aggregate analytics, filtered to projectID when non-empty
func (e *Engine) Statistics(projectID string) *VersionStatistics {
	return e.reporter.VersionStatistics(projectID)
}

// finish records metrics and logs for a completed operation
func (e *Engine) finish(operation, documentID string, start time.Time, err error) {
	duration := time.Since(start)
	e.metrics.RecordOperation(operation, err, duration)
	e.metrics.UpdateStoreStats(e.versions.Count(), e.branches.Count(), e.merges.OpenCount())
	e.log.LogOperation(operation, documentID, duration, err)
}

// publish pushes a domain event to the sink, fire-and-forget
func (e *Engine) publish(evt Event) {
	evt.OccurredAt = time.Now()
	e.sink.Publish(evt)
}

// persistAfter saves a snapshot after a mutation. A failure is logged and
// counted but never rolls back the in-memory state: the in-memory state stays
// the source of truth for the rest of the session.
func (e *Engine) persistAfter(operation string) {
	if e.store == nil {
		return
	}

	snap, err := e.snapshot()
	if err == nil {
		err = e.store.Save(snap)
	}
	e.metrics.RecordSnapshotSave(err)
	if err != nil {
		e.log.LogPersistFailure(operation, err)
	}
}

// snapshot serializes the three arenas as (id, value) collections
func (e *Engine) snapshot() (*persist.Snapshot, error) {
	snap := &persist.Snapshot{SavedAt: time.Now()}
	var err error

	for _, v := range e.versions.Versions() {
		if snap.Versions, err = persist.AppendEntry(snap.Versions, string(v.ID), v); err != nil {
			return nil, err
		}
	}
	for _, b := range e.branches.Branches() {
		if snap.Branches, err = persist.AppendEntry(snap.Branches, string(b.ID), b); err != nil {
			return nil, err
		}
	}
	for _, mr := range e.merges.Requests() {
		if snap.MergeRequests, err = persist.AppendEntry(snap.MergeRequests, string(mr.ID), mr); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// restore rebuilds the arenas from the store's snapshot, if any
func (e *Engine) restore() error {
	snap, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("vcs: restore snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	versions := make([]*DocumentVersion, 0, len(snap.Versions))
	for _, entry := range snap.Versions {
		v := &DocumentVersion{}
		if err := unmarshalEntry(entry, v); err != nil {
			return err
		}
		versions = append(versions, v)
	}

	branches := make([]*DocumentBranch, 0, len(snap.Branches))
	for _, entry := range snap.Branches {
		b := &DocumentBranch{}
		if err := unmarshalEntry(entry, b); err != nil {
			return err
		}
		branches = append(branches, b)
	}

	requests := make([]*MergeRequest, 0, len(snap.MergeRequests))
	for _, entry := range snap.MergeRequests {
		mr := &MergeRequest{}
		if err := unmarshalEntry(entry, mr); err != nil {
			return err
		}
		requests = append(requests, mr)
	}

	e.versions.restore(versions)
	e.branches.restore(branches)
	e.merges.restore(requests)

	e.log.Info("Restored engine state from snapshot").
		Int("versions", len(versions)).
		Int("branches", len(branches)).
		Int("merge_requests", len(requests)).
		Send()

	return nil
}

func unmarshalEntry(entry persist.Entry, v any) error {
	if err := json.Unmarshal(entry.Value, v); err != nil {
		return fmt.Errorf("vcs: decode snapshot entry %s: %w", entry.ID, err)
	}
	return nil
}

func mustRequest(me *MergeEngine, id MergeRequestID) *MergeRequest {
	mr, _ := me.Request(id)
	return mr
}
