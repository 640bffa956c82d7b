// ABOUTME: Branch arena with main-branch bootstrap and head tracking
// ABOUTME: Enforces single-active and main-branch-protection invariants

package vcs

import "time"

// MainBranchName is the name given to the lazily bootstrapped main branch
const MainBranchName = "main"

// BranchManager owns all DocumentBranch instances. It references versions by
// id only and never embeds version content.
type BranchManager struct {
	branches map[BranchID]*DocumentBranch
	order    []BranchID
}

// NewBranchManager creates an empty branch manager
func NewBranchManager() *BranchManager {
	return &BranchManager{branches: make(map[BranchID]*DocumentBranch)}
}

// EnsureMainBranch bootstraps the document's main branch if absent. The main
// branch starts active. Returns the main branch and whether it was created.
func (bm *BranchManager) EnsureMainBranch(documentID, projectID, author string) (*DocumentBranch, bool) {
	if main := bm.MainBranch(documentID); main != nil {
		return main, false
	}

	branch := &DocumentBranch{
		ID:           newBranchID(),
		Name:         MainBranchName,
		DocumentID:   documentID,
		ProjectID:    projectID,
		IsMainBranch: true,
		IsActive:     true,
		CreatedBy:    author,
		CreatedAt:    time.Now(),
	}
	bm.insert(branch)

	return branch, true
}

// CreateBranch forks a new branch from the document's active branch head. The
// new branch starts inactive; callers switch to it explicitly.
func (bm *BranchManager) CreateBranch(documentID, projectID, name, description, author string) (*DocumentBranch, error) {
	for _, b := range bm.BranchesForDocument(documentID) {
		if b.Name == name {
			return nil, ErrDuplicateBranch
		}
	}

	active := bm.ActiveBranch(documentID)
	if active == nil {
		return nil, ErrBranchNotFound
	}

	branch := &DocumentBranch{
		ID:             newBranchID(),
		Name:           name,
		DocumentID:     documentID,
		ProjectID:      projectID,
		Description:    description,
		ParentBranchID: active.ID,
		HeadVersionID:  active.HeadVersionID, // fork point
		CreatedBy:      author,
		CreatedAt:      time.Now(),
	}
	bm.insert(branch)

	return branch, nil
}

// SwitchBranch deactivates every branch of the document, then activates the
// target. The target must belong to the document.
func (bm *BranchManager) SwitchBranch(documentID string, branchID BranchID) (*DocumentBranch, error) {
	target, err := bm.Branch(branchID)
	if err != nil {
		return nil, err
	}
	if target.DocumentID != documentID {
		return nil, ErrBranchNotFound
	}

	for _, b := range bm.BranchesForDocument(documentID) {
		b.IsActive = false
	}
	target.IsActive = true

	return target, nil
}

// DeleteBranch removes a branch pointer. The main branch and the active
// branch are protected; versions created on the branch are never deleted.
func (bm *BranchManager) DeleteBranch(branchID BranchID) (*DocumentBranch, error) {
	branch, err := bm.Branch(branchID)
	if err != nil {
		return nil, err
	}
	if branch.IsMainBranch {
		return nil, ErrMainBranchProtected
	}
	if branch.IsActive {
		return nil, ErrBranchActive
	}

	delete(bm.branches, branchID)
	for i, id := range bm.order {
		if id == branchID {
			bm.order = append(bm.order[:i], bm.order[i+1:]...)
			break
		}
	}

	return branch, nil
}

// Branch returns a branch by id
func (bm *BranchManager) Branch(branchID BranchID) (*DocumentBranch, error) {
	branch, ok := bm.branches[branchID]
	if !ok {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// ActiveBranch returns the document's active branch, or nil
func (bm *BranchManager) ActiveBranch(documentID string) *DocumentBranch {
	for _, id := range bm.order {
		b := bm.branches[id]
		if b.DocumentID == documentID && b.IsActive {
			return b
		}
	}
	return nil
}

// MainBranch returns the document's main branch, or nil
func (bm *BranchManager) MainBranch(documentID string) *DocumentBranch {
	for _, id := range bm.order {
		b := bm.branches[id]
		if b.DocumentID == documentID && b.IsMainBranch {
			return b
		}
	}
	return nil
}

// BranchesForDocument returns the document's branches in creation order
func (bm *BranchManager) BranchesForDocument(documentID string) []*DocumentBranch {
	var result []*DocumentBranch
	for _, id := range bm.order {
		if b := bm.branches[id]; b.DocumentID == documentID {
			result = append(result, b)
		}
	}
	return result
}

// Branches returns all branches in creation order
func (bm *BranchManager) Branches() []*DocumentBranch {
	result := make([]*DocumentBranch, 0, len(bm.order))
	for _, id := range bm.order {
		result = append(result, bm.branches[id])
	}
	return result
}

// Count returns the number of branches
func (bm *BranchManager) Count() int {
	return len(bm.order)
}

func (bm *BranchManager) advanceHead(branch *DocumentBranch, versionID VersionID) {
	branch.HeadVersionID = versionID
}

func (bm *BranchManager) insert(branch *DocumentBranch) {
	bm.branches[branch.ID] = branch
	bm.order = append(bm.order, branch.ID)
}

func (bm *BranchManager) restore(branches []*DocumentBranch) {
	bm.branches = make(map[BranchID]*DocumentBranch, len(branches))
	bm.order = bm.order[:0]
	for _, b := range branches {
		bm.insert(b)
	}
}
