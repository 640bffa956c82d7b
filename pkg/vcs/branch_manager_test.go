// ABOUTME: Tests for branch lifecycle and protection invariants
// ABOUTME: Covers bootstrap, fork points, switching, and delete guards

package vcs

import (
	"errors"
	"testing"
)

func TestEnsureMainBranch(t *testing.T) {
	bm := NewBranchManager()

	main, created := bm.EnsureMainBranch("doc1", "proj1", "user1")
	if !created {
		t.Fatal("Expected main branch to be created")
	}
	if main.Name != MainBranchName || !main.IsMainBranch || !main.IsActive {
		t.Errorf("Unexpected main branch state: %+v", main)
	}

	again, created := bm.EnsureMainBranch("doc1", "proj1", "user2")
	if created {
		t.Error("Second ensure should not create another main branch")
	}
	if again.ID != main.ID {
		t.Error("Second ensure should return the existing main branch")
	}
	if bm.Count() != 1 {
		t.Errorf("Expected 1 branch, got %d", bm.Count())
	}
}

func TestCreateBranchInheritsForkPoint(t *testing.T) {
	bm := NewBranchManager()
	main, _ := bm.EnsureMainBranch("doc1", "proj1", "user1")
	bm.advanceHead(main, VersionID("v1"))

	feature, err := bm.CreateBranch("doc1", "proj1", "feature", "try something", "user1")
	if err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	if feature.ParentBranchID != main.ID {
		t.Error("New branch should record its parent branch")
	}
	if feature.HeadVersionID != VersionID("v1") {
		t.Error("New branch should inherit the active branch head as fork point")
	}
	if feature.IsActive {
		t.Error("New branch should start inactive")
	}
}

func TestCreateBranchDuplicateName(t *testing.T) {
	bm := NewBranchManager()
	bm.EnsureMainBranch("doc1", "proj1", "user1")

	if _, err := bm.CreateBranch("doc1", "proj1", "feature", "", "user1"); err != nil {
		t.Fatalf("Failed to create branch: %v", err)
	}

	_, err := bm.CreateBranch("doc1", "proj1", "feature", "", "user1")
	if !errors.Is(err, ErrDuplicateBranch) {
		t.Errorf("Expected ErrDuplicateBranch, got %v", err)
	}
	if !errors.Is(err, ErrInvalidOperation) {
		t.Error("ErrDuplicateBranch should wrap ErrInvalidOperation")
	}

	// The same name on a different document is fine.
	bm.EnsureMainBranch("doc2", "proj1", "user1")
	if _, err := bm.CreateBranch("doc2", "proj1", "feature", "", "user1"); err != nil {
		t.Errorf("Branch names are scoped per document: %v", err)
	}
}

func TestCreateBranchWithoutActiveBranch(t *testing.T) {
	bm := NewBranchManager()

	_, err := bm.CreateBranch("doc1", "proj1", "feature", "", "user1")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Expected ErrBranchNotFound, got %v", err)
	}
}

func TestSwitchBranchSingleActive(t *testing.T) {
	bm := NewBranchManager()
	main, _ := bm.EnsureMainBranch("doc1", "proj1", "user1")
	feature, _ := bm.CreateBranch("doc1", "proj1", "feature", "", "user1")

	switched, err := bm.SwitchBranch("doc1", feature.ID)
	if err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	if !switched.IsActive {
		t.Error("Target should be active after switch")
	}
	if main.IsActive {
		t.Error("Previous active branch should be deactivated")
	}

	active := 0
	for _, b := range bm.BranchesForDocument("doc1") {
		if b.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("Exactly one branch should be active, got %d", active)
	}
}

func TestSwitchBranchWrongDocument(t *testing.T) {
	bm := NewBranchManager()
	bm.EnsureMainBranch("doc1", "proj1", "user1")
	other, _ := bm.EnsureMainBranch("doc2", "proj1", "user1")

	if _, err := bm.SwitchBranch("doc1", other.ID); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Expected ErrBranchNotFound, got %v", err)
	}
}

// Scenario: deleting the main branch or the active branch must fail and leave
// branch state untouched.
func TestDeleteBranchProtections(t *testing.T) {
	bm := NewBranchManager()
	main, _ := bm.EnsureMainBranch("doc1", "proj1", "user1")
	feature, _ := bm.CreateBranch("doc1", "proj1", "feature", "", "user1")
	bm.SwitchBranch("doc1", feature.ID)

	_, err := bm.DeleteBranch(main.ID)
	if !errors.Is(err, ErrMainBranchProtected) {
		t.Errorf("Expected ErrMainBranchProtected, got %v", err)
	}
	if !errors.Is(err, ErrInvalidOperation) {
		t.Error("ErrMainBranchProtected should wrap ErrInvalidOperation")
	}

	_, err = bm.DeleteBranch(feature.ID)
	if !errors.Is(err, ErrBranchActive) {
		t.Errorf("Expected ErrBranchActive, got %v", err)
	}
	if !errors.Is(err, ErrInvalidOperation) {
		t.Error("ErrBranchActive should wrap ErrInvalidOperation")
	}

	if bm.Count() != 2 {
		t.Errorf("Failed deletes must not change state, got %d branches", bm.Count())
	}
}

func TestDeleteBranchKeepsVersions(t *testing.T) {
	vs, bm := setupTestStores(t)

	vs.CreateVersion("doc1", "proj1", "base", testCommit("initial"))
	feature, _ := bm.CreateBranch("doc1", "proj1", "feature", "", "user1")
	bm.SwitchBranch("doc1", feature.ID)
	vs.CreateVersion("doc1", "proj1", "branched", testCommit("work"))
	main := bm.MainBranch("doc1")
	bm.SwitchBranch("doc1", main.ID)

	deleted, err := bm.DeleteBranch(feature.ID)
	if err != nil {
		t.Fatalf("Failed to delete branch: %v", err)
	}
	if _, err := bm.Branch(deleted.ID); !errors.Is(err, ErrBranchNotFound) {
		t.Error("Deleted branch should be gone")
	}

	// History outlives the branch pointer.
	if got := len(vs.VersionsOnBranch(feature.ID)); got != 1 {
		t.Errorf("Versions on deleted branch should survive, got %d", got)
	}
}

func TestDeleteUnknownBranch(t *testing.T) {
	bm := NewBranchManager()
	if _, err := bm.DeleteBranch(BranchID("missing")); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Expected ErrBranchNotFound, got %v", err)
	}
}
