package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brighthive/brighthive-testing-exercise/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// shared-cache in-memory sqlite serializes writers; a single connection
	// keeps table-lock errors out of concurrent tests
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{}, &models.Session{},
		&models.Workspace{}, &models.Dataset{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: "Test User", PasswordHash: "x", Role: models.RoleUser}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedWorkspace(t *testing.T, s *Store, ownerID, name string) *models.Workspace {
	t.Helper()
	w := &models.Workspace{Name: name, OwnerID: ownerID}
	if err := s.CreateWorkspace(w); err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return w
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "alice@example.com")

	err := s.CreateUser(&models.User{Email: "ALICE@example.com", Name: "A", PasswordHash: "x", Role: models.RoleUser})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}
}

func TestCreateWorkspace_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")
	seedWorkspace(t, s, u.ID, "analytics")

	err := s.CreateWorkspace(&models.Workspace{Name: "analytics", OwnerID: u.ID})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate workspace name error = %v, want ErrDuplicate", err)
	}
}

func TestDeleteWorkspace_Cascades(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")
	w := seedWorkspace(t, s, u.ID, "analytics")

	for i := 0; i < 3; i++ {
		d := &models.Dataset{WorkspaceID: w.ID, Name: fmt.Sprintf("ds-%d", i), RowCount: 10}
		if err := s.CreateDataset(d); err != nil {
			t.Fatalf("create dataset: %v", err)
		}
	}

	if err := s.DeleteWorkspace(w.ID); err != nil {
		t.Fatalf("delete workspace: %v", err)
	}

	// workspace gone
	if _, err := s.WorkspaceByID(w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("WorkspaceByID after delete = %v, want ErrNotFound", err)
	}
	// no dataset survives its parent
	datasets, total, err := s.Datasets(w.ID, 10, 0)
	if err != nil {
		t.Fatalf("list datasets: %v", err)
	}
	if total != 0 || len(datasets) != 0 {
		t.Errorf("datasets after cascade = %d (total %d), want 0", len(datasets), total)
	}
	// deleting again reports not found
	if err := s.DeleteWorkspace(w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestCreateDataset_ParentMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateDataset(&models.Dataset{WorkspaceID: "no-such-workspace", Name: "ds"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("create under missing workspace = %v, want ErrNotFound", err)
	}
}

func TestCreateDataset_DuplicateNameInWorkspace(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")
	w := seedWorkspace(t, s, u.ID, "analytics")
	w2 := seedWorkspace(t, s, u.ID, "research")

	if err := s.CreateDataset(&models.Dataset{WorkspaceID: w.ID, Name: "ds"}); err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	if err := s.CreateDataset(&models.Dataset{WorkspaceID: w.ID, Name: "ds"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate dataset name = %v, want ErrDuplicate", err)
	}
	// same name in another workspace is fine
	if err := s.CreateDataset(&models.Dataset{WorkspaceID: w2.ID, Name: "ds"}); err != nil {
		t.Errorf("same name in other workspace = %v, want nil", err)
	}
}

// Concurrent creates against a workspace being deleted must never leave an
// orphaned dataset behind: each create either lands before the cascade (and
// is removed by it) or observes the workspace as gone.
func TestConcurrentCreateAndDelete_NoOrphans(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")
	w := seedWorkspace(t, s, u.ID, "analytics")

	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			d := &models.Dataset{WorkspaceID: w.ID, Name: fmt.Sprintf("ds-%d", i)}
			err := s.CreateDataset(d)
			if err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("create dataset: %v", err)
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		if err := s.DeleteWorkspace(w.ID); err != nil && !errors.Is(err, ErrNotFound) {
			t.Errorf("delete workspace: %v", err)
		}
	}()

	close(start)
	wg.Wait()

	// the delete ran exactly once; afterwards nothing under w may remain
	if _, err := s.WorkspaceByID(w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("workspace still present after delete: %v", err)
	}
	_, total, err := s.Datasets(w.ID, 100, 0)
	if err != nil {
		t.Fatalf("list datasets: %v", err)
	}
	if total != 0 {
		t.Errorf("%d orphaned datasets survived the cascade", total)
	}
}

func TestDatasets_PaginationClamping(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")
	w := seedWorkspace(t, s, u.ID, "analytics")

	for i := 0; i < 5; i++ {
		if err := s.CreateDataset(&models.Dataset{WorkspaceID: w.ID, Name: fmt.Sprintf("ds-%d", i)}); err != nil {
			t.Fatalf("create dataset: %v", err)
		}
	}

	page, total, err := s.Datasets(w.ID, 2, 4)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if total != 5 || len(page) != 1 {
		t.Errorf("page at offset 4 = %d items (total %d), want 1 (5)", len(page), total)
	}

	// offset past the end is an empty page, not an error
	page, total, err = s.Datasets(w.ID, 10, 100)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if total != 5 || len(page) != 0 {
		t.Errorf("page past end = %d items (total %d), want 0 (5)", len(page), total)
	}
}

func TestRevokeSession(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "alice@example.com")

	sess := &models.Session{UserID: u.ID}
	if err := s.CreateSession(sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := s.RevokeSession(sess.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err := s.SessionByID(sess.ID)
	if err != nil {
		t.Fatalf("session by id: %v", err)
	}
	if !got.Revoked {
		t.Error("session not marked revoked")
	}

	if err := s.RevokeSession("no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoke missing session = %v, want ErrNotFound", err)
	}
}
