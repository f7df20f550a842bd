// Package store is the single persistence layer for users, sessions,
// workspaces and datasets. Handlers receive a *Store instead of touching
// gorm directly; per-workspace create/delete is serialized here so a
// concurrent dataset create can never outlive its parent's deletion.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brighthive/brighthive-testing-exercise/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a uniqueness rule was violated.
	ErrDuplicate = errors.New("duplicate record")
)

// Store wraps the database and the per-workspace lock table.
type Store struct {
	db    *gorm.DB
	locks *keyedMutex
}

// New builds a Store on top of an initialized gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db, locks: newKeyedMutex()}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---------- users ----------

// CreateUser inserts a new user, assigning a fresh id. Email uniqueness is
// enforced case-insensitively.
func (s *Store) CreateUser(u *models.User) error {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("LOWER(email) = ?", u.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail looks up a user by email, case-insensitively.
func (s *Store) UserByEmail(email string) (*models.User, error) {
	var u models.User
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserByID looks up a user by id.
func (s *Store) UserByID(id string) (*models.User, error) {
	var u models.User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// TouchLastLogin records a successful login time.
func (s *Store) TouchLastLogin(userID string, at time.Time) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}

// ---------- sessions ----------

// CreateSession inserts a new login session, assigning a fresh id.
func (s *Store) CreateSession(sess *models.Session) error {
	sess.ID = uuid.NewString()
	if err := s.db.Create(sess).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionByID looks up a session by id.
func (s *Store) SessionByID(id string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.Where("id = ?", id).First(&sess).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

// RevokeSession marks a session revoked. Revocation takes effect on the
// next request presenting the session's token.
func (s *Store) RevokeSession(id string) error {
	res := s.db.Model(&models.Session{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- workspaces ----------

// CreateWorkspace inserts a new workspace, assigning a fresh id. Names are
// globally unique.
func (s *Store) CreateWorkspace(w *models.Workspace) error {
	w.ID = uuid.NewString()
	if w.Status == "" {
		w.Status = models.WorkspaceActive
	}

	var count int64
	if err := s.db.Model(&models.Workspace{}).
		Where("name = ?", w.Name).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check workspace name: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	if err := s.db.Create(w).Error; err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// WorkspaceByID looks up a workspace by id.
func (s *Store) WorkspaceByID(id string) (*models.Workspace, error) {
	var w models.Workspace
	if err := s.db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// WorkspacesOwnedBy lists all workspaces owned by a user.
func (s *Store) WorkspacesOwnedBy(ownerID string) ([]models.Workspace, error) {
	var out []models.Workspace
	err := s.db.Where("owner_id = ?", ownerID).Order("created_at").Find(&out).Error
	return out, err
}

// AllWorkspaces lists every workspace (admin view).
func (s *Store) AllWorkspaces() ([]models.Workspace, error) {
	var out []models.Workspace
	err := s.db.Order("created_at").Find(&out).Error
	return out, err
}

// DeleteWorkspace removes a workspace and all datasets under it in one
// transaction, holding the workspace's lock so a concurrent dataset create
// cannot interleave. After it returns, no read against the workspace or
// its datasets succeeds.
func (s *Store) DeleteWorkspace(id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Workspace{})
		if res.Error != nil {
			return fmt.Errorf("delete workspace: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Dataset{}).Error; err != nil {
			return fmt.Errorf("delete datasets: %w", err)
		}
		return nil
	})
}

// ---------- datasets ----------

// CreateDataset inserts a dataset under its parent workspace, assigning a
// fresh id. The parent's existence is re-checked under the workspace lock,
// so the dataset can never be created into a workspace that a concurrent
// delete just removed. Names are unique within a workspace.
func (s *Store) CreateDataset(d *models.Dataset) error {
	unlock := s.locks.lock(d.WorkspaceID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var wsCount int64
		if err := tx.Model(&models.Workspace{}).
			Where("id = ?", d.WorkspaceID).
			Count(&wsCount).Error; err != nil {
			return fmt.Errorf("check workspace: %w", err)
		}
		if wsCount == 0 {
			return ErrNotFound
		}

		var dupCount int64
		if err := tx.Model(&models.Dataset{}).
			Where("workspace_id = ? AND name = ?", d.WorkspaceID, d.Name).
			Count(&dupCount).Error; err != nil {
			return fmt.Errorf("check dataset name: %w", err)
		}
		if dupCount > 0 {
			return ErrDuplicate
		}

		d.ID = uuid.NewString()
		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		return nil
	})
}

// DatasetByID looks up a dataset scoped to its parent workspace.
func (s *Store) DatasetByID(workspaceID, id string) (*models.Dataset, error) {
	var d models.Dataset
	err := s.db.Where("workspace_id = ? AND id = ?", workspaceID, id).First(&d).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// Datasets lists a workspace's datasets with limit/offset pagination and
// returns the total count. Out-of-range offsets yield an empty page, never
// an error.
func (s *Store) Datasets(workspaceID string, limit, offset int) ([]models.Dataset, int64, error) {
	var total int64
	if err := s.db.Model(&models.Dataset{}).
		Where("workspace_id = ?", workspaceID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	var out []models.Dataset
	err := s.db.Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}
	return out, total, nil
}

// AllDatasets lists every dataset in a workspace, unpaginated (export).
func (s *Store) AllDatasets(workspaceID string) ([]models.Dataset, error) {
	var out []models.Dataset
	err := s.db.Where("workspace_id = ?", workspaceID).Order("created_at").Find(&out).Error
	return out, err
}

// SaveDataset persists updates to an existing dataset.
func (s *Store) SaveDataset(d *models.Dataset) error {
	return s.db.Save(d).Error
}

// DeleteDataset removes one dataset scoped to its parent workspace.
func (s *Store) DeleteDataset(workspaceID, id string) error {
	res := s.db.Where("workspace_id = ? AND id = ?", workspaceID, id).Delete(&models.Dataset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- audit ----------

// AppendAudit writes one audit record. Failures are reported but must not
// fail the request that produced them.
func (s *Store) AppendAudit(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// AuditLogs lists audit records, newest first, with pagination.
func (s *Store) AuditLogs(limit, offset int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := s.db.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.AuditLog
	err := s.db.Order("id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}
