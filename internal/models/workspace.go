package models

import "time"

// Workspace statuses.
const (
	WorkspaceActive   = "active"
	WorkspaceInactive = "inactive"
	WorkspaceArchived = "archived"
)

// Workspace is a container for datasets. It has exactly one owner, set at
// creation; ownership never changes implicitly.
type Workspace struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	OwnerID     string    `gorm:"size:36;index;not null" json:"owner_id"`
	Status      string    `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
