package models

import "time"

// Dataset lives inside exactly one workspace. Its lifecycle is bound to the
// parent: deleting a workspace removes all datasets under it.
type Dataset struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"size:36;index;not null" json:"workspace_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	SchemaJSON  string    `gorm:"type:text" json:"data_schema,omitempty"`
	RowCount    int64     `gorm:"not null;default:0" json:"row_count"` // always >= 0
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Workspace Workspace `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
