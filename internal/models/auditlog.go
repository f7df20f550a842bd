package models

import "time"

// AuditLog records mutating operations for security review. Every delete,
// successful or denied, ends up here with the acting user's identity.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *string   `gorm:"size:36;index" json:"user_id"`
	Method     string    `gorm:"size:16" json:"method"`
	Path       string    `gorm:"size:255" json:"path"`
	ResourceID string    `gorm:"size:64" json:"resource_id,omitempty"`
	Status     int       `json:"status"`
	Reason     string    `gorm:"size:64" json:"reason,omitempty"` // denial reason code, empty on success
	IP         string    `gorm:"size:64" json:"ip"`
	UserAgent  string    `gorm:"size:255" json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}
