package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// NewAuditFields stamps creation and update fields with the same actor and time.
func NewAuditFields(userID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

// Touch records an update by userID at now.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}

// SoftDelete marks a record as hidden rather than physically removed.
// Repositories filter on DeletedAt IS NULL unless explicitly asked otherwise.
type SoftDelete struct {
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the record is soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
