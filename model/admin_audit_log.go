package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records a catalog write made by an operator
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "university_create"
	Resource    string         `gorm:"type:varchar(100)" json:"resource"`        // e.g. "universities"
	ResourceID  uint           `json:"resource_id"`
	NewValue    datatypes.JSON `json:"new_value"`
	StatusCode  int            `json:"status_code"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
