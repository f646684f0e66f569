package domain

import "time"

// AuditLog records marketplace lifecycle actions (registrations, order and
// review mutations). Rows older than the retention window are purged daily.
type AuditLog struct {
	ID       int64     `json:"id"`
	Username string    `gorm:"size:150;index" json:"username"`
	Action   string    `gorm:"size:64;index" json:"action"`
	Detail   string    `gorm:"size:1024" json:"detail"`
	OptIp    string    `gorm:"size:64" json:"opt_ip"`
	OptTime  time.Time `json:"opt_time"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
