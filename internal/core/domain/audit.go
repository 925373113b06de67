package domain

import "time"

// AuditAction names a security-relevant change.
type AuditAction string

const (
	AuditUserRegistered AuditAction = "user_registered"
	AuditRoleAssigned   AuditAction = "role_assigned"
	AuditRoleCreated    AuditAction = "role_created"
	AuditRoleDeleted    AuditAction = "role_deleted"
	AuditRecordAdded    AuditAction = "record_added"
	AuditLoginFailed    AuditAction = "login_failed"
	AuditLogout         AuditAction = "logout"
)

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	Action     AuditAction `json:"action"`
	Actor      string      `json:"actor,omitempty"`
	Subject    string      `json:"subject"`
	Detail     string      `json:"detail,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
