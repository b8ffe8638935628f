package model

import "github.com/google/uuid"

// Session is the resolved identity passed into every service call.
// It is built per request by the auth middleware from the user row and
// its PermissionSet, so permission edits take effect immediately instead
// of living inside a long-lived token.
type Session struct {
	UserID   uuid.UUID
	Username string
	Role     string
	Perms    PermissionSet
}
