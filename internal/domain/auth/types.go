package auth

// Package auth contains domain-level types for the client session and route guard.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and wire decoding.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the account record returned by the remote "who am I" call.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Valid reports whether the record carries a usable identifier.
func (u User) Valid() bool { return strings.TrimSpace(u.ID) != "" }

// IsAdmin returns true if the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// View is the read-only projection of the session exposed to views.
type View struct {
	User     *User
	Loading  bool
	LoggedIn bool
	Admin    bool
}

// NewView derives the exposed flags from the user and loading state.
func NewView(u *User, loading bool) View {
	v := View{Loading: loading}
	if u != nil {
		cp := *u
		v.User = &cp
		v.LoggedIn = true
		v.Admin = cp.IsAdmin()
	}
	return v
}

// NoticeLevel classifies a transient user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient message shown to the user (toast).
type Notice struct {
	Level   NoticeLevel
	Message string
}
