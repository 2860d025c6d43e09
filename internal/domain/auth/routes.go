package auth

import (
	"path"
	"strings"
)

// RouteClass is the access category of a navigable path.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAuthOnly
	RouteAdminLoginOnly
	RouteProtected
	RouteAdmin
)

func (c RouteClass) String() string {
	switch c {
	case RouteAuthOnly:
		return "auth_only"
	case RouteAdminLoginOnly:
		return "admin_login_only"
	case RouteProtected:
		return "protected"
	case RouteAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Protected reports membership in the protected area. Admin routes are protected too.
func (c RouteClass) Protected() bool { return c == RouteProtected || c == RouteAdmin }

// RouteTable lists the path prefixes for each guarded class and the redirect targets.
// Anything not listed is public.
type RouteTable struct {
	AuthOnly     []string
	AdminLogin   string
	Admin        []string
	Protected    []string
	Entry        string // unauthenticated entry route
	Landing      string // protected landing route
	AdminLanding string
}

// DefaultRoutes returns the study tracker's route layout.
func DefaultRoutes() RouteTable {
	return RouteTable{
		AuthOnly:     []string{"/login", "/register"},
		AdminLogin:   "/admin/login",
		Admin:        []string{"/admin"},
		Protected:    []string{"/dashboard", "/subjects", "/quizzes", "/tests", "/profile", "/settings"},
		Entry:        "/login",
		Landing:      "/dashboard",
		AdminLanding: "/admin",
	}
}

// Classify maps a path to exactly one class. The admin login route is checked first
// so it never falls into the admin area.
func (t RouteTable) Classify(path string) RouteClass {
	p := NormalizePath(path)
	switch {
	case t.AdminLogin != "" && p == NormalizePath(t.AdminLogin):
		return RouteAdminLoginOnly
	case matchAny(p, t.AuthOnly):
		return RouteAuthOnly
	case matchAny(p, t.Admin):
		return RouteAdmin
	case matchAny(p, t.Protected):
		return RouteProtected
	default:
		return RoutePublic
	}
}

// NormalizePath strips query and fragment, then cleans the result as a rooted path:
// repeated slashes collapse, dot segments resolve, trailing slashes go. Empty input becomes "/".
func NormalizePath(raw string) string {
	raw, _, _ = strings.Cut(raw, "#")
	raw, _, _ = strings.Cut(raw, "?")
	return path.Clean("/" + raw)
}

// matchAny reports whether p equals a prefix or sits below it on a segment boundary.
func matchAny(p string, prefixes []string) bool {
	for _, raw := range prefixes {
		prefix := NormalizePath(raw)
		if prefix == "/" {
			return true
		}
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
