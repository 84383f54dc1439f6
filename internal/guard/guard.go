// Package guard classifies request paths and decides whether a request may
// proceed given the caller's session. It performs no I/O; HTTP adapters live
// in the middleware package.
package guard

import (
	"strings"

	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

// Class is the access category of a path.
type Class int

const (
	Public Class = iota
	AuthEntry
	Protected
	AdminOnly
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case AuthEntry:
		return "auth-entry"
	case Protected:
		return "protected"
	case AdminOnly:
		return "admin-only"
	default:
		return "unknown"
	}
}

// Home paths used as redirect targets.
const (
	LoginPath      = "/login"
	DriverHomePath = "/dashboard"
	AdminHomePath  = "/admin"
)

// Outcome is the result kind of a decision.
type Outcome int

const (
	Allow Outcome = iota
	// Unauthorized means no valid session on a protected or admin path.
	Unauthorized
	// Forbidden means a valid session with the wrong role.
	Forbidden
	// AlreadyAuthenticated means a signed-in caller hit a login/signup path.
	AlreadyAuthenticated
)

// Decision is what the guard tells the transport layer to do.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Allowed reports whether the request may continue.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Rule maps a path prefix to a class.
type Rule struct {
	Prefix string
	Class  Class
}

// Rules is a prefix table. Paths not matched by any rule are Public.
type Rules []Rule

// PageRules guard browser navigation.
var PageRules = Rules{
	{Prefix: "/login", Class: AuthEntry},
	{Prefix: "/signup", Class: AuthEntry},
	{Prefix: "/dashboard", Class: Protected},
	{Prefix: "/uploads", Class: Protected},
	{Prefix: "/admin", Class: AdminOnly},
}

// APIRules guard the JSON API mounted under /api.
var APIRules = Rules{
	{Prefix: "/api/auth", Class: Public},
	{Prefix: "/api/attendance", Class: Protected},
	{Prefix: "/api/admin", Class: AdminOnly},
}

// Classify returns the class of the longest rule prefix matching path on a
// segment boundary, so "/admin" covers "/admin/teams" but not "/administrator".
// Matching ignores case: "/ADMIN" is the same path as "/admin".
func (r Rules) Classify(path string) Class {
	path = NormalizePath(path)
	class, best := Public, -1
	for _, rule := range r {
		if !matchPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Prefix) > best {
			class, best = rule.Class, len(rule.Prefix)
		}
	}
	return class
}

// NormalizePath lowercases path so guard decisions agree with a router that
// matches routes without regard to case.
func NormalizePath(path string) string {
	return strings.ToLower(path)
}

func matchPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}

// HomeFor returns the landing page for a role.
func HomeFor(role string) string {
	if role == session.RoleAdmin {
		return AdminHomePath
	}
	return DriverHomePath
}

// Decide applies the access table to a class and an optional session.
func Decide(class Class, sess *session.Session) Decision {
	switch class {
	case AuthEntry:
		if sess != nil {
			return Decision{Outcome: AlreadyAuthenticated, Redirect: HomeFor(sess.Role)}
		}
	case Protected:
		if sess == nil {
			return Decision{Outcome: Unauthorized, Redirect: LoginPath}
		}
	case AdminOnly:
		if sess == nil {
			return Decision{Outcome: Unauthorized, Redirect: LoginPath}
		}
		if !sess.IsAdmin() {
			return Decision{Outcome: Forbidden, Redirect: HomeFor(sess.Role)}
		}
	}
	return Decision{Outcome: Allow}
}

// Evaluate classifies path under rules and decides in one step.
func (r Rules) Evaluate(path string, sess *session.Session) Decision {
	return Decide(r.Classify(path), sess)
}
