package guard

import (
	"testing"

	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

func TestDecideTable(t *testing.T) {
	driver := &session.Session{UserID: 2, Role: session.RoleDriver}
	admin := &session.Session{UserID: 1, Role: session.RoleAdmin}

	cases := []struct {
		class    Class
		sess     *session.Session
		outcome  Outcome
		redirect string
	}{
		{Public, nil, Allow, ""},
		{Public, driver, Allow, ""},
		{Public, admin, Allow, ""},
		{AuthEntry, nil, Allow, ""},
		{AuthEntry, driver, AlreadyAuthenticated, DriverHomePath},
		{AuthEntry, admin, AlreadyAuthenticated, AdminHomePath},
		{Protected, nil, Unauthorized, LoginPath},
		{Protected, driver, Allow, ""},
		{Protected, admin, Allow, ""},
		{AdminOnly, nil, Unauthorized, LoginPath},
		{AdminOnly, driver, Forbidden, DriverHomePath},
		{AdminOnly, admin, Allow, ""},
	}

	for _, tc := range cases {
		role := "anonymous"
		if tc.sess != nil {
			role = tc.sess.Role
		}
		got := Decide(tc.class, tc.sess)
		if got.Outcome != tc.outcome || got.Redirect != tc.redirect {
			t.Fatalf("%s/%s: expected (%d,%q) got (%d,%q)", tc.class, role, tc.outcome, tc.redirect, got.Outcome, got.Redirect)
		}
	}
}

func TestPageRulesClassify(t *testing.T) {
	cases := map[string]Class{
		"/":                Public,
		"/forgot-password": Public,
		"/login":           AuthEntry,
		"/signup":          AuthEntry,
		"/dashboard":       Protected,
		"/dashboard/logs":  Protected,
		"/uploads/1_2.jpg": Protected,
		"/admin":           AdminOnly,
		"/admin/users":     AdminOnly,
		"/admin/teams":     AdminOnly,
		"/administrator":   Public,
		"/loginx":          Public,
		"/ADMIN":           AdminOnly,
		"/Admin/Users":     AdminOnly,
		"/Dashboard":       Protected,
		"/UPLOADS/1_2.jpg": Protected,
		"/LOGIN":           AuthEntry,
	}
	for path, want := range cases {
		if got := PageRules.Classify(path); got != want {
			t.Fatalf("%s: expected %s got %s", path, want, got)
		}
	}
}

func TestAPIRulesClassify(t *testing.T) {
	cases := map[string]Class{
		"/api/auth/login":      Public,
		"/api/attendance/mark": Protected,
		"/api/attendance/logs": Protected,
		"/api/admin/logs":      AdminOnly,
		"/api/admin/verify":    AdminOnly,
		"/api/ping":            Public,
		"/API/ADMIN/LOGS":      AdminOnly,
		"/Api/Admin/users":     AdminOnly,
		"/API/attendance/mark": Protected,
	}
	for path, want := range cases {
		if got := APIRules.Classify(path); got != want {
			t.Fatalf("%s: expected %s got %s", path, want, got)
		}
	}
}

func TestEvaluateScenarios(t *testing.T) {
	if d := PageRules.Evaluate("/admin/users", nil); d.Redirect != LoginPath {
		t.Fatalf("anonymous /admin/users should go to login, got %+v", d)
	}
	driver := &session.Session{UserID: 2, Role: session.RoleDriver}
	if d := PageRules.Evaluate("/admin", driver); d.Redirect != DriverHomePath {
		t.Fatalf("driver /admin should go to dashboard, got %+v", d)
	}
}
