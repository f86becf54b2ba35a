package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newPermissionContext(user *AppUser) (*AppContext, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return &AppContext{Context: c, App: &App{}, User: user}, rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func TestHasPermission(t *testing.T) {
	if HasPermission(nil, "viz.view") {
		t.Fatal("nil user must not hold any permission")
	}

	user := &AppUser{UserID: 1, Role: "user", Permissions: []string{"viz.view"}}
	if !HasPermission(user, "viz.view") {
		t.Fatal("listed permission not recognized")
	}
	if HasPermission(user, "aggregates.refresh") {
		t.Fatal("unlisted permission granted")
	}
}

func TestHasPermissionAdminBypass(t *testing.T) {
	admin := &AppUser{UserID: 1, Role: "admin"}
	if !IsAdmin(admin) {
		t.Fatal("admin role not recognized")
	}
	if !HasPermission(admin, "aggregates.refresh") {
		t.Fatal("admin must pass every permission check")
	}
	if IsAdmin(&AppUser{UserID: 2, Role: "user"}) {
		t.Fatal("non-admin reported as admin")
	}
}

func TestHasAnyPermission(t *testing.T) {
	user := &AppUser{UserID: 1, Role: "user", Permissions: []string{"aggregates.view"}}
	if !HasAnyPermission(user, "aggregates.view", "aggregates.refresh") {
		t.Fatal("one held permission should be enough")
	}
	if HasAnyPermission(user, "viz.view", "viz.snapshot") {
		t.Fatal("no held permission should fail")
	}
	if HasAnyPermission(nil, "viz.view") {
		t.Fatal("nil user must fail")
	}
}

func TestRequirePermission(t *testing.T) {
	guarded := RequirePermission("viz.view")(okHandler)

	cc, rec := newPermissionContext(nil)
	if err := guarded(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("nil user status = %d, want 401", rec.Code)
	}

	cc, rec = newPermissionContext(&AppUser{UserID: 1, Role: "user", Permissions: []string{"viz.snapshot"}})
	if err := guarded(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing permission status = %d, want 403", rec.Code)
	}

	cc, rec = newPermissionContext(&AppUser{UserID: 1, Role: "user", Permissions: []string{"viz.view"}})
	if err := guarded(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("held permission status = %d, want 200", rec.Code)
	}
}

func TestRequireAnyPermission(t *testing.T) {
	guarded := RequireAnyPermission("aggregates.view", "aggregates.refresh")(okHandler)

	cc, rec := newPermissionContext(&AppUser{UserID: 1, Role: "user", Permissions: []string{"viz.view"}})
	if err := guarded(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unrelated permission status = %d, want 403", rec.Code)
	}

	cc, rec = newPermissionContext(&AppUser{UserID: 1, Role: "user", Permissions: []string{"aggregates.refresh"}})
	if err := guarded(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("held permission status = %d, want 200", rec.Code)
	}
}
