package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"identity-service/internal/authz"
	"identity-service/internal/model"
	"identity-service/internal/permission"
	"identity-service/internal/token"
)

func invoke(t *testing.T, registry *authz.Registry, required string, claims *token.Claims) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(claimsContextKey, claims)
	}

	handler := RequirePermission(registry, required)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestRequirePermission(t *testing.T) {
	registry := authz.NewRegistry()
	read := permission.Name(permission.FeatureTenants, permission.ActionRead)

	granted := &token.Claims{
		Claims: []token.Claim{{Type: model.ClaimTypePermission, Value: read}},
	}
	if rec := invoke(t, registry, read, granted); rec.Code != http.StatusOK {
		t.Errorf("granted claim set: status = %d, want %d", rec.Code, http.StatusOK)
	}

	denied := &token.Claims{
		Claims: []token.Claim{{Type: model.ClaimTypePermission, Value: "Permission.Schools.Read"}},
	}
	if rec := invoke(t, registry, read, denied); rec.Code != http.StatusForbidden {
		t.Errorf("wrong claim value: status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	if rec := invoke(t, registry, read, nil); rec.Code != http.StatusForbidden {
		t.Errorf("no claims in context: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
