package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/yungbote/skillswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillswap-backend/internal/http/middleware"
	"github.com/yungbote/skillswap-backend/internal/observability"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/services"
)

type roleAuth struct {
	services.AuthService
}

func (roleAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	switch token {
	case "user", "admin":
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: uuid.New(), Role: token}), nil
	}
	return ctx, apierr.Newf(http.StatusUnauthorized, "unauthorized", "Authentication required")
}

func (roleAuth) GetAccessTTL() time.Duration { return time.Hour }

type okReconciler struct{}

func (okReconciler) Run(context.Context) (*services.ReconcileReport, error) {
	return &services.ReconcileReport{}, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:            log,
		Metrics:        observability.NewMetrics(0),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, roleAuth{}),
		HealthHandler:  httpH.NewHealthHandler(nil),
		AdminHandler:   httpH.NewAdminHandler(nil, nil, okReconciler{}),
	})
}

func call(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := testRouter(t)
	cases := []struct {
		token  string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"user", http.StatusForbidden},
		{"admin", http.StatusOK},
	}
	for _, tc := range cases {
		if rec := call(r, http.MethodPost, "/api/admin/reconcile", tc.token); rec.Code != tc.status {
			t.Fatalf("token %q: want=%d got=%d body=%s", tc.token, tc.status, rec.Code, rec.Body.String())
		}
	}
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := testRouter(t)
	if rec := call(r, http.MethodGet, "/healthcheck", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=200 got=%d", rec.Code)
	}
	call(r, http.MethodPost, "/api/admin/reconcile", "admin")
	rec := call(r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/admin/reconcile") {
		t.Fatalf("metrics should include observed route, got:\n%s", rec.Body.String())
	}
}
