package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/skillswap-backend/internal/domain/aggregates"
	"github.com/yungbote/skillswap-backend/internal/platform/apierr"
)

func render(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestRespondErrorShapes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"internal", errors.New("dial tcp: refused"), http.StatusInternalServerError, apierr.InternalMessage},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "Op", "Session not found", nil), http.StatusNotFound, "Session not found"},
		{"gateway", apierr.Newf(http.StatusBadGateway, "gateway_error", "Payment provider error"), http.StatusBadGateway, "Payment provider error"},
	}
	for _, tc := range cases {
		rec, body := render(t, func(c *gin.Context) { RespondError(c, tc.err) })
		if rec.Code != tc.status {
			t.Fatalf("%s status: want=%d got=%d", tc.name, tc.status, rec.Code)
		}
		if body["status"] != "error" || body["message"] != tc.message {
			t.Fatalf("%s body: got=%v", tc.name, body)
		}
	}
}

func TestRespondErrorValidationFields(t *testing.T) {
	rec, body := render(t, func(c *gin.Context) {
		RespondError(c, apierr.Validation(apierr.FieldError{Field: "email", Message: "Invalid email"}))
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors: got=%v", body)
	}
	if f := errs[0].(map[string]any); f["field"] != "email" {
		t.Fatalf("field: got=%v", f)
	}
}

func TestRespondOKWrapsData(t *testing.T) {
	rec, body := render(t, func(c *gin.Context) { RespondCreated(c, gin.H{"id": "x"}) })
	if rec.Code != http.StatusCreated || body["status"] != "success" {
		t.Fatalf("created: code=%d body=%v", rec.Code, body)
	}
	if data := body["data"].(map[string]any); data["id"] != "x" {
		t.Fatalf("data: got=%v", body["data"])
	}
}
