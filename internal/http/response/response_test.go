package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesHTTPStatusAndEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeNotFound, "Código de referido no encontrado")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["success"] != false {
		t.Fatalf("success should be false: %v", body)
	}
	if body["request_id"] != "req-1" {
		t.Fatalf("request id missing: %v", body)
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("error response should omit data: %v", body)
	}
}

func TestErrorClampsInvalidCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 7, "boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d", w.Code)
	}
}

func TestBuildPagination(t *testing.T) {
	cases := []struct {
		page, size int
		total      int64
		wantPages  int64
	}{
		{1, 20, 0, 0},
		{1, 20, 20, 1},
		{2, 20, 21, 2},
		{1, 0, 5, 0},
	}
	for _, tc := range cases {
		got := BuildPagination(tc.page, tc.size, tc.total)
		if got.TotalPage != tc.wantPages {
			t.Fatalf("BuildPagination(%d,%d,%d) total_page=%d want %d", tc.page, tc.size, tc.total, got.TotalPage, tc.wantPages)
		}
	}
}
