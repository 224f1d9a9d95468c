package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/api/anamnesis", "/api/anamnesis"},
		{"/api/anamnesis/8f14e45f-ceea-4b16-b5cd-5a7893d1f1a2", "/api/anamnesis/:id"},
		{"/api/anamnesis/8f14e45f-ceea-4b16-b5cd-5a7893d1f1a2/report", "/api/anamnesis/:id/report"},
		{"/api/anamnesis/form/0123456789abcdef0123456789abcdef0123456789abcdef", "/api/anamnesis/form/:id"},
		{"/health", "/health"},
	}
	for _, c := range cases {
		if got := normalizePath(c.in); got != c.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMiddlewareCapturesStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/anamnesis", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not passed through: %d", rec.Code)
	}
}
