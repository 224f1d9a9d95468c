package ibge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Leandro-Coutinhodev/gerencia-backend/internal/cache"
)

func TestStatesCachesUpstream(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uf/v1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":42,"sigla":"SC","nome":"Santa Catarina","regiao":{"sigla":"S","nome":"Sul"}}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache.New(time.Minute), zap.NewNop())
	for i := 0; i < 3; i++ {
		states, err := c.States(context.Background())
		if err != nil {
			t.Fatalf("States: %v", err)
		}
		if len(states) != 1 || states[0].Sigla != "SC" {
			t.Fatalf("unexpected states: %+v", states)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestCitiesValidatesUF(t *testing.T) {
	c := NewClient("http://localhost:0", cache.New(time.Minute), zap.NewNop())
	if _, err := c.Cities(context.Background(), "Santa Catarina"); err == nil {
		t.Fatal("expected invalid UF error")
	}
	if _, err := c.Cities(context.Background(), ""); err == nil {
		t.Fatal("expected invalid UF error")
	}
}

func TestCitiesLowercaseUFAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/municipios/v1/SC" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"nome":"Joinville","codigo_ibge":"4209102"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache.New(time.Minute), zap.NewNop())
	cities, err := c.Cities(context.Background(), "sc")
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != 1 || cities[0].Nome != "Joinville" {
		t.Fatalf("unexpected cities: %+v", cities)
	}
}

func TestStatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zap.NewNop())
	if _, err := c.States(context.Background()); err == nil {
		t.Fatal("expected upstream error")
	}
}
