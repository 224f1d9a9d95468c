package cache

import (
	"testing"
	"time"
)

func TestSetGetExpire(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.Set("k", []byte("v"))
	if string(c.Get("k")) != "v" {
		t.Fatal("expected hit")
	}
	time.Sleep(80 * time.Millisecond)
	if c.Get("k") != nil {
		t.Fatal("expected expiry")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := New(time.Minute)
	type payload struct {
		Name string `json:"name"`
	}
	c.SetJSON("p", payload{Name: "Ana"})
	var got payload
	if !c.GetJSON("p", &got) || got.Name != "Ana" {
		t.Fatalf("json round-trip failed: %+v", got)
	}
	if c.GetJSON("missing", &got) {
		t.Fatal("miss reported as hit")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("ibge:states", []byte("a"))
	c.Set("ibge:cities:SC", []byte("b"))
	c.Set("me:u1", []byte("c"))
	c.DeletePrefix("ibge:")
	if c.Get("ibge:states") != nil || c.Get("ibge:cities:SC") != nil {
		t.Fatal("prefix not cleared")
	}
	if c.Get("me:u1") == nil {
		t.Fatal("unrelated key cleared")
	}
}
