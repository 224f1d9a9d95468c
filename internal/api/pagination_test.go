package api

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimitOffset(t *testing.T) {
	cases := []struct {
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"/x", 20, 0},
		{"/x?limit=5", 5, 0},
		{"/x?limit=5&offset=10", 5, 10},
		{"/x?limit=1000", 100, 0},
		{"/x?limit=0", 20, 0},
		{"/x?limit=-1", 20, 0},
		{"/x?limit=abc&offset=abc", 20, 0},
		{"/x?offset=-3", 20, 0},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", c.url, nil)
		limit, offset := ParseLimitOffset(r)
		if limit != c.wantLimit || offset != c.wantOffset {
			t.Fatalf("url=%s got limit=%d offset=%d want %d/%d", c.url, limit, offset, c.wantLimit, c.wantOffset)
		}
	}
}
