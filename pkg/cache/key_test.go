package cache

import (
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	got := Canonical("get", "/wp/v2/posts", map[string]string{
		"status":   "publish",
		"per_page": "10",
	}, "prod")

	want := "GET|wp/v2/posts|per_page=10&status=publish|prod"
	if got != want {
		t.Errorf("Canonical = %q, want %q", got, want)
	}
}

func TestCanonical_NoParams(t *testing.T) {
	got := Canonical("GET", "wp/v2/posts", nil, "prod")
	want := "GET|wp/v2/posts||prod"
	if got != want {
		t.Errorf("Canonical = %q, want %q", got, want)
	}
}

func TestKey_Deterministic(t *testing.T) {
	params := map[string]string{"per_page": "10", "status": "publish", "orderby": "date"}

	first := Key("GET", "wp/v2/posts", params, "prod")
	for i := 0; i < 10; i++ {
		if k := Key("GET", "wp/v2/posts", params, "prod"); k != first {
			t.Fatalf("key changed between calls: %q vs %q", first, k)
		}
	}
}

func TestKey_ParamOrderIndependent(t *testing.T) {
	a := Key("GET", "wp/v2/posts", map[string]string{"a": "1", "b": "2"}, "prod")
	b := Key("GET", "wp/v2/posts", map[string]string{"b": "2", "a": "1"}, "prod")
	if a != b {
		t.Errorf("identical requests produced different keys: %q vs %q", a, b)
	}
}

func TestKey_SiteIsolation(t *testing.T) {
	a := Key("GET", "wp/v2/posts", nil, "prod")
	b := Key("GET", "wp/v2/posts", nil, "staging")
	if a == b {
		t.Error("different sites produced the same key")
	}
}

func TestKey_MethodAndEndpointDistinguish(t *testing.T) {
	base := Key("GET", "wp/v2/posts", nil, "prod")
	if k := Key("POST", "wp/v2/posts", nil, "prod"); k == base {
		t.Error("different methods produced the same key")
	}
	if k := Key("GET", "wp/v2/pages", nil, "prod"); k == base {
		t.Error("different endpoints produced the same key")
	}
}

func TestKey_Base36(t *testing.T) {
	key := Key("GET", "wp/v2/posts", nil, "prod")
	if key == "" {
		t.Fatal("empty key")
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r) {
			t.Errorf("key %q contains non-base36 rune %q", key, r)
		}
	}
}

func TestKey_LeadingSlashNormalized(t *testing.T) {
	a := Key("GET", "wp/v2/posts", nil, "prod")
	b := Key("GET", "/wp/v2/posts", nil, "prod")
	if a != b {
		t.Errorf("leading slash changed the key: %q vs %q", a, b)
	}
}
