package wordpress

import (
	"strings"
	"testing"
)

func TestRequireID(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		wantErr string
	}{
		{"json number", map[string]any{"id": float64(42)}, 42, ""},
		{"int", map[string]any{"id": 42}, 42, ""},
		{"string form", map[string]any{"id": "42"}, 42, ""},
		{"string with spaces", map[string]any{"id": " 42 "}, 42, ""},
		{"missing", map[string]any{}, 0, "required"},
		{"zero", map[string]any{"id": float64(0)}, 0, "positive"},
		{"negative", map[string]any{"id": float64(-3)}, 0, "positive"},
		{"fractional", map[string]any{"id": 42.5}, 0, "integer"},
		{"non numeric string", map[string]any{"id": "abc"}, 0, "integer"},
		{"wrong type", map[string]any{"id": true}, 0, "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequireID(tt.args, "id")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("RequireID failed: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %d, want %d", got, tt.want)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRequireString(t *testing.T) {
	if _, err := RequireString(map[string]any{}, "title"); err == nil {
		t.Error("expected error for missing field")
	}
	if _, err := RequireString(map[string]any{"title": "  "}, "title"); err == nil {
		t.Error("expected error for blank string")
	}
	if _, err := RequireString(map[string]any{"title": 42}, "title"); err == nil {
		t.Error("expected error for non-string value")
	}

	s, err := RequireString(map[string]any{"title": "Hello"}, "title")
	if err != nil {
		t.Fatalf("RequireString failed: %v", err)
	}
	if s != "Hello" {
		t.Errorf("got %q, want %q", s, "Hello")
	}
}

func TestOptionalString(t *testing.T) {
	if _, ok, err := OptionalString(map[string]any{}, "status"); ok || err != nil {
		t.Errorf("absent field: ok=%v err=%v, want false nil", ok, err)
	}

	s, ok, err := OptionalString(map[string]any{"status": "draft"}, "status")
	if err != nil || !ok || s != "draft" {
		t.Errorf("got (%q, %v, %v), want (draft, true, nil)", s, ok, err)
	}

	if _, _, err := OptionalString(map[string]any{"status": 1}, "status"); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestOptionalInt(t *testing.T) {
	if _, ok, err := OptionalInt(map[string]any{}, "offset"); ok || err != nil {
		t.Errorf("absent field: ok=%v err=%v, want false nil", ok, err)
	}

	n, ok, err := OptionalInt(map[string]any{"offset": float64(20)}, "offset")
	if err != nil || !ok || n != 20 {
		t.Errorf("got (%d, %v, %v), want (20, true, nil)", n, ok, err)
	}
}

func TestOptionalBool(t *testing.T) {
	b, ok, err := OptionalBool(map[string]any{"sticky": true}, "sticky")
	if err != nil || !ok || !b {
		t.Errorf("got (%v, %v, %v), want (true, true, nil)", b, ok, err)
	}

	if _, _, err := OptionalBool(map[string]any{"sticky": "yes"}, "sticky"); err == nil {
		t.Error("expected error for non-boolean value")
	}
}

func TestOptionalEnum(t *testing.T) {
	s, ok, err := OptionalEnum(map[string]any{"status": "approve"}, "status", CommentStatuses)
	if err != nil || !ok || s != "approve" {
		t.Errorf("got (%q, %v, %v), want (approve, true, nil)", s, ok, err)
	}

	_, _, err = OptionalEnum(map[string]any{"status": "published"}, "status", CommentStatuses)
	if err == nil {
		t.Fatal("expected error for value outside enum")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("error %q does not list allowed values", err.Error())
	}

	if _, ok, err := OptionalEnum(map[string]any{}, "status", CommentStatuses); ok || err != nil {
		t.Errorf("absent field: ok=%v err=%v, want false nil", ok, err)
	}
}

func TestOptionalPage(t *testing.T) {
	n, ok, err := OptionalPage(map[string]any{"page": float64(3)})
	if err != nil || !ok || n != 3 {
		t.Errorf("got (%d, %v, %v), want (3, true, nil)", n, ok, err)
	}

	if _, _, err := OptionalPage(map[string]any{"page": float64(0)}); err == nil {
		t.Error("expected error for page 0")
	}
}

func TestOptionalPerPage(t *testing.T) {
	n, ok, err := OptionalPerPage(map[string]any{"per_page": float64(100)})
	if err != nil || !ok || n != 100 {
		t.Errorf("got (%d, %v, %v), want (100, true, nil)", n, ok, err)
	}

	if _, _, err := OptionalPerPage(map[string]any{"per_page": float64(101)}); err == nil {
		t.Error("expected error for per_page above 100")
	}
	if _, _, err := OptionalPerPage(map[string]any{"per_page": float64(0)}); err == nil {
		t.Error("expected error for per_page 0")
	}
}

func TestMaxLength(t *testing.T) {
	if err := MaxLength("title", strings.Repeat("a", 10), 10); err != nil {
		t.Errorf("MaxLength at bound returned error: %v", err)
	}
	if err := MaxLength("title", strings.Repeat("a", 11), 10); err == nil {
		t.Error("expected error above bound")
	}
}
