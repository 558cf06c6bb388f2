package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func assertDimensionMismatch(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestWrapStoreError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"websocket closed", errors.New("websocket: close 1006 (abnormal closure)"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"query error", errors.New("parse error: unexpected token"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapStoreError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("wrapStoreError(nil) = %v", got)
				}
				return
			}
			if errors.Is(got, ErrStoreUnavailable) != tt.unavailable {
				t.Errorf("wrapStoreError(%v) unavailable = %v, want %v", tt.err, !tt.unavailable, tt.unavailable)
			}
		})
	}
}

func TestConnectErrorKeepsDialFailure(t *testing.T) {
	dial := errors.New("dial tcp 127.0.0.1:8000: connection refused")
	err := connectError(dial)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
	if !errors.Is(err, dial) {
		t.Errorf("error = %v, want underlying dial error preserved", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error message %q hides the dial failure", err.Error())
	}
}

func TestFilterClauses(t *testing.T) {
	clauses, vars := filterClauses(Filter{})
	if clauses != "" || len(vars) != 0 {
		t.Errorf("empty filter produced %q %v", clauses, vars)
	}

	clauses, vars = filterClauses(Filter{Type: "faq", Category: "welding", Industry: "steel"})
	for _, want := range []string{"type = $type", "meta.category = $category", "meta.industry = $industry"} {
		if !strings.Contains(clauses, want) {
			t.Errorf("clauses %q missing %q", clauses, want)
		}
	}
	if len(vars) != 3 {
		t.Errorf("vars = %v, want 3 entries", vars)
	}
}
