package memory

import (
	"context"
	"testing"

	"badyet/internal/sheets"
)

func TestAppendReturnsSequentialRefs(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref1, err := s.Append(ctx, sheets.ActivityRow{Event: "login"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	ref2, err := s.Append(ctx, sheets.ActivityRow{Event: "logout"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if ref1 != "mem:1" || ref2 != "mem:2" {
		t.Errorf("refs = %q, %q", ref1, ref2)
	}
}

func TestRowsReturnsACopy(t *testing.T) {
	s := New()
	s.Append(context.Background(), sheets.ActivityRow{Event: "login", UserEmail: "ann@example.com"})

	rows := s.Rows()
	rows[0].Event = "mutated"

	if got := s.Rows()[0].Event; got != "login" {
		t.Errorf("stored row mutated: %q", got)
	}
}
