package notify

import (
	"context"
	"fmt"
	"testing"
)

func TestFlashDrain(t *testing.T) {
	f := NewFlash(10)
	ctx := context.Background()

	f.Notify(ctx, Success("Login Successful", "Welcome back, Ann!"))
	f.Notify(ctx, Failure("Login Failed", "Invalid email or password."))

	got := f.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain returned %d notifications, want 2", len(got))
	}
	if got[0].Kind != KindSuccess || got[0].Title != "Login Successful" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Kind != KindFailure {
		t.Errorf("second = %+v", got[1])
	}

	if again := f.Drain(); len(again) != 0 {
		t.Errorf("second Drain returned %d, want 0", len(again))
	}
}

func TestFlashDropsOldestWhenFull(t *testing.T) {
	f := NewFlash(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.Notify(ctx, Success("n", fmt.Sprintf("msg-%d", i)))
	}

	got := f.Drain()
	if len(got) != 3 {
		t.Fatalf("Drain returned %d, want 3", len(got))
	}
	if got[0].Description != "msg-2" || got[2].Description != "msg-4" {
		t.Errorf("kept wrong entries: %+v", got)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := NewFlash(4)
	b := NewFlash(4)
	sink := Multi{a, b}

	sink.Notify(context.Background(), Success("Logout Successful", "You have been logged out successfully."))

	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("fan-out missed a sink: a=%d b=%d", a.Len(), b.Len())
	}
}
