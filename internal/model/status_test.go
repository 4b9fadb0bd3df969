package model

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"open", "in_progress", "completed"} {
		if _, ok := ParseOrderStatus(s); !ok {
			t.Fatalf("expected %q to parse", s)
		}
	}
	if _, ok := ParseOrderStatus("cancelled"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
	if _, ok := ParseOrderStatus(""); ok {
		t.Fatalf("expected empty status to be rejected")
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusOpen, StatusInProgress) {
		t.Fatalf("expected open -> in_progress allowed")
	}
	if !CanTransition(StatusOpen, StatusCompleted) {
		t.Fatalf("expected open -> completed allowed")
	}
	if !CanTransition(StatusInProgress, StatusCompleted) {
		t.Fatalf("expected in_progress -> completed allowed")
	}
	if CanTransition(StatusCompleted, StatusOpen) {
		t.Fatalf("expected completed -> open not allowed")
	}
	if CanTransition(StatusInProgress, StatusOpen) {
		t.Fatalf("expected in_progress -> open not allowed")
	}
	if !CanTransition(StatusCompleted, StatusCompleted) {
		t.Fatalf("expected self transition allowed")
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"manager", "mechanic", "client"} {
		role, ok := ParseRole(s)
		if !ok {
			t.Fatalf("expected %q to parse", s)
		}
		if !role.Valid() {
			t.Fatalf("expected parsed role %q to be valid", s)
		}
	}
	if _, ok := ParseRole("admin"); ok {
		t.Fatalf("expected unknown role to be rejected")
	}
}
