package action

import "testing"

func TestPhaseCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     bool
	}{
		{Uninitialized, Pending, true},
		{Pending, Completed, true},
		{Completed, Reverted, true},
		{Uninitialized, Completed, false},
		{Uninitialized, Reverted, false},
		{Pending, Reverted, false},
		{Pending, Pending, false},
		{Completed, Completed, false},
		{Completed, Pending, false},
		{Reverted, Pending, false},
		{Reverted, Completed, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestBaseTransitionToRejectsIllegalMove(t *testing.T) {
	b := NewBase("t", "test")
	if err := b.TransitionTo(Completed); err == nil {
		t.Fatal("expected error transitioning Uninitialized -> Completed directly")
	}
	if b.Phase() != Uninitialized {
		t.Fatalf("phase must be unchanged after a rejected transition, got %s", b.Phase())
	}
}
