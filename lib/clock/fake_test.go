// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fake := NewFake(start)

	if !fake.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)

	want := start.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", fake.Now(), want)
	}

	if got := fake.Since(start); got != 90*time.Second {
		t.Errorf("Since(start) = %v, want 90s", got)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	real := Real()
	earlier := real.Now()
	if real.Since(earlier) < 0 {
		t.Error("real clock went backwards")
	}
}
