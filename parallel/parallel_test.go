// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	const count = 1000
	var hits [count]atomic.Int32
	err := For(7, count, func(i int) error {
		hits[i].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i := range hits {
		if hits[i].Load() != 1 {
			t.Errorf("index %d was run %d times", i, hits[i].Load())
		}
	}
}

func TestForEmpty(t *testing.T) {
	ran := false
	if err := For(4, 0, func(int) error { ran = true; return nil }); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ran {
		t.Errorf("zero count should not invoke the function")
	}
}

func TestForPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := For(4, 100, func(i int) error {
		if i == 42 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("error %v was not propagated", err)
	}
}

func TestForReentrant(t *testing.T) {
	// Nested calls must not deadlock.
	var total atomic.Int32
	err := For(4, 4, func(int) error {
		return For(4, 10, func(int) error {
			total.Add(1)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if total.Load() != 40 {
		t.Errorf("nested runs totalled %d, not 40", total.Load())
	}
}

func TestBalancedForCoversRange(t *testing.T) {
	const count = 500
	var hits [count]atomic.Int32
	err := BalancedFor(5, count, func(i int) error {
		hits[i].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i := range hits {
		if hits[i].Load() != 1 {
			t.Errorf("index %d was run %d times", i, hits[i].Load())
		}
	}
}

func TestBalancedForMoreWorkersThanWork(t *testing.T) {
	var total atomic.Int32
	if err := BalancedFor(16, 3, func(int) error { total.Add(1); return nil }); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if total.Load() != 3 {
		t.Errorf("ran %d times, not 3", total.Load())
	}
}
