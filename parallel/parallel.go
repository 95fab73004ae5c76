// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package parallel distributes work over an integer range across a
// fixed number of worker goroutines. It is the only blocking primitive
// used by the tiler: all long-running work fans out through For or
// BalancedFor and joins before returning.
//
// Calls are reentrant. Each call starts its own workers, so invoking
// For from inside a worker function cannot deadlock.
//
// Package parallel is provided as part of the tiler scene approximation
// library.
package parallel

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkerDefault returns the default number of workers: one per
// available CPU, always at least one.
func WorkerDefault() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// For runs fn for every index in [0, count), distributing indices
// across the given number of workers with stride workers. It blocks
// until every invocation has completed and returns the first error
// returned by fn, if any. Execution order between workers is
// unspecified.
func For(workers, count int, fn func(i int) error) error {
	if workers <= 0 {
		panic("parallel.For: worker count must be positive")
	}
	if count <= 0 {
		return nil
	}
	if workers > count {
		workers = count
	}
	if workers == 1 {
		for i := 0; i < count; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var group errgroup.Group
	for w := 0; w < workers; w++ {
		start := w
		group.Go(func() error {
			for i := start; i < count; i += workers {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return group.Wait()
}

// BalancedFor runs fn for every index in [0, count) like For, but
// workers pull the next index from a shared counter instead of
// striding. Use it when per-index cost varies widely. Index execution
// order is unspecified.
func BalancedFor(workers, count int, fn func(i int) error) error {
	if workers <= 0 {
		panic("parallel.BalancedFor: worker count must be positive")
	}
	var cursor atomic.Int64
	return For(workers, workers, func(int) error {
		for {
			i := int(cursor.Add(1)) - 1
			if i >= count {
				return nil
			}
			if err := fn(i); err != nil {
				return err
			}
		}
	})
}
