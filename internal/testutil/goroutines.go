// Package testutil collects small test helpers shared across the module's
// test suites.
package testutil

import (
	"runtime"
	"testing"
	"time"
)

// CheckGoroutines snapshots the current goroutine count and returns a
// function to defer; called with the test, it polls runtime.NumGoroutine
// until it settles back to the snapshot (allowing for runtime-owned
// goroutines that exit asynchronously after the call under test returns),
// failing the test if it never does within timeout. Modeled on the
// goroutine-leak check used around blocking operations in this module's
// concurrency-heavy tests.
func CheckGoroutines(timeout time.Duration) func(t *testing.T) {
	before := runtime.NumGoroutine()
	deadline := time.Now().Add(timeout)
	return func(t *testing.T) {
		t.Helper()
		for {
			after := runtime.NumGoroutine()
			if after <= before {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf("goroutine leak: started with %d, ended with %d", before, after)
				return
			}
			time.Sleep(time.Millisecond * 10)
			runtime.Gosched()
		}
	}
}
