// Package leaktest verifies that background machinery shuts down cleanly.
// The engine leans on goroutines with explicit lifecycles: worker pools, the
// scheduler ticker, undo expiry timers and the event-stream hub. Every
// Stop/Shutdown path is expected to leave the goroutine count where it
// started, and tests wrap those paths in a GoroutineChecker.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// settleAttempts bounds how long a check waits for just-stopped goroutines
// to unwind their stacks before sampling is considered stable.
const settleAttempts = 40

// GoroutineChecker compares the goroutine count before and after a scenario
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker samples the settled goroutine count as the baseline
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	return &GoroutineChecker{before: settledCount(), t: t}
}

// Check fails the test when more than tolerance goroutines outlive the
// scenario. Tolerance covers goroutines a scenario legitimately leaves
// running, like a timer that is armed on purpose.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	after := settledCount()
	if leaked := after - g.before; leaked > tolerance {
		g.t.Errorf("goroutine leak: %d before, %d after, %d leaked (tolerance %d)",
			g.before, after, leaked, tolerance)
	}
}

// CheckNone runs fn and fails the test if any goroutine it started is still
// alive afterwards
func CheckNone(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

// settledCount polls until two consecutive samples agree, so goroutines
// mid-teardown are not miscounted as leaks.
func settledCount() int {
	count := runtime.NumGoroutine()
	for i := 0; i < settleAttempts; i++ {
		runtime.Gosched()
		time.Sleep(10 * time.Millisecond)
		next := runtime.NumGoroutine()
		if next == count {
			return next
		}
		count = next
	}
	return count
}
