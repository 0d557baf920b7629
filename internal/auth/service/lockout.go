package service

import "time"

// Lockout defaults.
const (
	DefaultLockoutThreshold = 3
	DefaultLockoutWindow    = 30 * time.Minute
)

// LockoutReason explains a blocked decision.
type LockoutReason int

const (
	LockoutNone LockoutReason = iota
	LockoutDisabled
	LockoutLocked
)

// LockoutDecision is the outcome of LockoutPolicy.Evaluate.
type LockoutDecision struct {
	Blocked bool
	Reason  LockoutReason
	Until   time.Time // set when Reason is LockoutLocked
}

// LockoutPolicy decides whether an account may attempt a login and how the
// failure counter moves. It performs no I/O; callers persist the results.
type LockoutPolicy struct {
	Threshold int
	Window    time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: DefaultLockoutThreshold, Window: DefaultLockoutWindow}
}

// Evaluate blocks disabled accounts and accounts whose lockout end is
// strictly after now.
func (p LockoutPolicy) Evaluate(enabled, lockoutEnabled bool, lockoutEnd *time.Time, now time.Time) LockoutDecision {
	if !enabled {
		return LockoutDecision{Blocked: true, Reason: LockoutDisabled}
	}
	if lockoutEnabled && lockoutEnd != nil && lockoutEnd.After(now) {
		return LockoutDecision{Blocked: true, Reason: LockoutLocked, Until: *lockoutEnd}
	}
	return LockoutDecision{}
}

// OnFailure increments the counter and reports whether the account must
// now be locked.
func (p LockoutPolicy) OnFailure(failedCount int) (int, bool) {
	next := failedCount + 1
	return next, next >= p.threshold()
}

// LockUntil is the lockout end for a lock applied at now.
func (p LockoutPolicy) LockUntil(now time.Time) time.Time {
	w := p.Window
	if w <= 0 {
		w = DefaultLockoutWindow
	}
	return now.Add(w)
}

// OnSuccess always clears the counter and the lockout flag.
func (p LockoutPolicy) OnSuccess() (failedCount int, lockoutEnabled bool) {
	return 0, false
}

func (p LockoutPolicy) threshold() int {
	if p.Threshold <= 0 {
		return DefaultLockoutThreshold
	}
	return p.Threshold
}
