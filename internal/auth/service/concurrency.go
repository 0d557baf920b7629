package service

// ConcurrencyGuard rejects writes made against a stale read. It never
// merges or retries.
type ConcurrencyGuard struct{}

// Check allows the write only when supplied is non-empty and equals stored.
func (ConcurrencyGuard) Check(supplied, stored string) error {
	if supplied == "" || supplied != stored {
		return ErrStaleObjectState
	}
	return nil
}
