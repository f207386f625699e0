package simplepresign

import "time"

// Option is a functional option for configuring a Signer
type Option func(*Signer)

// WithClock overrides the Signer's time source. Signing is a pure function of
// its inputs plus the clock, so fixing the clock makes output byte-for-byte
// reproducible in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}
