package idempotency

// Option applies a configuration option to the guard.
type Option func(*lruGuard)

// WithMaxSize sets how many keys are remembered. Values below one keep the
// default.
func WithMaxSize(maxSize int) Option {
	return func(g *lruGuard) {
		if maxSize > 0 {
			g.maxSize = maxSize
		}
	}
}
