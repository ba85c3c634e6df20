package memory

// WithQuota limits the number of documents the backend holds across all
// buckets. Operations that would go past it fail with [ErrQuotaExceeded]. Zero
// means no limit.
func WithQuota(n int) Option {
	return func(b *Backend) {
		b.quota = n
	}
}

// Option configures backend behavior through the functional options pattern.
type Option func(*Backend)
