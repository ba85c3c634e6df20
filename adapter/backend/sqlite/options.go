package sqlite

// WithJournalMode sets the SQLite journal mode applied when the database is
// opened. Defaults to "WAL".
func WithJournalMode(mode string) Option {
	return func(o *options) {
		o.journalMode = mode
	}
}

type options struct {
	journalMode string
}

// Option configures backend behavior through the functional options pattern.
type Option func(*options)
