package datastore

import "github.com/vinicius-lino-figueiredo/bucketdb/domain"

// WithBackend sets the [domain.Backend] documents are stored in. Defaults to
// an in-memory backend.
func WithBackend(b domain.Backend) Option {
	return func(d *Datastore) {
		d.backend = b
	}
}

// WithTimestamps enables automatic timestamping of documents with createdAt and
// updatedAt fields.
func WithTimestamps(t bool) Option {
	return func(d *Datastore) {
		d.timestampData = t
	}
}

// WithSerializer sets the serializer used by Export.
func WithSerializer(s domain.Serializer) Option {
	return func(d *Datastore) {
		d.serializer = s
	}
}

// WithDeserializer sets the deserializer used by ImportFrom.
func WithDeserializer(ds domain.Deserializer) Option {
	return func(d *Datastore) {
		d.deserializer = ds
	}
}

// WithComparer sets the comparer for value comparison operations.
func WithComparer(c domain.Comparer) Option {
	return func(d *Datastore) {
		d.comparer = c
	}
}

// WithDocumentFactory sets the factory function for creating document instances.
func WithDocumentFactory(df domain.DocumentFactory) Option {
	return func(d *Datastore) {
		d.documentFactory = df
	}
}

// WithDecoder sets the decoder handed to cursors.
func WithDecoder(dec domain.Decoder) Option {
	return func(d *Datastore) {
		d.decoder = dec
	}
}

// WithMatcher sets the matcher implementation for query evaluation.
func WithMatcher(m domain.Matcher) Option {
	return func(d *Datastore) {
		d.matcher = m
	}
}

// WithCursorFactory sets the factory function for creating cursor instances.
func WithCursorFactory(c domain.CursorFactory) Option {
	return func(d *Datastore) {
		d.cursorFactory = c
	}
}

// WithTimeGetter sets the time getter for timestamping operations.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(d *Datastore) {
		d.timeGetter = t
	}
}

// WithFieldNavigator sets the field getter for accessing document fields.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(d *Datastore) {
		d.fieldNavigator = f
	}
}

// WithIDGenerator sets the idgenerator to create new document ids.
func WithIDGenerator(ig domain.IDGenerator) Option {
	return func(d *Datastore) {
		d.idGenerator = ig
	}
}

// WithLogf sets the function import problems are reported to. Defaults to
// [log.Printf]. A nil function silences the store.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(d *Datastore) {
		d.logf = logf
		if logf == nil {
			d.logf = func(string, ...any) {}
		}
	}
}

// Option configures datastore behavior through the functional options
// pattern.
type Option func(*Datastore)
