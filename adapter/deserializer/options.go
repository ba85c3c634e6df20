package deserializer

import "github.com/vinicius-lino-figueiredo/bucketdb/adapter/serializer"

// WithFormat sets the expected input format. Defaults to [serializer.JSON].
func WithFormat(f serializer.Format) Option {
	return func(d *Deserializer) {
		d.format = f
	}
}

// Option configures deserializer behavior through the functional options
// pattern.
type Option func(*Deserializer)
