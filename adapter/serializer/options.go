package serializer

// WithFormat sets the output format. Defaults to [JSON].
func WithFormat(f Format) Option {
	return func(s *Serializer) {
		s.format = f
	}
}

// WithIndent makes JSON output indented with the given string.
func WithIndent(indent string) Option {
	return func(s *Serializer) {
		s.indent = indent
	}
}

// Option configures serializer behavior through the functional options
// pattern.
type Option func(*Serializer)
