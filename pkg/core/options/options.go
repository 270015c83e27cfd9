package options

// Option mutates a configuration struct passed by pointer.
type Option func(cfg interface{})

// ApplyOptions applies each option func to optionsStructPtr in order.
func ApplyOptions(optionsStructPtr interface{}, opts ...Option) {
	for _, opt := range opts {
		opt(optionsStructPtr)
	}
}
