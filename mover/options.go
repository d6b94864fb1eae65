package mover

// Option represents a per-move configuration option
type Option func(*Options)

// Options contains all possible options for a move
type Options struct {
	// DryRun computes and records the would-be action without touching the
	// store.
	DryRun bool

	// TagOnly attaches the tag set to the source object without relocating
	// it.
	TagOnly bool

	// Overwrite allows replacing an existing object at the destination.
	Overwrite bool
}

// WithDryRun enables or disables dry-run mode
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithTagOnly enables or disables tag-only mode
func WithTagOnly(tagOnly bool) Option {
	return func(o *Options) {
		o.TagOnly = tagOnly
	}
}

// WithOverwrite enables or disables overwriting the destination
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) {
		o.Overwrite = overwrite
	}
}

func processOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	return opts
}
