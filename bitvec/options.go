package bitvec

import (
	"go.uber.org/zap"
)

type option struct {
	logger *zap.Logger
	fill   bool
	bits   uint64
}

type Option func(*option)

// WithLogger sets the logger used to report storage growth.
func WithLogger(logger *zap.Logger) Option {
	return func(o *option) {
		o.logger = logger
	}
}

// WithFill pre-sets every bit of the initial storage to v.
// It has no effect on the logical content, which starts empty.
func WithFill(v bool) Option {
	return func(o *option) {
		o.fill = v
	}
}

// WithInitialBits sets the initial capacity. It is rounded up to a power of
// two, and never goes below DefaultBits.
func WithInitialBits(bits uint64) Option {
	return func(o *option) {
		o.bits = bits
	}
}
