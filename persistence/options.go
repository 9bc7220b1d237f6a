package persistence

import (
	"go.uber.org/zap"
)

// DefaultMaxSize is the default upper bound of a snapshot data section, in bytes.
const DefaultMaxSize = 1 << 30

type options struct {
	logger  *zap.Logger
	maxSize uint64
}

func defaultOptions() options {
	return options{
		logger:  zap.NewNop(),
		maxSize: DefaultMaxSize,
	}
}

type Option func(*options)

// WithLogger sets the logger of the snapshot operations, and of the decoded BitVec.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxSize limits the size of the data section accepted when decoding.
func WithMaxSize(size uint64) Option {
	return func(o *options) {
		o.maxSize = size
	}
}
