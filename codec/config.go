package codec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/internal/options"
)

const (
	// DefaultMaxNesting bounds the depth of nested segments decoded or encoded in one message.
	DefaultMaxNesting = 64

	// DefaultMaxPresenceMapBytes bounds the length of a presence map read from the wire.
	DefaultMaxPresenceMapBytes = 64

	// DefaultMaxSequenceLength bounds the number of entries of a sequence read from the wire.
	DefaultMaxSequenceLength = 1 << 16
)

// Config holds the settings shared by Decoder and Encoder.
type Config struct {
	logger              zerolog.Logger
	maxNesting          int
	maxPresenceMapBytes int
	maxSequenceLength   int
}

// Option configures a Decoder or an Encoder.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{
		logger:              zerolog.Nop(),
		maxNesting:          DefaultMaxNesting,
		maxPresenceMapBytes: DefaultMaxPresenceMapBytes,
		maxSequenceLength:   DefaultMaxSequenceLength,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger receiving dictionary resets and fatal reports.
// Default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}

// WithMaxNesting sets the maximum segment nesting depth. Templates that reference themselves
// are cut off at this depth with errs.ErrNestingTooDeep.
// Default is DefaultMaxNesting.
func WithMaxNesting(depth int) Option {
	return options.New(func(c *Config) error {
		if depth <= 0 {
			return fmt.Errorf("invalid max nesting %d: must be positive", depth)
		}
		c.maxNesting = depth

		return nil
	})
}

// WithMaxPresenceMapBytes sets the longest presence map accepted while decoding, for messages
// and for nested groups and sequence entries alike. Longer maps fail with errs.CodeR7. Zero
// disables the limit.
// Default is DefaultMaxPresenceMapBytes.
func WithMaxPresenceMapBytes(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("invalid max presence map length %d", n)
		}
		c.maxPresenceMapBytes = n

		return nil
	})
}

// WithMaxSequenceLength sets the largest sequence length accepted while decoding. Longer
// sequences fail with errs.CodeR10 before any entry is decoded. Zero disables the limit.
// Default is DefaultMaxSequenceLength.
func WithMaxSequenceLength(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("invalid max sequence length %d", n)
		}
		c.maxSequenceLength = n

		return nil
	})
}

// reportFatal builds the FatalError returned for code and logs it.
func (c *Config) reportFatal(code errs.Code, message string, id *field.Identity, cause error) error {
	name := ""
	if id != nil {
		name = id.QualifiedName()
	}
	c.logger.Debug().
		Str("code", string(code)).
		Str("field", name).
		Msg(message)

	return errs.NewFatal(code, message, name, cause)
}
