package blockfs

import (
	"fmt"
	"strconv"
	"strings"
)

type createConfig struct {
	BlockSize  uint16
	BlockCount uint16
}

// CreateOption configures Create via small functional options layered over
// sensible defaults.
type CreateOption func(*createConfig)

// WithBlockSize sets block_size (must be a nonzero multiple of 16).
func WithBlockSize(bs uint16) CreateOption {
	return func(c *createConfig) { c.BlockSize = bs }
}

// WithBlockCount sets block_count.
func WithBlockCount(bc uint16) CreateOption {
	return func(c *createConfig) { c.BlockCount = bc }
}

// ParseCreateOptions parses a "name=value" option line, comma- or
// whitespace-separated "bs=N,bc=N" tokens. Unknown option names are
// ignored; malformed values for a recognized name are reported.
func ParseCreateOptions(line string) ([]CreateOption, error) {
	var opts []CreateOption

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, f := range fields {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch name {
		case "bs":
			n, err := strconv.ParseUint(val, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid bs value %q: %w", val, err)
			}
			opts = append(opts, WithBlockSize(uint16(n)))
		case "bc":
			n, err := strconv.ParseUint(val, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid bc value %q: %w", val, err)
			}
			opts = append(opts, WithBlockCount(uint16(n)))
		default:
			// unknown option names are ignored.
		}
	}
	return opts, nil
}
