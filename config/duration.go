package config

import (
	"strconv"
	"time"

	"github.com/solidcoredata/tablechain/coreerr"
)

// ParseDuration parses a max-age duration string: an integer followed by
// one of the suffixes s, m, h, d, w, e.g. "30s", "7d", "2w".
// time.ParseDuration is not reused directly because it neither accepts
// "d"/"w" nor rejects fractional/multi-unit forms.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, coreerr.Newf(coreerr.Config, "config: invalid duration %q", s)
	}
	suffix := s[len(s)-1]
	digits := s[:len(s)-1]
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, coreerr.Newf(coreerr.Config, "config: invalid duration %q", s)
	}
	var unit time.Duration
	switch suffix {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, coreerr.Newf(coreerr.Config, "config: invalid duration suffix in %q", s)
	}
	return time.Duration(n) * unit, nil
}
