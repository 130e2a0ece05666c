package block

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingFloat matches the longest numeric prefix a lenient float parser
// accepts: optional sign, digits with an optional fraction, and an optional
// exponent, or Infinity.
var leadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseFloat parses the leading number of s and ignores whatever follows it,
// so "1.5x" is 1.5. It returns NaN when s does not start with a number.
func ParseFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimLeft(s, " \t\r\n\f\v"))
	if m == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// overflow yields a signed infinity
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// ParseTime converts a time marker to seconds. Accepted forms are raw
// seconds ("90", "12.5"), MM:SS ("1:30") and HH:MM:SS ("1:02:03"). Any other
// colon-separated shape falls back to reading the leading number.
func ParseTime(value string) float64 {
	if strings.Contains(value, ":") {
		parts := strings.Split(value, ":")
		switch len(parts) {
		case 2:
			minutes, seconds := ParseFloat(parts[0]), ParseFloat(parts[1])
			return minutes*60 + seconds
		case 3:
			hours, minutes, seconds := ParseFloat(parts[0]), ParseFloat(parts[1]), ParseFloat(parts[2])
			return hours*3600 + minutes*60 + seconds
		}
	}
	return ParseFloat(value)
}

// FormatTime renders seconds as H:MM:SS, or M:SS below one hour. Fractions
// are dropped.
func FormatTime(totalSeconds float64) string {
	// kept as floats: a marker such as 1e300 does not fit an integer
	hours := math.Floor(totalSeconds / 3600)
	minutes := math.Floor(math.Mod(totalSeconds, 3600) / 60)
	seconds := math.Floor(math.Mod(totalSeconds, 60))

	if hours > 0 {
		return fmt.Sprintf("%.0f:%02.0f:%02.0f", hours, minutes, seconds)
	}
	return fmt.Sprintf("%.0f:%02.0f", minutes, seconds)
}

// formatNumber prints v in its shortest decimal form: 2, 1.5, 0.25.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
