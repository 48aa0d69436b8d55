// internal/frame/parser.go
package frame

import (
	"math"
	"strconv"
	"strings"
)

// Wire frame: TEMP:<float>,HUMIDITY:<float>
const (
	prefix      = "TEMP:"
	keyTemp     = "TEMP"
	keyHumidity = "HUMIDITY"
)

// Reading is one validated temperature/humidity pair.
type Reading struct {
	Temperature float64
	Humidity    float64
}

// Parse converts one device line into a Reading.
// ok=false is a rejection, not an error: the caller decides what the line was.
// No range or plausibility checks beyond finiteness.
func Parse(line string) (Reading, bool) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, prefix) {
		return Reading{}, false
	}

	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return Reading{}, false
	}

	temp, ok := field(fields[0], keyTemp)
	if !ok {
		return Reading{}, false
	}
	hum, ok := field(fields[1], keyHumidity)
	if !ok {
		return Reading{}, false
	}

	return Reading{Temperature: temp, Humidity: hum}, true
}

// IsData reports whether a line claims to be a data frame (prefix match),
// regardless of whether it parses.
func IsData(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), prefix)
}

func field(s, key string) (float64, bool) {
	kv := strings.Split(s, ":")
	if len(kv) != 2 || kv[0] != key {
		return 0, false
	}

	raw := strings.TrimSpace(kv[1])
	// decimal only: hex floats (0x1p4) are not device output
	if strings.ContainsAny(raw, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	// NaN/Inf are not readings and cannot be JSON-encoded.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
