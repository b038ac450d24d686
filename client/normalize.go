package client

import (
	"regexp"
	"strconv"
	"time"
)

// dateValueRe matches the provider's embedded date encoding, e.g.
// "/Date(1672531200000)/" with the epoch value in milliseconds.
var dateValueRe = regexp.MustCompile(`^/Date\((-?\d+)\)/$`)

// NormalizeRecord converts a raw API record into the shape exposed to
// callers: embedded relation objects are dropped, date-encoded strings
// become RFC3339 timestamps, and every other value passes through
// unchanged. It never fails; unrecognized formats are kept verbatim.
func NormalizeRecord(raw map[string]any) Record {
	normalized := make(Record, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case map[string]any:
			// Embedded relation object the engine does not need.
			continue
		case string:
			normalized[key] = normalizeString(v)
		default:
			normalized[key] = value
		}
	}
	return normalized
}

func normalizeString(s string) any {
	m := dateValueRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return s
	}
	// The provider's resolution is milliseconds but the values carry whole
	// seconds; keep second precision like the rest of the API surface.
	return time.Unix(millis/1000, 0).UTC().Format(time.RFC3339)
}
