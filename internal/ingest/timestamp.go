package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aisd/internal/providers"
)

const (
	baseLayout   = "2006-01-02T15:04:05.999999"
	maxFracDigit = 6
)

var errEmptyTimestamp = errors.New("empty timestamp")

// ParseTimestamp reads the receive times found in the feed, for example
// "2024-05-01 12:00:00.123456789 +0000 UTC", "2024-05-01T12:00:00Z" or
// "2024-05-01 12:00:00". Fractions beyond microseconds are truncated.
// A value without zone information is read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, " UTC"))

	parts := strings.Fields(s)
	switch {
	case len(parts) == 0:
		return time.Time{}, errEmptyTimestamp
	case len(parts) >= 3:
		s = parts[0] + "T" + parts[1] + parts[2]
	case len(parts) == 2:
		s = parts[0] + "T" + parts[1]
	}

	body, zone := splitZone(s)
	body = truncateFraction(body)

	var (
		t   time.Time
		err error
	)
	switch {
	case zone == "":
		t, err = time.ParseInLocation(baseLayout, body, time.UTC)
	case zone == "Z":
		t, err = time.Parse(baseLayout+"Z07:00", body+zone)
	case strings.Contains(zone, ":"):
		t, err = time.Parse(baseLayout+"-07:00", body+zone)
	default:
		t, err = time.Parse(baseLayout+"-0700", body+zone)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// splitZone separates a trailing Z or numeric offset from the date-time.
func splitZone(s string) (string, string) {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return s[:len(s)-1], "Z"
	}
	t := strings.IndexByte(s, 'T')
	if t < 0 {
		return s, ""
	}
	if i := strings.LastIndexAny(s[t:], "+-"); i >= 0 {
		return s[:t+i], s[t+i:]
	}
	return s, ""
}

func truncateFraction(body string) string {
	dot := strings.LastIndexByte(body, '.')
	if dot < 0 || len(body)-dot-1 <= maxFracDigit {
		return body
	}
	return body[:dot+1+maxFracDigit]
}

// TimestampNormalizer never fails: unparseable input becomes the current
// time and a warning in the ingest log.
type TimestampNormalizer struct {
	logger providers.Logger
	now    func() time.Time
}

func NewTimestampNormalizer(logger providers.Logger) *TimestampNormalizer {
	return &TimestampNormalizer{logger: logger, now: time.Now}
}

func (n *TimestampNormalizer) Normalize(raw string) time.Time {
	t, err := ParseTimestamp(raw)
	if err != nil {
		now := n.now().UTC()
		n.logger.Warnf(providers.TypeIngest, "Timestamp fallback to %s: %v", now.Format(time.RFC3339Nano), err)
		return now
	}
	return t
}
