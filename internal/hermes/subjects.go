package hermes

import (
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	SubjectCacheWarmed  = "compass.cache.warmed"
	SubjectCacheRefresh = "compass.cache.refresh"

	StreamName   = "COMPASS_EVENTS"
	StreamMaxAge = 7 * 24 * time.Hour
)

// StreamSubjects are retained in StreamName. Refresh requests are control
// messages and stay out of it.
var StreamSubjects = []string{"compass.analysis.>", "compass.country.>", SubjectCacheWarmed}

func StreamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Compass analysis, partial-data and cache events",
		Subjects:    StreamSubjects,
		MaxAge:      StreamMaxAge,
	}
}

// InStream reports whether subject is captured by StreamSubjects.
func InStream(subject string) bool {
	for _, pattern := range StreamSubjects {
		if prefix, ok := strings.CutSuffix(pattern, ">"); ok {
			if strings.HasPrefix(subject, prefix) && len(subject) > len(prefix) {
				return true
			}
			continue
		}
		if subject == pattern {
			return true
		}
	}
	return false
}

func SubjectAnalysisCompleted(analysisID string) string {
	return "compass.analysis." + analysisID + ".completed"
}

func SubjectCountryPartial(country string) string {
	return "compass.country." + Token(country) + ".partial"
}

// Token makes a free-form name safe to use as a single subject token.
func Token(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == '.' || r == '*' || r == '>' || r == ' ' || r == '\t':
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		default:
			b.WriteRune(r)
			lastDash = false
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return strings.TrimSuffix(b.String(), "-")
}
