// Package directives parses the delimited logger-level strings kept in the
// parameter store, e.g. "org.springframework.security:DEBUG,com.example:ERROR".
package directives

import (
	"fmt"
	"strings"

	"github.com/tnicklin/actuator_loglevels/models"
)

const (
	entrySeparator = ","
	pairSeparator  = ":"
)

// Levels accepted by the remote management endpoint.
var Levels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", "OFF"}

// Skipped describes a segment that could not be turned into a directive.
type Skipped struct {
	Position int    `json:"position"`
	Segment  string `json:"segment"`
	Reason   string `json:"reason"`
}

func (s Skipped) String() string {
	return fmt.Sprintf("segment %d %q: %s", s.Position, s.Segment, s.Reason)
}

// Result holds the directives in textual order plus any rejected segments.
type Result struct {
	Directives []models.Directive
	Skipped    []Skipped
}

// Empty reports whether no usable directive was found.
func (r Result) Empty() bool {
	return len(r.Directives) == 0
}

// Parse splits raw on "," and each segment on ":". Segments that are not
// exactly one name and one known level are skipped and reported. Blank
// segments, such as the one left by a trailing comma, are ignored silently.
func Parse(raw string) Result {
	var res Result
	if strings.TrimSpace(raw) == "" {
		return res
	}

	for i, segment := range strings.Split(raw, entrySeparator) {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		parts := strings.Split(segment, pairSeparator)
		if len(parts) != 2 {
			res.Skipped = append(res.Skipped, Skipped{
				Position: i,
				Segment:  segment,
				Reason:   fmt.Sprintf("expected name%slevel, got %d part(s)", pairSeparator, len(parts)),
			})
			continue
		}

		name := strings.TrimSpace(parts[0])
		level := strings.ToUpper(strings.TrimSpace(parts[1]))
		switch {
		case name == "":
			res.Skipped = append(res.Skipped, Skipped{Position: i, Segment: segment, Reason: "empty logger name"})
			continue
		case level == "":
			res.Skipped = append(res.Skipped, Skipped{Position: i, Segment: segment, Reason: "empty level"})
			continue
		case !ValidLevel(level):
			res.Skipped = append(res.Skipped, Skipped{Position: i, Segment: segment, Reason: "unknown level " + level})
			continue
		}

		res.Directives = append(res.Directives, models.Directive{Name: name, Level: level})
	}

	return res
}

// ValidLevel reports whether level (case-insensitive) is a known level.
func ValidLevel(level string) bool {
	level = strings.ToUpper(level)
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Format renders directives back into the delimited form.
func Format(ds []models.Directive) string {
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.Name+pairSeparator+d.Level)
	}
	return strings.Join(parts, entrySeparator)
}
