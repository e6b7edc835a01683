package command

import (
	"fmt"
	"strings"
	"time"
)

// verboseDuration renders a duration the way it reads in a chat prompt:
// "30 seconds", "1 minute 30 seconds", "2 hours". Sub-second durations
// round up so an actor is never told they have "0 seconds".
func verboseDuration(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}
	total := int64((d + time.Second - 1) / time.Second)

	units := []struct {
		name    string
		seconds int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var parts []string
	for _, u := range units {
		if n := total / u.seconds; n > 0 {
			name := u.name
			if n != 1 {
				name += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, name))
			total %= u.seconds
		}
	}
	return strings.Join(parts, " ")
}
