package ui

import (
	"fmt"
	"strconv"
	"time"
)

// DisplayTimeFormat is the time layout used in CLI output.
const DisplayTimeFormat = "2006-01-02 15:04:05 MST"

// FormatExpiration renders an expiration as the stored epoch seconds followed
// by local time and the time remaining relative to now.
func FormatExpiration(t, now time.Time) string {
	epoch := strconv.FormatInt(t.Unix(), 10)
	local := t.In(now.Location()).Format(DisplayTimeFormat)

	remaining := t.Sub(now).Round(time.Second)
	if remaining <= 0 {
		return fmt.Sprintf("%s (%s, expired)", epoch, local)
	}
	return fmt.Sprintf("%s (%s, in %s)", epoch, local, remaining)
}
