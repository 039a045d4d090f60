package timecode

import "fmt"

// FormatDuration renders ms as "M:SS" below one hour and "H:MM:SS" above it,
// truncating to whole seconds. Negative input renders as "0:00".
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / millisPerSecond
	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
