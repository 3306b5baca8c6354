// Package format holds the pure display helpers applied when stored records become view records.
package format

import (
	"fmt"
	"math"
	"time"
)

const (
	TagColorUrgent = "bg-red-900/30 text-red-300"
	TagColorNormal = "bg-blue-900/30 text-blue-300"
)

// TimeAgo renders t relative to now ("Just now", "3 hours ago", "Yesterday", ...).
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Just now"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 48*time.Hour:
		return "Yesterday"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

// DueText renders a due date relative to now. A nil due date reads "No date".
func DueText(due *time.Time, now time.Time) string {
	if due == nil || due.IsZero() {
		return "No date"
	}

	d := due.Sub(now)
	if d < 0 {
		return "Overdue"
	}

	if d < time.Hour {
		minutes := int(math.Round(d.Minutes()))
		if minutes < 1 {
			return "Due now"
		}
		if minutes < 60 {
			return "Due in " + plural(minutes, "minute")
		}
	}

	if hours := int(math.Round(d.Hours())); hours < 24 {
		return "Due in " + plural(hours, "hour")
	}

	days := int(math.Round(d.Hours() / 24))
	return "Due in " + plural(days, "day")
}

// Tag picks the badge text for an announcement.
func Tag(courseName, role string) string {
	if courseName != "" {
		return courseName
	}
	return role
}

// TagColor picks the badge classes for an announcement priority.
func TagColor(priority string) string {
	if priority == "urgent" {
		return TagColorUrgent
	}
	return TagColorNormal
}

// ClampProgress bounds a completion percentage to [0,100].
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
