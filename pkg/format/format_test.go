package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestTimeAgo(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "Just now"},
		{now.Add(-10 * time.Second), "Just now"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-42 * time.Minute), "42 minutes ago"},
		{now.Add(-2 * time.Hour), "2 hours ago"},
		{now.Add(-30 * time.Hour), "Yesterday"},
		{now.Add(-72 * time.Hour), "3 days ago"},
		{now.Add(-30 * 24 * time.Hour), "Sep 16, 2026"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeAgo(tc.at, now))
	}
}

func TestDueText(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	assert.Equal(t, "No date", DueText(nil, now))
	assert.Equal(t, "Overdue", DueText(at(-time.Minute), now))
	assert.Equal(t, "Due now", DueText(at(10*time.Second), now))
	assert.Equal(t, "Due in 1 minute", DueText(at(time.Minute), now))
	assert.Equal(t, "Due in 5 hours", DueText(at(5*time.Hour), now))
	assert.Equal(t, "Due in 5 hours", DueText(at(5*time.Hour-300*time.Millisecond), now))
	assert.Equal(t, "Due in 1 day", DueText(at(23*time.Hour+45*time.Minute), now))
	assert.Equal(t, "Due in 2 days", DueText(at(48*time.Hour), now))
	assert.Equal(t, "Due in 5 days", DueText(at(120*time.Hour-time.Second), now))
}

func TestTagAndColor(t *testing.T) {
	assert.Equal(t, "CS101", Tag("CS101", "Teacher"))
	assert.Equal(t, "Council", Tag("", "Council"))
	assert.Equal(t, TagColorUrgent, TagColor("urgent"))
	assert.Equal(t, TagColorNormal, TagColor("normal"))
	assert.Equal(t, TagColorNormal, TagColor(""))
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0, ClampProgress(-5))
	assert.Equal(t, 65, ClampProgress(65))
	assert.Equal(t, 100, ClampProgress(140))
}
