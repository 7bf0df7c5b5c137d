package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("@every 15m")
	require.NoError(t, err)
	assert.Equal(t, "@every 15m0s", s.String())

	base := time.Date(2024, 3, 1, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, base.Add(15*time.Minute), s.Next(base))

	s, err = ParseSchedule("@hourly")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC), s.Next(base))

	s, err = ParseSchedule("@weekly")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), s.Next(base))

	for _, bad := range []string{"", "@every -1m", "@every soon", "* * *", "61 * * * *"} {
		_, err := ParseSchedule(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCron_Fields(t *testing.T) {
	c, err := ParseCron("0,30 8-20/4 * * 1-5")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 30}, values(c.minute))
	assert.Equal(t, []int{8, 12, 16, 20}, values(c.hour))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, values(c.wday))
	assert.Len(t, values(c.day), 31)

	c, err = ParseCron("5/20 * * * *")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 25, 45}, values(c.minute))

	for _, bad := range []string{"*/0 * * * *", "10-5 * * * *", "* * 0 * *", "* * * * 7"} {
		_, err := ParseCron(bad)
		assert.Error(t, err, bad)
	}
}

func TestCron_Next(t *testing.T) {
	c, err := ParseCron("0 9 * * 1-5")
	require.NoError(t, err)

	// Friday 2024-03-01 10:00 -> Monday 2024-03-04 09:00.
	friday := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), c.Next(friday))

	// Exactly on a due minute moves to the next one.
	monday9 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), c.Next(monday9))

	never, err := ParseCron("0 0 30 2 *")
	require.NoError(t, err)
	assert.True(t, never.Next(friday).IsZero())

	almaty := time.FixedZone("Asia/Almaty", 5*3600)
	daily, err := ParseCron("0 21 * * *")
	require.NoError(t, err)
	got := daily.Next(time.Date(2024, 3, 1, 22, 0, 0, 0, almaty))
	assert.Equal(t, time.Date(2024, 3, 2, 21, 0, 0, 0, almaty), got)
}
