package scheduler

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// Schedule yields the next due time strictly after t. A zero result means
// the schedule never fires again.
type Schedule interface {
	Next(t time.Time) time.Time
	String() string
}

// ParseSchedule accepts "@every <duration>", "@hourly", "@daily",
// "@weekly" or a 5-field cron expression.
func ParseSchedule(expr string) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if d, ok := strings.CutPrefix(expr, "@every "); ok {
		interval, err := time.ParseDuration(strings.TrimSpace(d))
		if err != nil {
			return nil, fmt.Errorf("invalid interval %q: %w", d, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %s", interval)
		}
		return Every(interval), nil
	}
	switch expr {
	case "":
		return nil, fmt.Errorf("empty schedule")
	case "@hourly":
		expr = "0 * * * *"
	case "@daily":
		expr = "0 0 * * *"
	case "@weekly":
		expr = "0 0 * * 0"
	}
	return ParseCron(expr)
}

// ── interval ────────────────────────────────────────────────────────────────

// Every fires at a fixed interval after the previous due time.
type Every time.Duration

func (e Every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }
func (e Every) String() string             { return "@every " + time.Duration(e).String() }

// ── cron ────────────────────────────────────────────────────────────────────

// Cron is a parsed "minute hour day month weekday" expression. Each field
// accepts *, n, a-b, any of those with /step, and comma lists. Day of month
// and weekday must both match. Weekday 0 is Sunday.
type Cron struct {
	expr                           string
	minute, hour, day, month, wday uint64
}

var cronFields = [5]struct {
	name   string
	lo, hi int
}{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day", 1, 31},
	{"month", 1, 12},
	{"weekday", 0, 6},
}

// ParseCron parses a 5-field cron expression.
func ParseCron(expr string) (*Cron, error) {
	parts := strings.Fields(expr)
	if len(parts) != len(cronFields) {
		return nil, fmt.Errorf("cron %q: want 5 fields, got %d", expr, len(parts))
	}

	var masks [5]uint64
	for i, f := range cronFields {
		m, err := parseCronField(parts[i], f.lo, f.hi)
		if err != nil {
			return nil, fmt.Errorf("cron %q: %s: %w", expr, f.name, err)
		}
		masks[i] = m
	}
	return &Cron{
		expr:   expr,
		minute: masks[0], hour: masks[1], day: masks[2], month: masks[3], wday: masks[4],
	}, nil
}

func parseCronField(field string, lo, hi int) (uint64, error) {
	var mask uint64
	for _, item := range strings.Split(field, ",") {
		rng, stepText, stepped := strings.Cut(item, "/")
		step := 1
		if stepped {
			n, err := strconv.Atoi(stepText)
			if err != nil || n < 1 {
				return 0, fmt.Errorf("bad step %q", stepText)
			}
			step = n
		}

		from, to := lo, hi
		switch {
		case rng == "*":
		case strings.Contains(rng, "-"):
			a, b, _ := strings.Cut(rng, "-")
			var err error
			if from, err = cronValue(a, lo, hi); err != nil {
				return 0, err
			}
			if to, err = cronValue(b, lo, hi); err != nil {
				return 0, err
			}
			if from > to {
				return 0, fmt.Errorf("bad range %q", rng)
			}
		default:
			v, err := cronValue(rng, lo, hi)
			if err != nil {
				return 0, err
			}
			from = v
			if !stepped {
				to = v
			}
		}

		for v := from; v <= to; v += step {
			mask |= 1 << uint(v)
		}
	}
	return mask, nil
}

func cronValue(s string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%d outside %d-%d", v, lo, hi)
	}
	return v, nil
}

func has(mask uint64, v int) bool { return mask&(1<<uint(v)) != 0 }

// values lists the set bits of mask in ascending order.
func values(mask uint64) []int {
	out := make([]int, 0, bits.OnesCount64(mask))
	for mask != 0 {
		v := bits.TrailingZeros64(mask)
		out = append(out, v)
		mask &^= 1 << uint(v)
	}
	return out
}

func (c *Cron) String() string { return c.expr }

// Next skips whole months, days and hours that cannot match, so a search
// costs at most a few thousand steps. Nothing within a year yields zero.
func (c *Cron) Next(after time.Time) time.Time {
	t := after.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(1, 0, 1)
	loc := t.Location()

	for t.Before(limit) {
		y, mo, d := t.Date()
		switch {
		case !has(c.month, int(mo)):
			t = time.Date(y, mo+1, 1, 0, 0, 0, 0, loc)
		case !has(c.day, d) || !has(c.wday, int(t.Weekday())):
			t = time.Date(y, mo, d+1, 0, 0, 0, 0, loc)
		case !has(c.hour, t.Hour()):
			t = time.Date(y, mo, d, t.Hour()+1, 0, 0, 0, loc)
		case !has(c.minute, t.Minute()):
			t = t.Add(time.Minute)
		default:
			return t
		}
	}
	return time.Time{}
}
