package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseNodeRange parses a node count as accepted by sbatch --nodes: either a
// single number ("2") or a "min-max" range ("2-4").
func ParseNodeRange(s string) (minNodes, maxNodes int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty node count")
	}
	lo, hi, isRange := strings.Cut(s, "-")
	minNodes, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node count: %s", s)
	}
	if !isRange {
		return minNodes, minNodes, nil
	}
	maxNodes, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node count: %s", s)
	}
	return minNodes, maxNodes, nil
}

// ParseSlurmTime parses a Slurm time limit. Accepted forms are
// "minutes", "minutes:seconds", "hours:minutes:seconds", "days-hours",
// "days-hours:minutes" and "days-hours:minutes:seconds".
func ParseSlurmTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time limit")
	}

	var days int64
	hms := s
	hasDays := false
	if dayPart, rest, ok := strings.Cut(s, "-"); ok {
		d, err := strconv.ParseInt(dayPart, 10, 64)
		if err != nil || d < 0 {
			return 0, fmt.Errorf("invalid time limit: %s", s)
		}
		days = d
		hms = rest
		hasDays = true
	}

	parts := strings.Split(hms, ":")
	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time limit: %s", s)
		}
		nums[i] = n
	}

	var hours, minutes, seconds int64
	switch {
	case hasDays && len(nums) == 1:
		hours = nums[0]
	case hasDays && len(nums) == 2:
		hours, minutes = nums[0], nums[1]
	case len(nums) == 3:
		hours, minutes, seconds = nums[0], nums[1], nums[2]
	case !hasDays && len(nums) == 2:
		minutes, seconds = nums[0], nums[1]
	case !hasDays && len(nums) == 1:
		minutes = nums[0]
	default:
		return 0, fmt.Errorf("invalid time limit: %s", s)
	}

	total := days*24*3600 + hours*3600 + minutes*60 + seconds
	return time.Duration(total) * time.Second, nil
}

// FormatSlurmTime renders d as "[D-]HH:MM:SS".
func FormatSlurmTime(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(d.Seconds())
	days := total / (24 * 3600)
	rem := total % (24 * 3600)
	hours := rem / 3600
	rem %= 3600
	minutes := rem / 60
	seconds := rem % 60
	if days > 0 {
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
