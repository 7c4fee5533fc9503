package giveaway

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sho0pi/naturaltime"
)

const (
	MinDuration = time.Minute
	MaxDuration = 30 * 24 * time.Hour

	MinWinners = 1
	MaxWinners = 20

	MinBonusEntries = 1
	MaxBonusEntries = 10
)

var (
	durationPattern = regexp.MustCompile(`^(?:\d+[smhd]\s*)+$`)
	durationPart    = regexp.MustCompile(`(\d+)([smhd])`)
	colorPattern    = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)
	snowflakeInList = regexp.MustCompile(`\d{17,20}`)
)

var (
	naturalParser     *naturaltime.Parser
	naturalParserErr  error
	naturalParserOnce sync.Once
)

// ParseDuration accepts compact durations such as "30m", "2h" or "1d 12h",
// and falls back to natural language ("in 3 days", "next friday").
// The result must lie between MinDuration and MaxDuration.
func ParseDuration(input string, now time.Time) (time.Duration, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return 0, ErrInvalidDuration
	}

	var d time.Duration
	if durationPattern.MatchString(input) {
		for _, m := range durationPart.FindAllStringSubmatch(input, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, input)
			}
			d += time.Duration(n) * unitDuration(m[2])
		}
	} else {
		at, err := parseNatural(input, now)
		if err != nil {
			return 0, err
		}
		d = at.Sub(now)
	}

	if d < MinDuration || d > MaxDuration {
		return 0, fmt.Errorf("%w: %s is outside 1m..30d", ErrInvalidDuration, d)
	}
	return d, nil
}

func unitDuration(unit string) time.Duration {
	switch unit {
	case "s":
		return time.Second
	case "m":
		return time.Minute
	case "h":
		return time.Hour
	}
	return 24 * time.Hour
}

func parseNatural(input string, now time.Time) (time.Time, error) {
	naturalParserOnce.Do(func() {
		naturalParser, naturalParserErr = naturaltime.New()
	})
	if naturalParserErr != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDuration, naturalParserErr)
	}

	at, err := naturalParser.ParseDate(input, now)
	if err != nil || at == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDuration, input)
	}
	return *at, nil
}

// ParseColor parses "#RRGGBB" into an embed color
func ParseColor(input string) (int, error) {
	m := colorPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0, fmt.Errorf("invalid color %q", input)
	}
	v, err := strconv.ParseInt(m[1], 16, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// ParseRoleList extracts role ids from mentions or raw ids separated by spaces or commas
func ParseRoleList(input string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range snowflakeInList.FindAllString(input, -1) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// FormatWinnerMessage fills the {winner} and {prize} placeholders
func FormatWinnerMessage(template, winners, prize string) string {
	if template == "" {
		template = DefaultWinnerMessage
	}
	return strings.NewReplacer("{winner}", winners, "{prize}", prize).Replace(template)
}

// DefaultWinnerMessage is used when the host leaves the winner message empty
const DefaultWinnerMessage = "🎉 ¡Felicidades {winner}! Has ganado **{prize}**"
