package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// StartTimeLayout is the accepted booking start format (DD/MM/YYYY HH:MM).
const StartTimeLayout = "2/1/2006 15:04"

var (
	mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)
	// decimalPattern admits plain decimals only: no sign, exponent or hex.
	decimalPattern = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)$`)
)

// parseDecimal parses a plain unsigned decimal such as "2", "2.5" or ".5".
func parseDecimal(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	if !decimalPattern.MatchString(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseHours parses a decimal hour count. Zero values and values above
// domain.MaxRequestedHours are rejected.
func ParseHours(raw string) (float64, error) {
	h, ok := parseDecimal(raw)
	if !ok || h <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDuration, raw)
	}
	if h > domain.MaxRequestedHours {
		return 0, fmt.Errorf("%w: %q exceeds %.0f hours", domain.ErrInvalidDuration, raw, domain.MaxRequestedHours)
	}
	return h, nil
}

// ParseStartTime parses a booking start in loc.
func ParseStartTime(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(StartTimeLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDateTime, raw)
	}
	return t, nil
}

// sameName compares two names ignoring case.
func sameName(a, b string) bool {
	// A Caser keeps state and is not safe for concurrent use.
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// ResolveMember turns a typed identifier into a guild member. A mention is
// resolved by id; anything else is matched against usernames first and then
// display names, ignoring case. The first match wins.
func ResolveMember(ctx context.Context, dir ports.MemberDirectory, guildID, ident string) (*domain.Member, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil, domain.ErrIdentifierNotFound
	}

	if m := mentionPattern.FindStringSubmatch(ident); m != nil {
		member, err := dir.Lookup(ctx, guildID, m[1])
		if err != nil {
			return nil, err
		}
		return member, nil
	}

	members, err := dir.List(ctx, guildID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(ident, "@")
	for i := range members {
		if sameName(members[i].Username, name) {
			return &members[i], nil
		}
	}
	for i := range members {
		if members[i].DisplayName != "" && sameName(members[i].DisplayName, name) {
			return &members[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrIdentifierNotFound, ident)
}

// FormatThousands renders an amount in the minor unit as "<n>K".
func FormatThousands(amount int64) string {
	return strconv.FormatInt(amount/1000, 10) + "K"
}
