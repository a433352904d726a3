package domain

import (
	"fmt"
	"math"
	"time"
)

// RentalStatus represents the lifecycle state of a rental.
type RentalStatus string

const (
	StatusPending    RentalStatus = "Pending"
	StatusAccepted   RentalStatus = "Accepted"
	StatusDeclined   RentalStatus = "Declined"
	StatusCompleted  RentalStatus = "Completed"
	StatusEndedEarly RentalStatus = "Ended Early"
)

// validTransitions defines the allowed state machine transitions.
// Declined, Completed and Ended Early are terminal.
var validTransitions = map[RentalStatus][]RentalStatus{
	StatusPending:  {StatusAccepted, StatusDeclined},
	StatusAccepted: {StatusCompleted, StatusEndedEarly},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RentalStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsLive reports whether a rental in this status blocks a new booking for
// the same pair.
func (s RentalStatus) IsLive() bool {
	return s == StatusPending || s == StatusAccepted
}

// PairKey identifies the requester/provider pair. At most one live rental
// and one countdown exist per pair.
type PairKey struct {
	RequesterID string
	ProviderID  string
}

func (p PairKey) String() string {
	return p.RequesterID + ":" + p.ProviderID
}

// RentalKey is the composite identity of a rental record.
type RentalKey struct {
	RequesterID    string
	ProviderID     string
	RequestedStart time.Time
}

// Pair drops the start time from the key.
func (k RentalKey) Pair() PairKey {
	return PairKey{RequesterID: k.RequesterID, ProviderID: k.ProviderID}
}

// RentalRecord is the persisted rental.
type RentalRecord struct {
	ID             string       `json:"id" bson:"rental_id"`
	GuildID        string       `json:"guild_id" bson:"guild_id"`
	Channel        string       `json:"channel" bson:"channel"`
	RequesterID    string       `json:"requester_id" bson:"requester_id"`
	ProviderID     string       `json:"provider_id" bson:"provider_id"`
	RequestedStart time.Time    `json:"requested_start" bson:"requested_start"`
	RequestedHours float64      `json:"requested_hours" bson:"requested_hours"`
	TotalPrice     int64        `json:"total_price" bson:"total_price"`
	Status         RentalStatus `json:"status" bson:"status"`
	Live           bool         `json:"-" bson:"live"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	ActualStart    *time.Time   `json:"actual_start,omitempty" bson:"actual_start,omitempty"`
	ActualEnd      *time.Time   `json:"actual_end,omitempty" bson:"actual_end,omitempty"`
	ActualHours    *float64     `json:"actual_hours,omitempty" bson:"actual_hours,omitempty"`
}

// Key returns the composite identity of r.
func (r *RentalRecord) Key() RentalKey {
	return RentalKey{RequesterID: r.RequesterID, ProviderID: r.ProviderID, RequestedStart: r.RequestedStart}
}

// Pair returns the requester/provider pair of r.
func (r *RentalRecord) Pair() PairKey {
	return r.Key().Pair()
}

// ScheduledEnd is the moment the countdown runs out, or the zero time when
// the rental has not started.
func (r *RentalRecord) ScheduledEnd() time.Time {
	if r.ActualStart == nil {
		return time.Time{}
	}
	return r.ActualStart.Add(HoursToDuration(r.RequestedHours))
}

// RentalMatch selects the record a conditional update applies to.
type RentalMatch struct {
	Key      RentalKey
	Expected RentalStatus
}

// RentalUpdate carries the fields written by a transition.
type RentalUpdate struct {
	Status      RentalStatus
	ActualStart *time.Time
	ActualEnd   *time.Time
	ActualHours *float64
}

// Validate checks that u carries the data its target status requires.
func (u RentalUpdate) Validate() error {
	switch u.Status {
	case StatusAccepted:
		if u.ActualStart == nil {
			return fmt.Errorf("%w: accepting requires a start time", ErrInvalidTransition)
		}
	case StatusCompleted, StatusEndedEarly:
		if u.ActualEnd == nil || u.ActualHours == nil {
			return fmt.Errorf("%w: closing requires end time and duration", ErrInvalidTransition)
		}
	case StatusDeclined:
	default:
		return fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, u.Status)
	}
	return nil
}

// NewTransition validates a move from one status to another and returns the
// conditional update to apply against the store.
func NewTransition(key RentalKey, from RentalStatus, update RentalUpdate) (RentalMatch, error) {
	if !from.CanTransitionTo(update.Status) {
		return RentalMatch{}, fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, from, update.Status)
	}
	if err := update.Validate(); err != nil {
		return RentalMatch{}, err
	}
	return RentalMatch{Key: key, Expected: from}, nil
}

// MaxRequestedHours is the longest rental a time.Duration can represent.
const MaxRequestedHours = float64(math.MaxInt64 / int64(time.Hour))

// ComputePrice multiplies hours by the hourly price, truncating toward zero.
// A product that does not fit in an int64 fails with ErrInvalidDuration.
func ComputePrice(hours float64, pricePerHour int64) (int64, error) {
	total := math.Trunc(hours * float64(pricePerHour))
	if math.IsNaN(total) || total < 0 || total >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: total price out of range", ErrInvalidDuration)
	}
	return int64(total), nil
}

// HoursToDuration converts fractional hours to a duration, saturating at
// MaxRequestedHours.
func HoursToDuration(hours float64) time.Duration {
	if hours >= MaxRequestedHours {
		return time.Duration(math.MaxInt64)
	}
	if hours <= 0 {
		return 0
	}
	return time.Duration(hours * float64(time.Hour))
}

// DurationHours converts a duration to fractional hours.
func DurationHours(d time.Duration) float64 {
	return d.Hours()
}

// SplitDuration breaks d into whole hours, minutes and seconds using integer
// division of the remaining seconds. Negative durations clamp to zero.
func SplitDuration(d time.Duration) (hours, minutes, seconds int64) {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours = total / 3600
	minutes = (total % 3600) / 60
	seconds = total % 60
	return hours, minutes, seconds
}

// FormatClock renders d as HH:MM:SS.
func FormatClock(d time.Duration) string {
	h, m, s := SplitDuration(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
