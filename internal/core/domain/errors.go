package domain

import "errors"

// ErrorKind groups domain errors by how the caller should react to them.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindStore      ErrorKind = "store"
	KindPermission ErrorKind = "permission"
)

// Validation errors are user-correctable and surfaced verbatim.
var (
	ErrInvalidDuration   = errors.New("rent hours must be a positive number")
	ErrInvalidDateTime   = errors.New("rent time must be in DD/MM/YYYY HH:MM format")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrInvalidRequest    = errors.New("invalid booking request")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Lookup misses.
var (
	ErrIdentifierNotFound  = errors.New("member not found, check the username, display name or use a mention")
	ErrCounterpartNotFound = errors.New("counterpart not found, check the name and try again")
	ErrRentalNotFound      = errors.New("rental not found")
	ErrProfileNotFound     = errors.New("profile not found")
)

// Conflicts leave state untouched.
var (
	ErrAlreadyProcessed    = errors.New("rental was already processed or cancelled")
	ErrDuplicateRental     = errors.New("rental already exists for this start time")
	ErrActiveBookingExists = errors.New("a pending or accepted rental already exists for this pair")
	ErrCountdownExists     = errors.New("countdown already running for this pair")
)

var ErrStore = errors.New("store failure")

var ErrForbidden = errors.New("action not allowed for this member")

var kinds = []struct {
	kind ErrorKind
	errs []error
}{
	{KindValidation, []error{ErrInvalidDuration, ErrInvalidDateTime, ErrInvalidProfile, ErrInvalidRequest, ErrInvalidTransition}},
	{KindNotFound, []error{ErrIdentifierNotFound, ErrCounterpartNotFound, ErrRentalNotFound, ErrProfileNotFound}},
	{KindConflict, []error{ErrAlreadyProcessed, ErrDuplicateRental, ErrActiveBookingExists, ErrCountdownExists}},
	{KindPermission, []error{ErrForbidden}},
	{KindStore, []error{ErrStore}},
}

// KindOf classifies err. Anything unrecognised is reported as a store
// failure so it is logged and never leaked to the actor.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindStore
}
