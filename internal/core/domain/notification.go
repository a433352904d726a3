package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationKind tells the gateway how to render a notification.
type NotificationKind string

const (
	NoticeBookingRequested NotificationKind = "booking_requested"
	NoticeBookingAccepted  NotificationKind = "booking_accepted"
	NoticeBookingDeclined  NotificationKind = "booking_declined"
	NoticeRentalCompleted  NotificationKind = "rental_completed"
	NoticeRentalEndedEarly NotificationKind = "rental_ended_early"
	NoticeRequestBroadcast NotificationKind = "request_broadcast"
)

// Control actions carried by interactive notifications.
const (
	ActionAccept   = "accept"
	ActionDecline  = "decline"
	ActionEndEarly = "end_early"
)

// Control is an interactive element (button) attached to a notification.
type Control struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Style string `json:"style"`
}

// ControlID builds the custom id the gateway echoes back when a control is used.
func ControlID(action, rentalID string) string {
	return fmt.Sprintf("rental:%s:%s", action, rentalID)
}

// ParseControlID splits a control id built by ControlID.
func ParseControlID(id string) (action, rentalID string, ok bool) {
	rest, found := strings.CutPrefix(id, "rental:")
	if !found {
		return "", "", false
	}
	action, rentalID, found = strings.Cut(rest, ":")
	if !found || rentalID == "" {
		return "", "", false
	}
	switch action {
	case ActionAccept, ActionDecline, ActionEndEarly:
		return action, rentalID, true
	}
	return "", "", false
}

// Notification is a message the core asks the platform to deliver.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Channel  string           `json:"channel"`
	RentalID string           `json:"rental_id,omitempty"`
	Message  string           `json:"message"`
	Controls []Control        `json:"controls,omitempty"`
	// RoleMentions lists role ids the platform may ping.
	RoleMentions []string  `json:"role_mentions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CountdownFrame is one refresh of a countdown display.
type CountdownFrame struct {
	RentalID  string        `json:"rental_id"`
	Channel   string        `json:"channel"`
	Remaining time.Duration `json:"remaining_ns"`
	Text      string        `json:"text"`
	Final     bool          `json:"final"`
	At        time.Time     `json:"at"`
}

// Mention renders a user mention in platform syntax.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// RoleMention renders a role mention in platform syntax.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// Envelope types.
const (
	EnvelopeNotification = "notification"
	EnvelopeFrame        = "frame"
)

// Envelope wraps a notification or a frame for transports that carry both.
type Envelope struct {
	Type         string          `json:"type"`
	Notification *Notification   `json:"notification,omitempty"`
	Frame        *CountdownFrame `json:"frame,omitempty"`
}
