package domain

import "time"

// ProfileKind selects the collection a profile lives in.
type ProfileKind string

const (
	KindProvider  ProfileKind = "provider"
	KindRequester ProfileKind = "requester"
)

// Valid reports whether k names a known profile collection.
func (k ProfileKind) Valid() bool {
	return k == KindProvider || k == KindRequester
}

// Profile is a registered member. It is replaced wholesale on every
// registration; the last write wins.
type Profile struct {
	UserID          string      `json:"user_id" bson:"user_id"`
	Kind            ProfileKind `json:"kind" bson:"kind"`
	DisplayName     string      `json:"display_name" bson:"display_name"`
	PricePerHour    int64       `json:"price_per_hour" bson:"price_per_hour"`
	Birthday        time.Time   `json:"birthday" bson:"birthday"`
	City            string      `json:"city" bson:"city"`
	ShowsCamera     bool        `json:"shows_camera" bson:"shows_camera"`
	SocialLink      string      `json:"social_link" bson:"social_link"`
	Talents         string      `json:"talents" bson:"talents"`
	PlayableContent string      `json:"playable_content" bson:"playable_content"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

// Member is a guild member as known to the chat platform.
type Member struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}
