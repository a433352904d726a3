package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// BirthdayLayout is the accepted birthday format (DD/MM/YYYY).
const BirthdayLayout = "2/1/2006"

// registration is the parsed form checked before it is stored.
type registration struct {
	UserID          string `validate:"required,max=32"`
	Name            string `validate:"required,max=100"`
	City            string `validate:"required,max=100"`
	PricePerHour    int64  `validate:"gt=0"`
	SocialLink      string `validate:"required,max=512"`
	Talents         string `validate:"max=2000"`
	PlayableContent string `validate:"max=2000"`
}

type ProfileService struct {
	repo     ports.ProfileRepository
	validate *validator.Validate
	loc      *time.Location
	currency string
	now      func() time.Time
	logger   zerolog.Logger
}

func NewProfileService(repo ports.ProfileRepository, loc *time.Location, currency string, logger zerolog.Logger) *ProfileService {
	if loc == nil {
		loc = time.Local
	}
	if currency == "" {
		currency = "VND"
	}
	return &ProfileService{
		repo:     repo,
		validate: validator.New(),
		loc:      loc,
		currency: currency,
		now:      time.Now,
		logger:   logger.With().Str("component", "profiles").Logger(),
	}
}

// Register parses a registration form and replaces the member's profile.
func (s *ProfileService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown profile kind %q", domain.ErrInvalidProfile, in.Kind)
	}

	p, err := s.parse(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	s.logger.Info().
		Str("user_id", p.UserID).
		Str("kind", string(p.Kind)).
		Int64("price_per_hour", p.PricePerHour).
		Msg("profile registered")

	return &ports.RegisterResult{Profile: p, Summary: s.summary(p)}, nil
}

func (s *ProfileService) parse(in ports.RegisterInput) (*domain.Profile, error) {
	parts := strings.Split(in.PersonalInfo, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: personal info must contain 4 parts separated by commas", domain.ErrInvalidProfile)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	birthday, err := time.ParseInLocation(BirthdayLayout, parts[1], s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: birthday must be in DD/MM/YYYY format", domain.ErrInvalidProfile)
	}

	var camera bool
	switch strings.ToLower(parts[3]) {
	case "yes":
		camera = true
	case "no":
	default:
		return nil, fmt.Errorf("%w: show cam must be 'yes' or 'no'", domain.ErrInvalidProfile)
	}

	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	reg := registration{
		UserID:          strings.TrimSpace(in.UserID),
		Name:            parts[0],
		City:            parts[2],
		PricePerHour:    price,
		SocialLink:      strings.TrimSpace(in.SocialLink),
		Talents:         strings.TrimSpace(in.Talents),
		PlayableContent: strings.TrimSpace(in.PlayableContent),
	}
	if err := s.validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProfile, fieldErrors(err))
	}

	return &domain.Profile{
		UserID:          reg.UserID,
		Kind:            in.Kind,
		DisplayName:     reg.Name,
		PricePerHour:    reg.PricePerHour,
		Birthday:        birthday,
		City:            reg.City,
		ShowsCamera:     camera,
		SocialLink:      reg.SocialLink,
		Talents:         reg.Talents,
		PlayableContent: reg.PlayableContent,
		UpdatedAt:       s.now(),
	}, nil
}

// ParsePrice reads an hourly price typed in thousands ("100" or "100K") and
// returns it in the minor unit, truncated.
func ParsePrice(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimSuffix(strings.TrimSuffix(v, "K"), "k")
	f, ok := parseDecimal(v)
	if !ok || f <= 0 || f*1000 >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: price must be a positive number of thousands", domain.ErrInvalidProfile)
	}
	return int64(math.Trunc(f * 1000)), nil
}

func (s *ProfileService) summary(p *domain.Profile) string {
	camera := "no"
	if p.ShowsCamera {
		camera = "yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Registration submitted for %s. Your information has been stored:\n", p.DisplayName)
	fmt.Fprintf(&b, "ID: %s\n", p.UserID)
	fmt.Fprintf(&b, "Name: %s\n", p.DisplayName)
	fmt.Fprintf(&b, "Birthday: %s\n", p.Birthday.Format("02/01/2006"))
	fmt.Fprintf(&b, "City: %s\n", p.City)
	fmt.Fprintf(&b, "Show Cam: %s\n", camera)
	fmt.Fprintf(&b, "Price per hour: %s %s\n", FormatThousands(p.PricePerHour), s.currency)
	fmt.Fprintf(&b, "Social Link: %s\n", p.SocialLink)
	fmt.Fprintf(&b, "Talents: %s\n", p.Talents)
	fmt.Fprintf(&b, "Games: %s\n", p.PlayableContent)
	return b.String()
}

// fieldErrors flattens validator errors into "field: tag" pairs.
func fieldErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}
