// Package notify composes the delivery sinks behind ports.Notifier.
package notify

import (
	"context"
	"errors"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
)

// Fanout delivers to every sink. All sinks are tried; their errors are joined.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Display(ctx context.Context, fr domain.CountdownFrame) error {
	var errs []error
	for _, s := range f {
		if err := s.Display(ctx, fr); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
