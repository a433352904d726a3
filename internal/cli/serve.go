package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/namiiiah/Rent-Player-DiscordBot/docs"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/api/handler"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/scheduler"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/service"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/config"
	mongodb "github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/db/mongo"
	redisdb "github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/db/redis"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/notify"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/queue"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/infrastructure/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	displayBurst    = 1
)

// @title                       Rent Player Bot API
// @version                     1.0
// @description                 Booking intake, rental state machine and countdowns for the rental bot gateway.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the countdown scheduler and the notification workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	profiles := mongodb.NewProfileRepository(db)
	rentals := mongodb.NewRentalRepository(db)
	members := redisdb.NewMemberDirectory(rdb)
	dedup := redisdb.NewInteractionDedup(rdb, cfg.Redis.DedupTTL)

	// --- Notification plumbing ---
	hub := ws.NewHub(log)
	defer hub.Close()

	workers, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notify.Fanout{
		redisdb.NewPublisher(rdb, cfg.Notify.Channel),
		hub,
	}, log)
	dispatcher.Start(workers)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()
	display := notify.NewThrottle(dispatcher, cfg.Notify.DisplayRate, displayBurst)

	// --- Core ---
	sched := scheduler.New(display, log, scheduler.Options{
		Tick:  cfg.Scheduler.Tick,
		Sweep: cfg.Scheduler.Sweep,
	})
	defer sched.Close()

	rentalSvc := service.NewRentalService(rentals, sched, dispatcher, log)
	sched.OnExpire(rentalSvc)

	bookingSvc := service.NewBookingService(profiles, rentals, members, dispatcher, service.BookingOptions{
		Location:       loc,
		ProviderRoleID: cfg.Bot.ProviderRoleID,
		CurrencyLabel:  cfg.Bot.CurrencyLabel,
	}, log)
	profileSvc := service.NewProfileService(profiles, loc, cfg.Bot.CurrencyLabel, log)

	restored, err := rentalSvc.Recover(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("countdowns", restored).Msg("countdowns restored")

	go sched.Run(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Bookings: bookingSvc,
		Rentals:  rentalSvc,
		Profiles: profileSvc,
		Members:  members,
		Dedup:    dedup,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Stream:    hub.Serve,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	return listen(ctx, e, cfg, log)
}

type server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// listen serves until ctx is cancelled, then shuts the server down gracefully.
func listen(ctx context.Context, srv server, cfg *config.Config, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
