package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/bcdservices/dashboard-api/internal/config"
	"github.com/bcdservices/dashboard-api/internal/repository/backend"
	"github.com/bcdservices/dashboard-api/internal/service/scheduler"
	"github.com/bcdservices/dashboard-api/pkg/logger"
	"github.com/bcdservices/dashboard-api/pkg/messaging"
	"github.com/bcdservices/dashboard-api/pkg/messaging/redis"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" env:"DASHBOARD_CONFIG"`
	Verbose bool   `short:"v" help:"Log backend calls to stderr."`

	Show      ShowCmd      `cmd:"" default:"1" help:"Draw the week grid."`
	Summary   SummaryCmd   `cmd:"" help:"Show item totals and revenue for the week."`
	BlockDay  BlockDayCmd  `cmd:"" help:"Toggle the block on a whole day."`
	BlockSlot BlockSlotCmd `cmd:"" help:"Toggle the block on one half-hour slot."`
	Watch     WatchCmd     `cmd:"" help:"Follow schedule events from the broker."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("weekctl"),
		kong.Description("Operator view of the delivery schedule"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, cleanup, err := newContext(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newContext(ctx context.Context, cfg *config.Config) (*Context, func(), error) {
	level := logger.WarnLevel
	if CLI.Verbose {
		level = logger.DebugLevel
	}
	log := logger.NewLogger(&logger.Config{Level: level, Output: os.Stderr})

	loc, err := cfg.Schedule.LoadLocation()
	if err != nil {
		return nil, nil, err
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:             cfg.Backend.URL,
		Token:               cfg.Backend.Token,
		Timeout:             cfg.Backend.Timeout,
		RatePerSecond:       cfg.Backend.RatePerSecond,
		Burst:               cfg.Backend.Burst,
		ConsecutiveFailures: cfg.Backend.Breaker.ConsecutiveFailures,
		OpenTimeout:         cfg.Backend.Breaker.OpenTimeout,
		Interval:            cfg.Backend.Breaker.Interval,
	}, backend.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}

	appCtx := &Context{
		Ctx:     ctx,
		Out:     os.Stdout,
		Channel: cfg.Redis.Channel,
	}
	cleanup := func() {}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.Enabled() {
		broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), log.Zerolog())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		appCtx.Broker = broker
		publisher = messaging.NewChannelPublisher(broker, cfg.Redis.Channel)
		cleanup = func() { _ = broker.Close() }
	}

	appCtx.Scheduler = scheduler.NewService(
		backend.NewOrderRepository(client),
		backend.NewBlockedDateRepository(client),
		loc,
		scheduler.WithPublisher(publisher),
		scheduler.WithLogger(log),
	)
	return appCtx, cleanup, nil
}
