package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	httpapi "github.com/i474232898/weatherbeats/internal/api/http"
	"github.com/i474232898/weatherbeats/internal/chart"
	"github.com/i474232898/weatherbeats/internal/common"
	"github.com/i474232898/weatherbeats/internal/config"
	"github.com/i474232898/weatherbeats/internal/scheduler"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP server",
		Action: serve,
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Write the mood distribution chart to a PNG file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file path",
				Value:   "mood_chart.png",
			},
		},
		Action: writeChart,
	}
}

func moodCommand() *cli.Command {
	return &cli.Command{
		Name:  "mood",
		Usage: "Print the weather moods of a city as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "location",
				Aliases:  []string{"l"},
				Usage:    "City name",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "stored",
				Usage: "Use the moods stored for the city instead of live weather",
			},
		},
		Action: printMood,
	}
}

// setup loads the configuration and builds the logger shared by every command.
func setup(cmd *cli.Command) (*config.AppConfig, *log.Logger, error) {
	cfg, err := config.LoadFrom(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, common.NewLogger(os.Stderr, cfg.LogLevel), nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	comps, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	// The chart is rendered once; restarts pick up new data.
	moodChart, err := chart.Build(ctx, comps.store)
	if err != nil {
		if !errors.Is(err, chart.ErrNoData) {
			return fmt.Errorf("failed to build mood chart: %w", err)
		}
		logger.Warn("no songs in database; serving an empty mood chart")
	}

	sched := scheduler.New(comps.store, cfg.HealthcheckInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	if cfg.NgrokAuthToken != "" {
		logger.Info("NGROK_AUTH_TOKEN is set; run the tunnel separately")
	}

	app := fiber.New(fiber.Config{
		AppName:               "weatherbeats",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          3 * cfg.HTTPTimeout,
		ErrorHandler:          httpapi.NewErrorHandler(logger),
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, comps.service, moodChart, logger)

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "err", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
	logger.Info("stopped")
	return nil
}

func writeChart(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	img, err := chart.Build(ctx, st)
	if err != nil {
		return err
	}
	png, err := img.Bytes()
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	logger.Info("wrote mood chart", "path", out, "bytes", len(png))
	return nil
}

func printMood(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	comps, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	city := cmd.String("location")

	var result any
	if cmd.Bool("stored") {
		result, err = comps.service.MoodForCity(ctx, city)
	} else {
		result, err = comps.service.WeatherMood(ctx, city)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
