package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hireflow/hireflow/pkg/clients"
	"github.com/hireflow/hireflow/pkg/cmd"
	"github.com/hireflow/hireflow/pkg/log"
	"github.com/hireflow/hireflow/pkg/queue"
	"github.com/hireflow/hireflow/pkg/web"
)

func main() {
	command := &cli.Command{
		Name:                  "hireflow-ops",
		EnableShellCompletion: true,
		Usage:                 "Serve the operational HTTP surface: health, queue monitoring and control",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres://, file://, memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "queue-url",
				Usage:   "Queue store URL (redis://, memory://)",
				Value:   "memory://",
				Sources: cli.EnvVars("QUEUE_URL"),
			},
			&cli.StringFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Value:   "3000",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("hireflow-ops")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			queueStore, err := cmd.NewQueueStore(ctx, logger, command.String("queue-url"))
			if err != nil {
				return err
			}

			// The ops surface only inspects and controls queues; it never
			// starts worker pools.
			dispatcher := queue.NewDispatcher(queueStore, logger, noop.NewTracerProvider().Tracer("hireflow-ops"))
			registry := cmd.NewRegistry(logger, persistence, clients.NewLoggingCalendarService(logger), dispatcher)

			app := fiber.New()
			web.NewAPIHandlers(persistence, dispatcher, registry).Register(app)

			errChan := make(chan error, 1)

			go func() {
				errChan <- app.Listen(":" + command.String("port"))
			}()

			logger.InfoContext(ctx, "Hireflow ops API listening", "port", command.String("port"))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errChan:
				return err
			case <-sigChan:
				logger.InfoContext(ctx, "Shutting down ops API...")

				return app.ShutdownWithContext(ctx)
			}
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
