package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hireflow/hireflow/pkg/cmd"
	"github.com/hireflow/hireflow/pkg/log"
	"github.com/hireflow/hireflow/pkg/otelhelper"
	"github.com/hireflow/hireflow/pkg/queue"
)

func main() {
	command := &cli.Command{
		Name:                  "hireflow-worker",
		EnableShellCompletion: true,
		Usage:                 "Run the workflow engine: event handlers, job queues, and processors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
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
				Name:    "relay-provider",
				Usage:   "Event relay transport (kafka, gochannel); empty disables the relay",
				Value:   "",
				Sources: cli.EnvVars("RELAY_PROVIDER"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP",
				Value:   false,
				Sources: cli.EnvVars("TRACING_ENABLED"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("hireflow-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Hireflow worker")

			var tracer trace.Tracer = noop.NewTracerProvider().Tracer("hireflow-worker")

			if command.Bool("tracing") {
				otelTracer, err := otelhelper.NewTracer(ctx, "hireflow-worker")
				if err != nil {
					return err
				}

				tracer = otelTracer
			}

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

			dispatcher := queue.NewDispatcher(queueStore, logger, tracer)

			worker := NewWorkerManager(workerID, persistence, dispatcher, logger)

			if provider := command.String("relay-provider"); provider != "" {
				publisher, err := cmd.NewRelayPublisher(provider, logger)
				if err != nil {
					return err
				}

				worker.WithRelay(publisher)
			}

			return worker.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
