package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hireflow/hireflow/pkg/queue"
	queuememory "github.com/hireflow/hireflow/pkg/queue/memory"
	queueredis "github.com/hireflow/hireflow/pkg/queue/redis"
)

// NewQueueStore builds the queue store from the queue URL scheme: redis://
// for the Redis-backed store, memory:// (or empty) for the in-memory store.
func NewQueueStore(ctx context.Context, logger *slog.Logger, queueURL string) (queue.Store, error) {
	if queueURL == "" || queueURL == "memory" || strings.HasPrefix(queueURL, "memory://") {
		return queuememory.NewStore(), nil
	}

	parsed, err := url.Parse(queueURL)
	if err != nil {
		return nil, fmt.Errorf("invalid queue URL: %w", err)
	}

	switch parsed.Scheme {
	case "redis":
		connection := map[string]string{"addr": parsed.Host}

		if password, ok := parsed.User.Password(); ok {
			connection["password"] = password
		}

		if db := strings.TrimPrefix(parsed.Path, "/"); db != "" {
			connection["db"] = db
		}

		return queueredis.NewStore(ctx, logger, connection)
	default:
		return nil, fmt.Errorf("unsupported queue provider: %s", parsed.Scheme)
	}
}
