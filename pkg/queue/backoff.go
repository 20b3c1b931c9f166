package queue

import (
	"time"

	"github.com/hireflow/hireflow/pkg/models"
)

// BackoffDelay computes the wait before retry number attempt (1-based, the
// attempt that just failed). Fixed policies wait the base delay every time;
// exponential policies double it per prior attempt: delay * 2^(attempt-1).
func BackoffDelay(policy models.BackoffPolicy, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	switch policy.Type {
	case models.BackoffExponential:
		return policy.Delay * time.Duration(1<<(attempt-1))
	case models.BackoffFixed:
		return policy.Delay
	default:
		return policy.Delay
	}
}
