package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hireflow/hireflow/pkg/models"
	"github.com/hireflow/hireflow/pkg/queue"
)

// MockEnqueuer is a mock implementation of queue.Enqueuer.
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) AddWorkflowActionJob(ctx context.Context, refs models.TargetRefs, payload queue.WorkflowActionPayload, triggeredBy string) (string, error) {
	args := m.Called(ctx, refs, payload, triggeredBy)

	return args.String(0), args.Error(1)
}

func (m *MockEnqueuer) AddEmailJob(ctx context.Context, refs models.TargetRefs, payload queue.EmailPayload) (string, error) {
	args := m.Called(ctx, refs, payload)

	return args.String(0), args.Error(1)
}

func (m *MockEnqueuer) AddScheduleJob(ctx context.Context, refs models.TargetRefs, payload queue.SchedulePayload) (string, error) {
	args := m.Called(ctx, refs, payload)

	return args.String(0), args.Error(1)
}

func (m *MockEnqueuer) AddNotificationJob(ctx context.Context, refs models.TargetRefs, payload queue.NotificationPayload) (string, error) {
	args := m.Called(ctx, refs, payload)

	return args.String(0), args.Error(1)
}
