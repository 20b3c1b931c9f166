package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hireflow/hireflow/pkg/clients"
)

// MockEmailService is a mock implementation of clients.EmailService.
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPersonalizedEmail(ctx context.Context, templateName, recipientEmail, recipientName string, variables map[string]any, opts clients.SendOptions) (bool, error) {
	args := m.Called(ctx, templateName, recipientEmail, recipientName, variables, opts)

	return args.Bool(0), args.Error(1)
}

// MockCalendarService is a mock implementation of clients.CalendarService.
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) CreateEvent(ctx context.Context, event clients.CalendarEvent) (string, error) {
	args := m.Called(ctx, event)

	return args.String(0), args.Error(1)
}

func (m *MockCalendarService) UpdateEvent(ctx context.Context, eventID string, patch clients.CalendarEvent) (bool, error) {
	args := m.Called(ctx, eventID, patch)

	return args.Bool(0), args.Error(1)
}

func (m *MockCalendarService) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)

	return args.Bool(0), args.Error(1)
}

func (m *MockCalendarService) CheckConflicts(ctx context.Context, start, end time.Time, attendees []string) (clients.ConflictCheck, error) {
	args := m.Called(ctx, start, end, attendees)

	return args.Get(0).(clients.ConflictCheck), args.Error(1)
}

// MockAIService is a mock implementation of clients.AIService.
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) MatchCandidateToJob(ctx context.Context, candidateID, jobID string) (clients.MatchResult, error) {
	args := m.Called(ctx, candidateID, jobID)

	return args.Get(0).(clients.MatchResult), args.Error(1)
}

func (m *MockAIService) ParseResume(ctx context.Context, rawResume []byte) (map[string]any, error) {
	args := m.Called(ctx, rawResume)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}
