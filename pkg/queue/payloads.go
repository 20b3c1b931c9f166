package queue

import "github.com/hireflow/hireflow/pkg/models"

// WorkflowActionPayload is the payload of a workflow-queue job: one action
// from a stage definition, to be dispatched to its processor.
type WorkflowActionPayload struct {
	ActionType models.ActionType    `json:"action_type" validate:"required"`
	Trigger    models.ActionTrigger `json:"trigger,omitempty"`
	Config     map[string]any       `json:"config,omitempty"`
}

// EmailPayload is the payload of an email-queue job.
type EmailPayload struct {
	TemplateName         string             `json:"template_name"   validate:"required"`
	RecipientEmail       string             `json:"recipient_email" validate:"required,email"`
	RecipientName        string             `json:"recipient_name,omitempty"`
	Variables            map[string]any     `json:"variables,omitempty"`
	Priority             models.JobPriority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	UseAIPersonalization bool               `json:"use_ai_personalization,omitempty"`
}

// SchedulePayload is the payload of a schedule-queue job.
type SchedulePayload struct {
	ScheduleType models.ScheduleType `json:"schedule_type" validate:"required,oneof=interview assessment reminder follow_up"`
	Title        string              `json:"title,omitempty"`
	StartTime    string              `json:"start_time,omitempty"`
	EndTime      string              `json:"end_time,omitempty"`
	Attendees    []string            `json:"attendees,omitempty"`
	Variables    map[string]any      `json:"variables,omitempty"`
}

// NotificationPayload is the payload of a notification-queue job.
type NotificationPayload struct {
	NotificationType models.NotificationType    `json:"notification_type" validate:"required"`
	Channel          models.NotificationChannel `json:"channel,omitempty" validate:"omitempty,oneof=email sms push"`
	RecipientEmail   string                     `json:"recipient_email,omitempty" validate:"omitempty,email"`
	RecipientName    string                     `json:"recipient_name,omitempty"`
	Variables        map[string]any             `json:"variables,omitempty"`
}
