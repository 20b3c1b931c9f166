package models

import "time"

// Candidate is the read model of a person progressing through pipelines.
type Candidate struct {
	ID        string         `json:"id"`
	Email     string         `json:"email" validate:"required,email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Profile   map[string]any `json:"profile,omitempty"`
}

// FullName returns the candidate display name.
func (c *Candidate) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}

	if c.LastName == "" {
		return c.FirstName
	}

	return c.FirstName + " " + c.LastName
}

// JobPosting is the read model of an open position.
type JobPosting struct {
	ID                  string   `json:"id"`
	CompanyID           string   `json:"company_id"`
	Title               string   `json:"title"`
	Location            string   `json:"location,omitempty"`
	SalaryMin           float64  `json:"salary_min,omitempty"`
	SalaryMax           float64  `json:"salary_max,omitempty"`
	Currency            string   `json:"currency,omitempty"`
	Benefits            []string `json:"benefits,omitempty"`
	HiringManagerEmail  string   `json:"hiring_manager_email,omitempty"`
	HiringManagerName   string   `json:"hiring_manager_name,omitempty"`
}

// Company is the read model of a hiring organization.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InterviewStatus is the lifecycle state of an interview record.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview is created by the schedule_interview processor. The interview
// record is the source of truth even when calendar booking fails.
type Interview struct {
	ID              string          `json:"id"`
	CandidateID     string          `json:"candidate_id"`
	JobID           string          `json:"job_id"`
	CompanyID       string          `json:"company_id"`
	StageID         string          `json:"stage_id"`
	Title           string          `json:"title"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	Duration        time.Duration   `json:"duration"`
	Participants    []string        `json:"participants,omitempty"`
	Location        string          `json:"location,omitempty"`
	CalendarEventID string          `json:"calendar_event_id,omitempty"`
	Status          InterviewStatus `json:"status"`
}

// AssessmentStatus is the lifecycle state of an assessment record.
type AssessmentStatus string

const (
	AssessmentAssigned  AssessmentStatus = "assigned"
	AssessmentSubmitted AssessmentStatus = "submitted"
	AssessmentExpired   AssessmentStatus = "expired"
)

// Assessment is created by the assign_assessment processor and scored by the
// outer application; verify_assessment only reads it.
type Assessment struct {
	ID           string           `json:"id"`
	CandidateID  string           `json:"candidate_id"`
	JobID        string           `json:"job_id"`
	StageID      string           `json:"stage_id"`
	Kind         string           `json:"kind,omitempty"`
	AssignedAt   time.Time        `json:"assigned_at"`
	Deadline     time.Time        `json:"deadline"`
	Score        *float64         `json:"score,omitempty"`
	PassingScore float64          `json:"passing_score"`
	Status       AssessmentStatus `json:"status"`
}

// Approval is a manual sign-off written by the outer application and read by
// the manual_approval requirement predicate.
type Approval struct {
	CandidateID string     `json:"candidate_id"`
	JobID       string     `json:"job_id"`
	StageID     string     `json:"stage_id"`
	Granted     bool       `json:"granted"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// ScheduleType selects the handler inside the schedule sub-processor.
type ScheduleType string

const (
	ScheduleInterview  ScheduleType = "interview"
	ScheduleAssessment ScheduleType = "assessment"
	ScheduleReminder   ScheduleType = "reminder"
	ScheduleFollowUp   ScheduleType = "follow_up"
)

// NotificationType selects the handler inside the notification sub-processor.
type NotificationType string

const (
	NotifyStageChange       NotificationType = "stage_change"
	NotifyCandidateAdvanced NotificationType = "candidate_advanced"
	NotifyCandidateRejected NotificationType = "candidate_rejected"
	NotifyWorkflowCompleted NotificationType = "workflow_completed"
	NotifyAssessmentPassed  NotificationType = "assessment_passed"
	NotifyInterviewBooked   NotificationType = "interview_booked"
)

// NotificationChannel is the delivery medium of a notification. Only email is
// implemented; sms and push are declared extension points.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
)
