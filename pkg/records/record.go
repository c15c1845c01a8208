package records

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle status of a record.
type Status string

const (
	StatusSetupCompleted  Status = "SETUP_COMPLETED"
	StatusCompleted       Status = "COMPLETED"
	StatusErrorFinalizing Status = "ERROR_FINALIZING"
)

// JobLevel is the seniority the candidate is interviewing for.
type JobLevel string

const (
	JobLevelEntry  JobLevel = "ENTRY_LEVEL"
	JobLevelMid    JobLevel = "MID_LEVEL"
	JobLevelSenior JobLevel = "SENIOR_LEVEL"
	JobLevelLead   JobLevel = "LEAD"
)

// JobLevels lists the accepted job levels.
var JobLevels = []JobLevel{JobLevelEntry, JobLevelMid, JobLevelSenior, JobLevelLead}

// ParseJobLevel accepts a level case-insensitively, with or without the
// _LEVEL suffix ("senior", "SENIOR_LEVEL").
func ParseJobLevel(s string) (JobLevel, error) {
	if s == "" {
		return JobLevelEntry, nil
	}
	u := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, l := range JobLevels {
		if u == string(l) || u+"_LEVEL" == string(l) {
			return l, nil
		}
	}
	return "", fmt.Errorf("records: unknown job level %q", s)
}

// Type is the kind of interview.
type Type string

const (
	TypeBehavioral Type = "BEHAVIORAL"
	TypeTechnical  Type = "TECHNICAL"
	TypeMixed      Type = "MIXED"
)

// Types lists the accepted interview types.
var Types = []Type{TypeBehavioral, TypeTechnical, TypeMixed}

// ParseType accepts an interview type case-insensitively.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeMixed, nil
	}
	u := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range Types {
		if u == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("records: unknown interview type %q", s)
}

// Interview is one stored interview.
type Interview struct {
	ID         string    `json:"id" yaml:"id" msgpack:"id"`
	UserName   string    `json:"user_name" yaml:"user_name" msgpack:"user_name"`
	TargetRole string    `json:"target_role" yaml:"target_role" msgpack:"target_role"`
	JobLevel   JobLevel  `json:"job_level" yaml:"job_level" msgpack:"job_level"`
	Type       Type      `json:"type" yaml:"type" msgpack:"type"`
	ResumeText string    `json:"resume_text,omitempty" yaml:"resume_text,omitempty" msgpack:"resume_text,omitempty"`
	Status     Status    `json:"status" yaml:"status" msgpack:"status"`
	Feedback   string    `json:"feedback,omitempty" yaml:"feedback,omitempty" msgpack:"feedback,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at" msgpack:"updated_at"`
}
