package records

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jagtap-suraj/sensai/pkg/feedback"
	"github.com/jagtap-suraj/sensai/pkg/interview"
)

// DefaultUserName is used when CreateRequest.UserName is empty.
const DefaultUserName = "Candidate"

var (
	_ interview.SetupFetcher    = (*Service)(nil)
	_ interview.FeedbackService = (*Service)(nil)
)

// CreateRequest describes a new interview.
type CreateRequest struct {
	UserName   string
	TargetRole string
	JobLevel   JobLevel
	Type       Type
	ResumeText string
}

// Service manages interview records.
type Service struct {
	store     Store
	generator feedback.Generator
	now       func() time.Time

	mu sync.Mutex
}

// NewService returns a Service. generator may be nil when the caller never
// finalizes interviews.
func NewService(store Store, generator feedback.Generator) *Service {
	return &Service{store: store, generator: generator, now: time.Now}
}

// Create stores a new interview in StatusSetupCompleted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Interview, error) {
	role := strings.TrimSpace(req.TargetRole)
	if role == "" {
		return nil, errors.New("records: target role is required")
	}
	now := s.now().UTC()
	rec := &Interview{
		ID:         uuid.NewString(),
		UserName:   cmp.Or(strings.TrimSpace(req.UserName), DefaultUserName),
		TargetRole: role,
		JobLevel:   cmp.Or(req.JobLevel, JobLevelEntry),
		Type:       cmp.Or(req.Type, TypeMixed),
		ResumeText: strings.TrimSpace(req.ResumeText),
		Status:     StatusSetupCompleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	slog.Info("records: interview created", "id", rec.ID, "role", rec.TargetRole)
	return rec, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (*Interview, error) {
	return s.store.Get(ctx, id)
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns all records, most recently updated first.
func (s *Service) List(ctx context.Context) ([]*Interview, error) {
	var out []*Interview
	for rec, err := range s.store.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *Interview) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// FetchSetup implements interview.SetupFetcher. Only interviews that have
// not started yet are served.
func (s *Service) FetchSetup(ctx context.Context, id string) (*interview.Setup, error) {
	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", interview.ErrSetupNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusSetupCompleted {
		return nil, fmt.Errorf("%w: %s is %s", interview.ErrSetupNotFound, id, rec.Status)
	}
	return &interview.Setup{
		ID:                rec.ID,
		UserName:          rec.UserName,
		Role:              rec.TargetRole,
		JobLevel:          string(rec.JobLevel),
		InterviewType:     string(rec.Type),
		ResumeExcerpt:     ResumeExcerpt(rec.ResumeText),
		SystemInstruction: SystemInstruction(rec),
	}, nil
}

// GenerateFeedback implements interview.FeedbackService. A completed record
// returns its stored feedback without calling the generator.
func (s *Service) GenerateFeedback(ctx context.Context, req interview.FeedbackRequest) (*interview.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Get(ctx, req.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("records: finalize %s: %w", req.InterviewID, err)
	}
	if rec.Status == StatusCompleted {
		slog.Warn("records: interview already completed, skipping feedback", "id", rec.ID)
		return &interview.Feedback{ID: rec.ID, Text: rec.Feedback}, nil
	}
	if s.generator == nil {
		return nil, errors.New("records: no feedback generator configured")
	}

	report, genErr := s.generator.Generate(ctx, feedback.Request{
		InterviewID:   rec.ID,
		UserName:      rec.UserName,
		Role:          rec.TargetRole,
		JobLevel:      string(rec.JobLevel),
		InterviewType: string(rec.Type),
		Transcript:    req.Transcript,
	})
	rec.UpdatedAt = s.now().UTC()
	if genErr != nil {
		rec.Status = StatusErrorFinalizing
		if err := s.store.Put(context.WithoutCancel(ctx), rec); err != nil {
			slog.Error("records: mark error finalizing", "id", rec.ID, "error", err)
		}
		return nil, genErr
	}
	rec.Status = StatusCompleted
	rec.Feedback = report.Markdown()
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return &interview.Feedback{ID: rec.ID, Text: rec.Feedback}, nil
}
