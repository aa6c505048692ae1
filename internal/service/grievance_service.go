package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
)

var (
	ErrInvalid   = errors.New("invalid input")
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

const maxImageBytes = 10 * 1024 * 1024 // inline base64 JPEG, no blob store

// GrievanceService owns the grievance lifecycle: creation, assignment and
// the worker status progression. Every successful mutation notifies the
// event bus so live list views can refresh.
type GrievanceService struct {
	grievances repository.GrievanceRepository
	users      repository.UserRepository
	bus        events.Publisher
}

func NewGrievanceService(g repository.GrievanceRepository, u repository.UserRepository, bus events.Publisher) *GrievanceService {
	return &GrievanceService{grievances: g, users: u, bus: bus}
}

type CreateGrievanceInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	ImageBase64 string `json:"imageBase64"`
}

// Create registers a new grievance for the citizen. Validation happens
// before any write; the grievance row and its "Complaint registered" log
// are committed together.
func (s *GrievanceService) Create(ctx context.Context, userID string, in CreateGrievanceInput) (*models.Grievance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	for name, v := range map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"priority":    in.Priority,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalid, name)
		}
	}
	if img := in.ImageBase64; img != "" {
		if len(img) > maxImageBytes {
			return nil, fmt.Errorf("%w: image too large", ErrInvalid)
		}
		if !strings.HasPrefix(img, "data:image/") {
			return nil, fmt.Errorf("%w: invalid image format", ErrInvalid)
		}
	}

	g := &models.Grievance{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Priority:    strings.TrimSpace(in.Priority),
		ImageBase64: in.ImageBase64,
		UserID:      userID,
	}
	if err := s.grievances.Create(ctx, g, models.RemarkRegistered); err != nil {
		return nil, err
	}

	s.bus.Publish(
		events.TopicUserGrievances(userID),
		events.TopicUnassigned,
		events.TopicTimeline(g.ID),
	)
	return g, nil
}

// Assign moves a Submitted grievance to Assigned and records the worker.
// Both ids must be present (manual assignment fails loudly on blanks) and
// the target must actually hold the worker role.
func (s *GrievanceService) Assign(ctx context.Context, adminID, grievanceID, workerID, remarks string) (*models.Grievance, error) {
	if strings.TrimSpace(grievanceID) == "" || strings.TrimSpace(workerID) == "" {
		return nil, fmt.Errorf("%w: grievance id and worker id are required", ErrInvalid)
	}

	w, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil || w.Role != models.RoleWorker {
		return nil, fmt.Errorf("%w: not a registered worker", ErrInvalid)
	}

	g, err := s.grievances.Get(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}

	if strings.TrimSpace(remarks) == "" {
		remarks = models.RemarkAssigned
	}
	if err := s.grievances.Transition(ctx, g.ID, models.StatusSubmitted, models.StatusAssigned, adminID, workerID, remarks); err != nil {
		return nil, err
	}

	s.bus.Publish(
		events.TopicUserGrievances(g.UserID),
		events.TopicWorkerGrievances(workerID),
		events.TopicUnassigned,
		events.TopicTimeline(g.ID),
	)
	return s.grievances.Get(ctx, g.ID)
}

// Transition applies one step of the status machine on behalf of an actor.
// The transition table decides what the role may do from the grievance's
// current status; anything else is a conflict, and the repository's CAS
// guard catches races that slip past the read.
func (s *GrievanceService) Transition(ctx context.Context, actorID, actorRole, grievanceID, to, remarks string) (*models.Grievance, error) {
	if !models.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, to)
	}
	// Assignment always carries a worker; it only happens through Assign or
	// an approved worker request.
	if to == models.StatusAssigned {
		return nil, fmt.Errorf("%w: use the assign operation to set a worker", ErrInvalid)
	}

	g, err := s.grievances.Get(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}

	// Workers may only drive grievances assigned to them.
	if actorRole == models.RoleWorker && g.AssignedWorkerID != actorID {
		return nil, ErrForbidden
	}
	if !models.CanTransition(actorRole, g.Status, to) {
		return nil, fmt.Errorf("%w: %s → %s not allowed for %s", repository.ErrConflict, g.Status, to, actorRole)
	}

	if strings.TrimSpace(remarks) == "" {
		remarks = models.DefaultRemarks(to)
	}
	if err := s.grievances.Transition(ctx, g.ID, g.Status, to, actorID, "", remarks); err != nil {
		return nil, err
	}

	topics := []string{
		events.TopicUserGrievances(g.UserID),
		events.TopicTimeline(g.ID),
	}
	if g.AssignedWorkerID != "" {
		topics = append(topics, events.TopicWorkerGrievances(g.AssignedWorkerID))
	}
	if g.Status == models.StatusSubmitted {
		// Leaving the unassigned pool (rejection path).
		topics = append(topics, events.TopicUnassigned)
	}
	s.bus.Publish(topics...)

	return s.grievances.Get(ctx, g.ID)
}
