package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
)

// RequestService owns the two admin approval queues: worker assignment
// requests and worker signup (role upgrade) requests.
type RequestService struct {
	requests   repository.RequestRepository
	grievances repository.GrievanceRepository
	users      repository.UserRepository
	bus        events.Publisher
}

func NewRequestService(r repository.RequestRepository, g repository.GrievanceRepository, u repository.UserRepository, bus events.Publisher) *RequestService {
	return &RequestService{requests: r, grievances: g, users: u, bus: bus}
}

// -----------------------------------------------------------------------------
// Worker assignment requests
// -----------------------------------------------------------------------------

// RequestAssignment files a worker's request to take a grievance. Only
// Submitted (still unassigned) grievances qualify.
func (s *RequestService) RequestAssignment(ctx context.Context, workerID, grievanceID string) (*models.WorkerRequest, error) {
	if strings.TrimSpace(grievanceID) == "" {
		return nil, fmt.Errorf("%w: grievance id is required", ErrInvalid)
	}
	g, err := s.grievances.Get(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if g.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: grievance is not open for assignment", repository.ErrConflict)
	}

	wr := &models.WorkerRequest{GrievanceID: grievanceID, WorkerID: workerID}
	if err := s.requests.CreateWorkerRequest(ctx, wr); err != nil {
		return nil, err
	}
	s.bus.Publish(events.TopicWorkerRequests)
	return wr, nil
}

func (s *RequestService) ListWorkerRequests(ctx context.Context, status, workerID string) ([]models.WorkerRequest, error) {
	if status == "" {
		status = models.RequestPending
	}
	return s.requests.ListWorkerRequests(ctx, status, workerID)
}

// ApproveWorkerRequest resolves a pending request and runs the assignment
// transition in the same transaction. A request for a grievance someone
// already took comes back as a conflict, untouched.
func (s *RequestService) ApproveWorkerRequest(ctx context.Context, adminID, requestID string) (*models.WorkerRequest, error) {
	wr, err := s.requests.ApproveWorkerRequest(ctx, requestID, adminID, models.RemarkAssigned)
	if err != nil {
		return nil, err
	}

	g, err := s.grievances.Get(ctx, wr.GrievanceID)
	if err == nil && g != nil {
		s.bus.Publish(
			events.TopicWorkerRequests,
			events.TopicUnassigned,
			events.TopicUserGrievances(g.UserID),
			events.TopicWorkerGrievances(wr.WorkerID),
			events.TopicTimeline(g.ID),
		)
	}
	return wr, nil
}

func (s *RequestService) RejectWorkerRequest(ctx context.Context, adminID, requestID string) (*models.WorkerRequest, error) {
	wr, err := s.requests.RejectWorkerRequest(ctx, requestID, adminID)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.TopicWorkerRequests)
	return wr, nil
}

// -----------------------------------------------------------------------------
// Worker signup requests
// -----------------------------------------------------------------------------

// RequestSignup files a citizen's request for the worker role and parks
// them as worker_pending until an admin decides.
func (s *RequestService) RequestSignup(ctx context.Context, userID, department, city string) (*models.WorkerSignupRequest, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	switch u.Role {
	case models.RoleUser:
		// eligible
	case models.RoleWorkerPending:
		return nil, fmt.Errorf("%w: signup request already pending", repository.ErrConflict)
	default:
		return nil, fmt.Errorf("%w: only citizens can request the worker role", ErrInvalid)
	}

	sr := &models.WorkerSignupRequest{
		UserID:     userID,
		Name:       u.Name,
		Department: strings.TrimSpace(department),
		City:       strings.TrimSpace(city),
	}
	if err := s.requests.CreateSignupRequest(ctx, sr); err != nil {
		return nil, err
	}
	s.bus.Publish(events.TopicSignupRequests)
	return sr, nil
}

func (s *RequestService) ListSignupRequests(ctx context.Context, status string) ([]models.WorkerSignupRequest, error) {
	if status == "" {
		status = models.RequestPending
	}
	return s.requests.ListSignupRequests(ctx, status)
}

// DecideSignup approves (role → worker) or rejects (role → user) a pending
// signup request.
func (s *RequestService) DecideSignup(ctx context.Context, adminID, requestID string, approve bool) (*models.WorkerSignupRequest, error) {
	sr, err := s.requests.DecideSignupRequest(ctx, requestID, adminID, approve)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.TopicSignupRequests)
	return sr, nil
}
