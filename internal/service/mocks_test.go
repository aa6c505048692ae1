package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
)

// In-memory repo fakes mirroring the transactional behavior of the postgres
// implementations: create-with-log and transitions are all-or-nothing, and
// the CAS guard rejects stale predecessors.

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// -----------------------------------------------------------------------------

type fakeGrievanceRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*models.Grievance
	logs  []models.StatusLog
	clock *fakeClock

	failCreate bool // simulate a backend failure mid-create
}

func newFakeGrievanceRepo(clock *fakeClock) *fakeGrievanceRepo {
	return &fakeGrievanceRepo{items: map[string]*models.Grievance{}, clock: clock}
}

func (f *fakeGrievanceRepo) Create(_ context.Context, g *models.Grievance, remarks string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("backend unavailable")
	}
	f.seq++
	g.ID = fmt.Sprintf("g-%d", f.seq)
	g.Status = models.StatusSubmitted
	g.CreatedAt = f.clock.tick()
	g.UpdatedAt = g.CreatedAt
	cp := *g
	f.items[g.ID] = &cp
	f.appendLog(g.ID, models.StatusSubmitted, g.UserID, remarks)
	return nil
}

func (f *fakeGrievanceRepo) Get(_ context.Context, id string) (*models.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGrievanceRepo) List(_ context.Context, flt repository.GrievanceFilter) ([]models.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Grievance
	for _, g := range f.items {
		if flt.UserID != "" && g.UserID != flt.UserID {
			continue
		}
		if flt.WorkerID != "" && g.AssignedWorkerID != flt.WorkerID {
			continue
		}
		if flt.Unassigned && g.AssignedWorkerID != "" {
			continue
		}
		if flt.Status != "" && g.Status != flt.Status {
			continue
		}
		if flt.Q != "" && !strings.Contains(g.Title, flt.Q) && !strings.Contains(g.Description, flt.Q) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeGrievanceRepo) Count(ctx context.Context, flt repository.GrievanceFilter) (int, error) {
	items, err := f.List(ctx, flt)
	return len(items), err
}

func (f *fakeGrievanceRepo) Transition(_ context.Context, id, from, to, actorID, workerID, remarks string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.items[id]
	if !ok || g.Status != from {
		return repository.ErrConflict
	}
	g.Status = to
	if to == models.StatusAssigned {
		g.AssignedWorkerID = workerID
	} else if !models.RequiresWorker(to) {
		g.AssignedWorkerID = ""
	}
	g.UpdatedAt = f.clock.tick()
	f.appendLog(id, to, actorID, remarks)
	return nil
}

func (f *fakeGrievanceRepo) Logs(_ context.Context, grievanceID string) ([]models.StatusLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StatusLog
	for _, l := range f.logs {
		if l.GrievanceID == grievanceID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeGrievanceRepo) CountByStatus(_ context.Context, statuses []string, inclusive bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in := map[string]bool{}
	for _, s := range statuses {
		in[s] = true
	}
	n := 0
	for _, g := range f.items {
		if in[g.Status] == inclusive {
			n++
		}
	}
	return n, nil
}

func (f *fakeGrievanceRepo) CountCompletedSince(_ context.Context, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, g := range f.items {
		if g.Status == models.StatusCompleted && !g.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeGrievanceRepo) CountOpenByPriorities(_ context.Context, prios []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, p := range prios {
		want[p] = true
	}
	n := 0
	for _, g := range f.items {
		switch g.Status {
		case models.StatusCompleted, models.StatusRejected, models.StatusClosed:
			continue
		}
		if want[g.Priority] {
			n++
		}
	}
	return n, nil
}

// appendLog requires f.mu held.
func (f *fakeGrievanceRepo) appendLog(gid, status, by, remarks string) {
	f.logs = append(f.logs, models.StatusLog{
		ID:          fmt.Sprintf("log-%d", len(f.logs)+1),
		GrievanceID: gid,
		Status:      status,
		UpdatedBy:   by,
		Remarks:     remarks,
		CreatedAt:   f.clock.tick(),
	})
}

// -----------------------------------------------------------------------------

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*models.User
	byEm  map[string]string // email -> id
	pw    map[string]string // id -> hash
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[string]*models.User{}, byEm: map[string]string{}, pw: map[string]string{}}
}

func (f *fakeUserRepo) add(role, name string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u := &models.User{
		ID:    fmt.Sprintf("u-%d", f.seq),
		Email: fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		Name:  name,
		Role:  role,
	}
	f.items[u.ID] = u
	f.byEm[u.Email] = u.ID
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.byEm[u.Email]; dup {
		return nil, fmt.Errorf("duplicate email")
	}
	f.seq++
	cp := *u
	cp.ID = fmt.Sprintf("u-%d", f.seq)
	f.items[cp.ID] = &cp
	f.byEm[cp.Email] = cp.ID
	f.pw[cp.ID] = hash
	out := cp
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEm[email]
	if !ok {
		return nil, "", nil
	}
	cp := *f.items[id]
	return &cp, f.pw[id], nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(_ context.Context, q, role string, limit, offset int) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.items {
		if role != "" && u.Role != role {
			continue
		}
		if q != "" && !strings.Contains(u.Name, q) && !strings.Contains(u.Email, q) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id, role string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

// -----------------------------------------------------------------------------

type fakeRequestRepo struct {
	mu      sync.Mutex
	seq     int
	worker  map[string]*models.WorkerRequest
	signup  map[string]*models.WorkerSignupRequest
	users   *fakeUserRepo
	grv     *fakeGrievanceRepo
	clock   *fakeClock
}

func newFakeRequestRepo(users *fakeUserRepo, grv *fakeGrievanceRepo, clock *fakeClock) *fakeRequestRepo {
	return &fakeRequestRepo{
		worker: map[string]*models.WorkerRequest{},
		signup: map[string]*models.WorkerSignupRequest{},
		users:  users, grv: grv, clock: clock,
	}
}

func (f *fakeRequestRepo) CreateWorkerRequest(_ context.Context, r *models.WorkerRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = fmt.Sprintf("wr-%d", f.seq)
	r.Status = models.RequestPending
	r.RequestedAt = f.clock.tick()
	cp := *r
	f.worker[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetWorkerRequest(_ context.Context, id string) (*models.WorkerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.worker[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) ListWorkerRequests(_ context.Context, status, workerID string) ([]models.WorkerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkerRequest
	for _, r := range f.worker {
		if status != "" && r.Status != status {
			continue
		}
		if workerID != "" && r.WorkerID != workerID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequestRepo) ApproveWorkerRequest(ctx context.Context, id, adminID, remarks string) (*models.WorkerRequest, error) {
	f.mu.Lock()
	r, ok := f.worker[id]
	if !ok || r.Status != models.RequestPending {
		f.mu.Unlock()
		return nil, repository.ErrConflict
	}
	f.mu.Unlock()

	// Grievance transition first so a conflict leaves the request pending,
	// matching the rolled-back transaction.
	if err := f.grv.Transition(ctx, r.GrievanceID, models.StatusSubmitted, models.StatusAssigned, adminID, r.WorkerID, remarks); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.clock.tick()
	r.Status = models.RequestApproved
	r.DecidedBy = adminID
	r.DecidedAt = &now
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) RejectWorkerRequest(_ context.Context, id, adminID string) (*models.WorkerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.worker[id]
	if !ok || r.Status != models.RequestPending {
		return nil, repository.ErrConflict
	}
	now := f.clock.tick()
	r.Status = models.RequestRejected
	r.DecidedBy = adminID
	r.DecidedAt = &now
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) CreateSignupRequest(ctx context.Context, r *models.WorkerSignupRequest) error {
	f.mu.Lock()
	f.seq++
	r.ID = fmt.Sprintf("sr-%d", f.seq)
	r.Status = models.RequestPending
	r.RequestedAt = f.clock.tick()
	cp := *r
	f.signup[r.ID] = &cp
	f.mu.Unlock()

	_, err := f.users.UpdateRole(ctx, r.UserID, models.RoleWorkerPending)
	return err
}

func (f *fakeRequestRepo) GetSignupRequest(_ context.Context, id string) (*models.WorkerSignupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.signup[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) ListSignupRequests(_ context.Context, status string) ([]models.WorkerSignupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WorkerSignupRequest
	for _, r := range f.signup {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequestRepo) DecideSignupRequest(ctx context.Context, id, adminID string, approve bool) (*models.WorkerSignupRequest, error) {
	f.mu.Lock()
	r, ok := f.signup[id]
	if !ok || r.Status != models.RequestPending {
		f.mu.Unlock()
		return nil, repository.ErrConflict
	}
	now := f.clock.tick()
	r.DecidedBy = adminID
	r.DecidedAt = &now
	newRole := models.RoleUser
	if approve {
		r.Status = models.RequestApproved
		newRole = models.RoleWorker
	} else {
		r.Status = models.RequestRejected
	}
	cp := *r
	f.mu.Unlock()

	if _, err := f.users.UpdateRole(ctx, r.UserID, newRole); err != nil {
		return nil, err
	}
	return &cp, nil
}

// -----------------------------------------------------------------------------

type fakeBus struct {
	mu     sync.Mutex
	topics []string
}

func (b *fakeBus) Publish(topics ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topics...)
}

func (b *fakeBus) published(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.topics {
		if t == topic {
			return true
		}
	}
	return false
}
