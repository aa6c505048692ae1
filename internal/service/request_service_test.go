package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
	"github.com/AG-1laksh/JanPath-sub001/internal/service"
)

func TestWorkerAssignmentRequests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	g, err := e.grievances.Create(ctx, e.citizen.ID, validInput())
	require.NoError(t, err)

	wr, err := e.requests.RequestAssignment(ctx, e.worker.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, wr.Status)
	assert.True(t, e.bus.published(events.TopicWorkerRequests))

	got, err := e.requests.ApproveWorkerRequest(ctx, e.admin.ID, wr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)
	assert.Equal(t, e.admin.ID, got.DecidedBy)
	require.NotNil(t, got.DecidedAt)

	fresh, err := e.grv.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, fresh.Status)
	assert.Equal(t, e.worker.ID, fresh.AssignedWorkerID)

	// Second decision on the same request is a conflict.
	_, err = e.requests.ApproveWorkerRequest(ctx, e.admin.ID, wr.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestWorkerRequestOnTakenGrievance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	g, err := e.grievances.Create(ctx, e.citizen.ID, validInput())
	require.NoError(t, err)

	other := e.users.add(models.RoleWorker, "Deepa")
	wr1, err := e.requests.RequestAssignment(ctx, e.worker.ID, g.ID)
	require.NoError(t, err)
	wr2, err := e.requests.RequestAssignment(ctx, other.ID, g.ID)
	require.NoError(t, err)

	_, err = e.requests.ApproveWorkerRequest(ctx, e.admin.ID, wr1.ID)
	require.NoError(t, err)

	// The grievance left Submitted; the second approval fails and the
	// request stays pending.
	_, err = e.requests.ApproveWorkerRequest(ctx, e.admin.ID, wr2.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
	stale, err := e.reqs.GetWorkerRequest(ctx, wr2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stale.Status)

	// And new requests against it are refused outright.
	_, err = e.requests.RequestAssignment(ctx, other.ID, g.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestRejectWorkerRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	g, err := e.grievances.Create(ctx, e.citizen.ID, validInput())
	require.NoError(t, err)
	wr, err := e.requests.RequestAssignment(ctx, e.worker.ID, g.ID)
	require.NoError(t, err)

	got, err := e.requests.RejectWorkerRequest(ctx, e.admin.ID, wr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, got.Status)

	// The grievance is untouched and still assignable.
	fresh, err := e.grv.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, fresh.Status)
	assert.Empty(t, fresh.AssignedWorkerID)
}

func TestSignupFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sr, err := e.requests.RequestSignup(ctx, e.citizen.ID, "Sanitation", "Pune")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, sr.Status)
	assert.Equal(t, "Sanitation", sr.Department)
	assert.True(t, e.bus.published(events.TopicSignupRequests))

	// Filing the request parks the citizen as worker_pending.
	u, err := e.users.GetByID(ctx, e.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorkerPending, u.Role)

	// A pending requester cannot file again.
	_, err = e.requests.RequestSignup(ctx, e.citizen.ID, "Roads", "Pune")
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := e.requests.DecideSignup(ctx, e.admin.ID, sr.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, got.Status)

	u, err = e.users.GetByID(ctx, e.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, u.Role)
}

func TestSignupRejectedRestoresCitizen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sr, err := e.requests.RequestSignup(ctx, e.citizen.ID, "Sanitation", "Pune")
	require.NoError(t, err)

	got, err := e.requests.DecideSignup(ctx, e.admin.ID, sr.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, got.Status)

	u, err := e.users.GetByID(ctx, e.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	// Decisions are final.
	_, err = e.requests.DecideSignup(ctx, e.admin.ID, sr.ID, true)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestSignupEligibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Workers and admins have nothing to request.
	_, err := e.requests.RequestSignup(ctx, e.worker.ID, "Roads", "Pune")
	assert.ErrorIs(t, err, service.ErrInvalid)
	_, err = e.requests.RequestSignup(ctx, e.admin.ID, "Roads", "Pune")
	assert.ErrorIs(t, err, service.ErrInvalid)

	_, err = e.requests.RequestSignup(ctx, "u-missing", "Roads", "Pune")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListRequestsDefaultsToPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	g, err := e.grievances.Create(ctx, e.citizen.ID, validInput())
	require.NoError(t, err)
	wr, err := e.requests.RequestAssignment(ctx, e.worker.ID, g.ID)
	require.NoError(t, err)
	_, err = e.requests.RejectWorkerRequest(ctx, e.admin.ID, wr.ID)
	require.NoError(t, err)

	pending, err := e.requests.ListWorkerRequests(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	rejected, err := e.requests.ListWorkerRequests(ctx, models.RequestRejected, "")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, wr.ID, rejected[0].ID)
}
