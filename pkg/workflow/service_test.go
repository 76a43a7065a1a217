package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

var operator = session.Principal{User: "relief_operator", Password: "pw"}

func fixedClock() time.Time {
	return time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)
}

func newService() (*Service, *MockWorkflowStore, *MockReportsStore) {
	ws := &MockWorkflowStore{}
	rs := &MockReportsStore{}
	return NewService(ws, rs, WithClock(fixedClock)), ws, rs
}

func i64(v int64) *int64 { return &v }

func TestDistributeAid_CoercesInputs(t *testing.T) {
	svc, ws, _ := newService()

	ws.On("DistributeAid", operator, model.DistributeAid{
		VolunteerID: i64(201),
		VictimID:    i64(301),
		ResourceID:  nil,
		Qty:         i64(4),
		Date:        nil,
	}).Return(nil)

	err := svc.DistributeAid(context.Background(), operator, DistributeAidInput{
		VolunteerID: " 201 ", VictimID: "301", ResourceID: "", Qty: "4", Date: "  ",
	})
	require.NoError(t, err)
	ws.AssertExpectations(t)
}

func TestDistributeAid_InvalidInput(t *testing.T) {
	svc, ws, _ := newService()

	err := svc.DistributeAid(context.Background(), operator, DistributeAidInput{VolunteerID: "abc"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.DistributeAid(context.Background(), operator, DistributeAidInput{Date: "14/07/2024"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	ws.AssertNotCalled(t, "DistributeAid", mock.Anything, mock.Anything)
}

func TestDistributeAid_StoreRejection(t *testing.T) {
	svc, ws, _ := newService()

	ws.On("DistributeAid", operator, mock.Anything).
		Return(&store.ConstraintError{Code: "P0001", Message: "insufficient stock", Reason: store.ReasonInvariant})

	err := svc.DistributeAid(context.Background(), operator, DistributeAidInput{Qty: "1000"})
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "distribute_aid", f.Operation)
	assert.Equal(t, KindConstraint, f.Kind)
	assert.Equal(t, "insufficient stock", f.Message)
	assert.ErrorIs(t, err, store.ErrConstraintViolation)
	ws.AssertNumberOfCalls(t, "DistributeAid", 1)
}

func TestAssignVolunteer_DefaultsToToday(t *testing.T) {
	svc, ws, _ := newService()

	ws.On("AssignVolunteer", operator, model.AssignVolunteer{
		CampID: i64(1), VolunteerID: i64(201), Date: "2024-07-14",
	}).Return(nil)

	require.NoError(t, svc.AssignVolunteer(context.Background(), operator, AssignVolunteerInput{CampID: "1", VolunteerID: "201"}))
	ws.AssertExpectations(t)
}

func TestAssignVolunteer_MissingReference(t *testing.T) {
	svc, ws, _ := newService()

	ws.On("AssignVolunteer", operator, mock.Anything).
		Return(&store.ConstraintError{Code: "23503", Message: "camp 99 does not exist", Reason: store.ReasonForeignKey})

	err := svc.AssignVolunteer(context.Background(), operator, AssignVolunteerInput{CampID: "99", VolunteerID: "201", Date: "2024-07-01"})
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindMissingReference, f.Kind)
}

func TestOccupancyFor(t *testing.T) {
	svc, ws, _ := newService()
	pct := 62.5
	ws.On("CampOccupancy", operator, int64(1)).Return(&pct, nil)
	ws.On("CampOccupancy", operator, int64(2)).Return(nil, nil)

	occ, err := svc.OccupancyFor(context.Background(), operator, "1")
	require.NoError(t, err)
	assert.Equal(t, Occupancy{Available: true, Percent: 62.5}, occ)

	occ, err = svc.OccupancyFor(context.Background(), operator, "2")
	require.NoError(t, err)
	assert.False(t, occ.Available)

	_, err = svc.OccupancyFor(context.Background(), operator, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCountVictims(t *testing.T) {
	svc, ws, _ := newService()
	ws.On("CountVictims", operator, int64(1)).Return(int64(12), nil)
	ws.On("CountVictims", operator, int64(2)).Return(int64(0), store.ErrPermissionDenied)

	n, err := svc.CountVictims(context.Background(), operator, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = svc.CountVictims(context.Background(), operator, "2")
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindPermission, f.Kind)
}

func TestFailPassesInputErrorsThrough(t *testing.T) {
	assert.NoError(t, fail("op", nil))
	assert.Equal(t, ErrVictimNotInCamp, fail("op", ErrVictimNotInCamp))

	unavailable := fail("op", errors.Join(store.ErrUnavailable, errors.New("dial tcp")))
	var f *Failure
	require.ErrorAs(t, unavailable, &f)
	assert.Equal(t, KindUnavailable, f.Kind)
	assert.Contains(t, f.Error(), "op failed")
}
