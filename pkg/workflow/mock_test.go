package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/session"
)

// MockWorkflowStore implements store.WorkflowStore for testing using testify/mock
type MockWorkflowStore struct {
	mock.Mock
}

func (m *MockWorkflowStore) DistributeAid(ctx context.Context, p session.Principal, args model.DistributeAid) error {
	return m.Called(p, args).Error(0)
}

func (m *MockWorkflowStore) AssignVolunteer(ctx context.Context, p session.Principal, args model.AssignVolunteer) error {
	return m.Called(p, args).Error(0)
}

func (m *MockWorkflowStore) CampOccupancy(ctx context.Context, p session.Principal, campID int64) (*float64, error) {
	args := m.Called(p, campID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockWorkflowStore) CountVictims(ctx context.Context, p session.Principal, campID int64) (int64, error) {
	args := m.Called(p, campID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkflowStore) VictimCamp(ctx context.Context, p session.Principal, victimID int64) (*int64, error) {
	args := m.Called(p, victimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockWorkflowStore) StockLevel(ctx context.Context, p session.Principal, campID, resourceID int64) (*int64, error) {
	args := m.Called(p, campID, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockWorkflowStore) InsertDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) error {
	return m.Called(p, row).Error(0)
}

func (m *MockWorkflowStore) DeleteDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) (int64, error) {
	args := m.Called(p, row)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportsStore implements store.ReportsStore for testing using testify/mock
type MockReportsStore struct {
	mock.Mock
}

func (m *MockReportsStore) Dashboard(ctx context.Context, p session.Principal) (*model.Dashboard, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

func (m *MockReportsStore) AboveAverage(ctx context.Context, p session.Principal, campID int64, date string) ([]model.VictimTotal, error) {
	args := m.Called(p, campID, date)
	return args.Get(0).([]model.VictimTotal), args.Error(1)
}

func (m *MockReportsStore) Distributions(ctx context.Context, p session.Principal, from, to string, campID *int64) ([]model.DistributionRow, error) {
	args := m.Called(p, from, to, campID)
	return args.Get(0).([]model.DistributionRow), args.Error(1)
}

func (m *MockReportsStore) ResourceTotals(ctx context.Context, p session.Principal, campID int64, from, to string) ([]model.ResourceTotal, error) {
	args := m.Called(p, campID, from, to)
	return args.Get(0).([]model.ResourceTotal), args.Error(1)
}
