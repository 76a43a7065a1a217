package workflow

import (
	"context"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/session"
)

// Dashboard returns table counts and the latest distributions.
func (s *Service) Dashboard(ctx context.Context, p session.Principal) (*model.Dashboard, error) {
	dash, err := s.reports.Dashboard(ctx, p)
	if err != nil {
		return nil, fail("dashboard", err)
	}
	return dash, nil
}

// AboveAverage lists victims who received more than their camp's average
// on a date. Camp and date are required.
func (s *Service) AboveAverage(ctx context.Context, p session.Principal, campID, date string) ([]model.VictimTotal, error) {
	camp, err := requiredInt("camp_id", campID)
	if err != nil {
		return nil, err
	}
	day, err := requiredDate("date", date)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.AboveAverage(ctx, p, camp, day)
	if err != nil {
		return nil, fail("above_average", err)
	}
	return rows, nil
}

// Distributions lists distributions in a date window, optionally for one camp.
func (s *Service) Distributions(ctx context.Context, p session.Principal, from, to, campID string) ([]model.DistributionRow, error) {
	start, err := requiredDate("from", from)
	if err != nil {
		return nil, err
	}
	end, err := requiredDate("to", to)
	if err != nil {
		return nil, err
	}
	camp, err := optionalInt("camp_id", campID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.Distributions(ctx, p, start, end, camp)
	if err != nil {
		return nil, fail("distributions", err)
	}
	return rows, nil
}

// ResourceTotals sums distributed quantities per resource for a camp and
// date window. All inputs are required.
func (s *Service) ResourceTotals(ctx context.Context, p session.Principal, campID, from, to string) ([]model.ResourceTotal, error) {
	camp, err := requiredInt("camp_id", campID)
	if err != nil {
		return nil, err
	}
	start, err := requiredDate("from", from)
	if err != nil {
		return nil, err
	}
	end, err := requiredDate("to", to)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.ResourceTotals(ctx, p, camp, start, end)
	if err != nil {
		return nil, fail("resource_totals", err)
	}
	return rows, nil
}
