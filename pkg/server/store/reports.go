package store

import (
	"context"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/session"
)

// ReportsStore runs the read-only reports
type ReportsStore interface {
	// Dashboard counts the main tables and returns the latest distributions.
	Dashboard(ctx context.Context, p session.Principal) (*model.Dashboard, error)

	// AboveAverage lists victims of a camp who received more on a date than
	// the camp's per-victim average for that date.
	AboveAverage(ctx context.Context, p session.Principal, campID int64, date string) ([]model.VictimTotal, error)

	// Distributions lists distributions between two dates, optionally for
	// one camp.
	Distributions(ctx context.Context, p session.Principal, from, to string, campID *int64) ([]model.DistributionRow, error)

	// ResourceTotals sums quantities per resource for a camp and window.
	ResourceTotals(ctx context.Context, p session.Principal, campID int64, from, to string) ([]model.ResourceTotal, error)
}
