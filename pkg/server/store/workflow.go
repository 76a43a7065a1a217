package store

import (
	"context"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/session"
)

// WorkflowStore drives the stored procedures, functions and triggers of
// the relief schema
type WorkflowStore interface {
	// DistributeAid calls the distribute_aid procedure.
	DistributeAid(ctx context.Context, p session.Principal, args model.DistributeAid) error

	// AssignVolunteer calls the assign_volunteer procedure.
	AssignVolunteer(ctx context.Context, p session.Principal, args model.AssignVolunteer) error

	// CampOccupancy returns camp_occupancy_for(camp). Nil when the store
	// has no value.
	CampOccupancy(ctx context.Context, p session.Principal, campID int64) (*float64, error)

	// CountVictims returns count_victims_in_camp(camp).
	CountVictims(ctx context.Context, p session.Principal, campID int64) (int64, error)

	// VictimCamp returns the camp of a victim. Nil when the victim is
	// unknown or not in a camp.
	VictimCamp(ctx context.Context, p session.Principal, victimID int64) (*int64, error)

	// StockLevel returns the current quantity of a resource at a camp. Nil
	// when no stock row exists.
	StockLevel(ctx context.Context, p session.Principal, campID, resourceID int64) (*int64, error)

	// InsertDistribution adds an aid_distribution row directly.
	InsertDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) error

	// DeleteDistribution removes the aid_distribution row with the row's
	// key and returns the number of rows removed.
	DeleteDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) (int64, error)
}
