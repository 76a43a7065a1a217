package workflow

import (
	"context"
	"time"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Service runs workflows against the store
type Service struct {
	workflows store.WorkflowStore
	reports   store.ReportsStore
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service
func NewService(workflows store.WorkflowStore, reports store.ReportsStore, opts ...Option) *Service {
	s := &Service{workflows: workflows, reports: reports, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() string {
	return s.now().Format(model.DateLayout)
}

// DistributeAidInput holds the form fields of a distribution.
type DistributeAidInput struct {
	VolunteerID string
	VictimID    string
	ResourceID  string
	Qty         string
	Date        string
}

// DistributeAid invokes the store's distribution procedure. Quantity and
// stock checks are the procedure's business.
func (s *Service) DistributeAid(ctx context.Context, p session.Principal, in DistributeAidInput) error {
	const op = "distribute_aid"

	var args model.DistributeAid
	var err error
	if args.VolunteerID, err = optionalInt("volunteer_id", in.VolunteerID); err != nil {
		return err
	}
	if args.VictimID, err = optionalInt("victim_id", in.VictimID); err != nil {
		return err
	}
	if args.ResourceID, err = optionalInt("resource_id", in.ResourceID); err != nil {
		return err
	}
	if args.Qty, err = optionalInt("qty", in.Qty); err != nil {
		return err
	}
	if args.Date, err = optionalDate("date", in.Date); err != nil {
		return err
	}
	return fail(op, s.workflows.DistributeAid(ctx, p, args))
}

// AssignVolunteerInput holds the form fields of an assignment.
type AssignVolunteerInput struct {
	CampID      string
	VolunteerID string
	Date        string
}

// AssignVolunteer invokes the assignment procedure, dated today when no
// date is given.
func (s *Service) AssignVolunteer(ctx context.Context, p session.Principal, in AssignVolunteerInput) error {
	const op = "assign_volunteer"

	var args model.AssignVolunteer
	var err error
	if args.CampID, err = optionalInt("camp_id", in.CampID); err != nil {
		return err
	}
	if args.VolunteerID, err = optionalInt("volunteer_id", in.VolunteerID); err != nil {
		return err
	}
	if args.Date, err = requiredDate("date", orDefault(in.Date, s.today())); err != nil {
		return err
	}
	return fail(op, s.workflows.AssignVolunteer(ctx, p, args))
}

// Occupancy is a camp's occupancy percentage. Available is false when the
// store has no figure for the camp.
type Occupancy struct {
	Available bool    `json:"available"`
	Percent   float64 `json:"percent,omitempty"`
}

// OccupancyFor returns the occupancy of a camp.
func (s *Service) OccupancyFor(ctx context.Context, p session.Principal, campID string) (Occupancy, error) {
	camp, err := requiredInt("camp_id", campID)
	if err != nil {
		return Occupancy{}, err
	}
	pct, err := s.workflows.CampOccupancy(ctx, p, camp)
	if err != nil {
		return Occupancy{}, fail("camp_occupancy_for", err)
	}
	if pct == nil {
		return Occupancy{}, nil
	}
	return Occupancy{Available: true, Percent: *pct}, nil
}

// CountVictims returns the number of victims in a camp.
func (s *Service) CountVictims(ctx context.Context, p session.Principal, campID string) (int64, error) {
	camp, err := requiredInt("camp_id", campID)
	if err != nil {
		return 0, err
	}
	n, err := s.workflows.CountVictims(ctx, p, camp)
	if err != nil {
		return 0, fail("count_victims_in_camp", err)
	}
	return n, nil
}
