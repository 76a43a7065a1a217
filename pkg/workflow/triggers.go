package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Demonstration defaults
const (
	DefaultVolunteerID = "201"
	DefaultVictimID    = "301"
	DefaultResourceID  = "401"
	DefaultQty         = "4"

	negativeQty = -5
)

// TriggerInput names the distribution row a demonstration touches. Blank
// fields take the demonstration defaults.
type TriggerInput struct {
	VolunteerID string
	VictimID    string
	ResourceID  string
	Qty         string
	Date        string
}

// Effect is the observed stock change around a mutation. Before and After
// are nil when no stock row was readable.
type Effect struct {
	Camp     int64  `json:"camp_id"`
	Resource int64  `json:"resource_id"`
	Before   *int64 `json:"before"`
	After    *int64 `json:"after"`
	Delta    *int64 `json:"delta"`
	Affected int64  `json:"affected"`
}

// NegativeResult is the outcome of the negative quantity demonstration.
// A blocked insert leaves a zero Delta when both stock reads succeed.
type NegativeResult struct {
	*Effect
	Blocked bool   `json:"blocked"`
	Message string `json:"message"`
}

func (s *Service) distribution(in TriggerInput, qty *int64) (model.AidDistribution, error) {
	var row model.AidDistribution
	var err error
	if row.VolunteerID, err = requiredInt("volunteer_id", orDefault(in.VolunteerID, DefaultVolunteerID)); err != nil {
		return row, err
	}
	if row.VictimID, err = requiredInt("victim_id", orDefault(in.VictimID, DefaultVictimID)); err != nil {
		return row, err
	}
	if row.ResourceID, err = requiredInt("resource_id", orDefault(in.ResourceID, DefaultResourceID)); err != nil {
		return row, err
	}
	if qty != nil {
		row.Qty = *qty
	} else if row.Qty, err = requiredInt("qty", orDefault(in.Qty, DefaultQty)); err != nil {
		return row, err
	}
	date, err := requiredDate("date", orDefault(in.Date, s.today()))
	if err != nil {
		return row, err
	}
	row.DistDate, err = time.Parse(model.DateLayout, date)
	return row, err
}

// NegativeQuantity inserts a distribution with quantity -5 between two
// stock reads. A constraint rejection is the expected outcome and is
// reported as Blocked; any other error is a failure.
func (s *Service) NegativeQuantity(ctx context.Context, p session.Principal, in TriggerInput) (NegativeResult, error) {
	const op = "negative_quantity"

	qty := int64(negativeQty)
	row, err := s.distribution(in, &qty)
	if err != nil {
		return NegativeResult{}, err
	}

	var rejected *store.ConstraintError
	effect, err := s.observe(ctx, p, op, row, func() (int64, error) {
		err := s.workflows.InsertDistribution(ctx, p, row)
		switch {
		case err == nil:
			return 1, nil
		case errors.As(err, &rejected):
			return 0, nil
		}
		return 0, err
	})
	if err != nil {
		return NegativeResult{}, err
	}
	if rejected == nil {
		return NegativeResult{Effect: effect, Message: "negative quantity insert was not blocked"}, nil
	}
	return NegativeResult{Effect: effect, Blocked: true, Message: rejected.Message}, nil
}

// InsertDecrementsStock inserts a valid distribution and reports the stock
// of the victim's camp before and after.
func (s *Service) InsertDecrementsStock(ctx context.Context, p session.Principal, in TriggerInput) (*Effect, error) {
	const op = "insert_distribution"

	row, err := s.distribution(in, nil)
	if err != nil {
		return nil, err
	}
	return s.observe(ctx, p, op, row, func() (int64, error) {
		if err := s.workflows.InsertDistribution(ctx, p, row); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

// DeleteRestoresStock deletes a distribution and reports the stock of the
// victim's camp before and after.
func (s *Service) DeleteRestoresStock(ctx context.Context, p session.Principal, in TriggerInput) (*Effect, error) {
	const op = "delete_distribution"

	row, err := s.distribution(in, nil)
	if err != nil {
		return nil, err
	}
	return s.observe(ctx, p, op, row, func() (int64, error) {
		return s.workflows.DeleteDistribution(ctx, p, row)
	})
}

// observe runs mutate between two stock reads. A failed mutation is
// returned as a Failure; a failed after read only leaves After empty.
func (s *Service) observe(ctx context.Context, p session.Principal, op string, row model.AidDistribution, mutate func() (int64, error)) (*Effect, error) {
	logger := zerolog.Ctx(ctx)

	camp, err := s.workflows.VictimCamp(ctx, p, row.VictimID)
	if err != nil {
		return nil, fail(op, err)
	}
	if camp == nil {
		return nil, ErrVictimNotInCamp
	}

	effect := &Effect{Camp: *camp, Resource: row.ResourceID}
	if effect.Before, err = s.workflows.StockLevel(ctx, p, *camp, row.ResourceID); err != nil {
		return nil, fail(op, err)
	}

	if effect.Affected, err = mutate(); err != nil {
		return nil, fail(op, err)
	}

	effect.After, err = s.workflows.StockLevel(ctx, p, *camp, row.ResourceID)
	if err != nil {
		logger.Warn().Err(err).Str("operation", op).Msg("stock read after mutation failed")
		effect.After = nil
	}
	if effect.Before != nil && effect.After != nil {
		delta := *effect.After - *effect.Before
		effect.Delta = &delta
	}
	return effect, nil
}
