package gorm

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Ensure WorkflowStore implements store.WorkflowStore
var _ store.WorkflowStore = (*WorkflowStore)(nil)

// WorkflowStore implements store.WorkflowStore using GORM
type WorkflowStore struct {
	conn db.Connector
}

// NewWorkflowStore creates a new WorkflowStore
func NewWorkflowStore(conn db.Connector) *WorkflowStore {
	return &WorkflowStore{conn: conn}
}

func (s *WorkflowStore) DistributeAid(ctx context.Context, p session.Principal, args model.DistributeAid) error {
	return withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Exec(
			`CALL distribute_aid(?::int, ?::int, ?::int, ?::int, ?::date)`,
			args.VolunteerID, args.VictimID, args.ResourceID, args.Qty, args.Date,
		).Error
	})
}

func (s *WorkflowStore) AssignVolunteer(ctx context.Context, p session.Principal, args model.AssignVolunteer) error {
	return withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Exec(
			`CALL assign_volunteer(?::int, ?::int, ?::date)`,
			args.CampID, args.VolunteerID, args.Date,
		).Error
	})
}

func (s *WorkflowStore) CampOccupancy(ctx context.Context, p session.Principal, campID int64) (*float64, error) {
	var pct sql.NullFloat64
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Raw(`SELECT camp_occupancy_for(?)`, campID).Row().Scan(&pct)
	})
	if err != nil || !pct.Valid {
		return nil, err
	}
	return &pct.Float64, nil
}

func (s *WorkflowStore) CountVictims(ctx context.Context, p session.Principal, campID int64) (int64, error) {
	var count sql.NullInt64
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Raw(`SELECT count_victims_in_camp(?)`, campID).Row().Scan(&count)
	})
	return count.Int64, err
}

func (s *WorkflowStore) VictimCamp(ctx context.Context, p session.Principal, victimID int64) (*int64, error) {
	return s.scalarInt(ctx, p, `SELECT "camp_id" FROM "victim" WHERE "victim_id" = ?`, victimID)
}

func (s *WorkflowStore) StockLevel(ctx context.Context, p session.Principal, campID, resourceID int64) (*int64, error) {
	return s.scalarInt(ctx, p,
		`SELECT "current_qty" FROM "stocked_at" WHERE "camp_id" = ? AND "resource_id" = ?`,
		campID, resourceID)
}

func (s *WorkflowStore) InsertDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) error {
	return withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
}

func (s *WorkflowStore) DeleteDistribution(ctx context.Context, p session.Principal, row model.AidDistribution) (int64, error) {
	var affected int64
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		res := tx.Where(
			`"volunteer_id" = ? AND "victim_id" = ? AND "resource_id" = ? AND "dist_date" = ?`,
			row.VolunteerID, row.VictimID, row.ResourceID, row.DistDate,
		).Delete(&model.AidDistribution{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// scalarInt reads one nullable integer. No row and NULL both yield nil.
func (s *WorkflowStore) scalarInt(ctx context.Context, p session.Principal, query string, args ...any) (*int64, error) {
	var v sql.NullInt64
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		err := tx.Raw(query, args...).Row().Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil || !v.Valid {
		return nil, err
	}
	return &v.Int64, nil
}
