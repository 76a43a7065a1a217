package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Ensure ReportsStore implements store.ReportsStore
var _ store.ReportsStore = (*ReportsStore)(nil)

const distributionColumns = `
	SELECT a."dist_date"::text AS date, vol."name" AS volunteer, vic."name" AS victim,
	       r."item_name" AS resource, a."qty" AS qty, vic."camp_id" AS camp_id
	FROM "aid_distribution" a
	JOIN "volunteer" vol ON vol."volunteer_id" = a."volunteer_id"
	JOIN "victim" vic ON vic."victim_id" = a."victim_id"
	JOIN "resource" r ON r."resource_id" = a."resource_id"`

const recentAidQuery = distributionColumns + `
	ORDER BY a."dist_date" DESC, a."victim_id" ASC
	LIMIT 10`

const aboveAverageQuery = `
	SELECT v."victim_id" AS victim_id, v."name" AS name, SUM(a."qty") AS total_qty
	FROM "aid_distribution" a
	JOIN "victim" v ON v."victim_id" = a."victim_id"
	WHERE v."camp_id" = ? AND a."dist_date" = ?::date
	GROUP BY v."victim_id", v."name"
	HAVING SUM(a."qty") > (
		SELECT AVG(t.total_per_victim)
		FROM (
			SELECT SUM(a2."qty") AS total_per_victim
			FROM "aid_distribution" a2
			JOIN "victim" v2 ON v2."victim_id" = a2."victim_id"
			WHERE v2."camp_id" = ? AND a2."dist_date" = ?::date
			GROUP BY a2."victim_id"
		) t
	)
	ORDER BY total_qty DESC`

const resourceTotalsQuery = `
	SELECT r."item_name" AS resource, SUM(a."qty") AS total_qty
	FROM "aid_distribution" a
	JOIN "victim" v ON v."victim_id" = a."victim_id"
	JOIN "resource" r ON r."resource_id" = a."resource_id"
	WHERE v."camp_id" = ? AND a."dist_date" BETWEEN ?::date AND ?::date
	GROUP BY r."item_name"
	ORDER BY total_qty DESC`

// ReportsStore implements store.ReportsStore using GORM
type ReportsStore struct {
	conn db.Connector
}

// NewReportsStore creates a new ReportsStore
func NewReportsStore(conn db.Connector) *ReportsStore {
	return &ReportsStore{conn: conn}
}

func (s *ReportsStore) Dashboard(ctx context.Context, p session.Principal) (*model.Dashboard, error) {
	dash := &model.Dashboard{}
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		counts := []struct {
			table string
			dst   *int64
		}{
			{"relief_camp", &dash.Camps},
			{"volunteer", &dash.Volunteers},
			{"victim", &dash.Victims},
			{"aid_distribution", &dash.AidRows},
		}
		for _, c := range counts {
			if err := tx.Table(c.table).Count(c.dst).Error; err != nil {
				return err
			}
		}
		return tx.Raw(recentAidQuery).Scan(&dash.RecentAid).Error
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *ReportsStore) AboveAverage(ctx context.Context, p session.Principal, campID int64, date string) ([]model.VictimTotal, error) {
	var rows []model.VictimTotal
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Raw(aboveAverageQuery, campID, date, campID, date).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportsStore) Distributions(ctx context.Context, p session.Principal, from, to string, campID *int64) ([]model.DistributionRow, error) {
	query := distributionColumns + `
	WHERE a."dist_date" BETWEEN ?::date AND ?::date`
	args := []any{from, to}
	if campID != nil {
		query += ` AND vic."camp_id" = ?`
		args = append(args, *campID)
	}
	query += ` ORDER BY a."dist_date", volunteer, victim`

	var rows []model.DistributionRow
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Raw(query, args...).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportsStore) ResourceTotals(ctx context.Context, p session.Principal, campID int64, from, to string) ([]model.ResourceTotal, error) {
	var rows []model.ResourceTotal
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Raw(resourceTotalsQuery, campID, from, to).Scan(&rows).Error
	})
	return rows, err
}
