package gorm

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportsStore_Dashboard(t *testing.T) {
	conn := newMockConnector(t)
	s := NewReportsStore(conn)

	for i, table := range []string{"relief_camp", "volunteer", "victim", "aid_distribution"} {
		conn.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "` + table + `"`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(i + 1)))
	}
	conn.Mock.ExpectQuery(`ORDER BY a."dist_date" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"date", "volunteer", "victim", "resource", "qty", "camp_id"}).
			AddRow("2024-07-14", "Asha", "Ravi", "Rice", int64(4), int64(1)))

	dash, err := s.Dashboard(context.Background(), viewerPrincipal)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.Camps)
	assert.Equal(t, int64(4), dash.AidRows)
	require.Len(t, dash.RecentAid, 1)
	assert.Equal(t, "Rice", dash.RecentAid[0].Resource)
	assert.Equal(t, 1, conn.Opened())
	assert.NoError(t, conn.VerifyExpectations())
}

func TestReportsStore_AboveAverage(t *testing.T) {
	conn := newMockConnector(t)
	s := NewReportsStore(conn)

	conn.Mock.ExpectQuery(`HAVING SUM\(a."qty"\) >`).
		WithArgs(int64(1), "2024-07-14", int64(1), "2024-07-14").
		WillReturnRows(sqlmock.NewRows([]string{"victim_id", "name", "total_qty"}).AddRow(int64(301), "Ravi", int64(9)))

	rows, err := s.AboveAverage(context.Background(), viewerPrincipal, 1, "2024-07-14")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(9), rows[0].TotalQty)
}

func TestReportsStore_Distributions(t *testing.T) {
	conn := newMockConnector(t)
	s := NewReportsStore(conn)

	conn.Mock.ExpectQuery(`BETWEEN .+ AND .+ ORDER BY`).
		WithArgs("2024-07-01", "2024-07-31").
		WillReturnRows(sqlmock.NewRows([]string{"date", "volunteer", "victim", "resource", "qty", "camp_id"}))
	camp := int64(1)
	conn.Mock.ExpectQuery(`AND vic."camp_id" = .+ ORDER BY`).
		WithArgs("2024-07-01", "2024-07-31", camp).
		WillReturnRows(sqlmock.NewRows([]string{"date", "volunteer", "victim", "resource", "qty", "camp_id"}).
			AddRow("2024-07-14", "Asha", "Ravi", "Rice", int64(4), camp))

	rows, err := s.Distributions(context.Background(), viewerPrincipal, "2024-07-01", "2024-07-31", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Distributions(context.Background(), viewerPrincipal, "2024-07-01", "2024-07-31", &camp)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, camp, *rows[0].CampID)
	assert.NoError(t, conn.VerifyExpectations())
}

func TestReportsStore_ResourceTotals(t *testing.T) {
	conn := newMockConnector(t)
	s := NewReportsStore(conn)

	conn.Mock.ExpectQuery(`GROUP BY r."item_name"`).
		WithArgs(int64(1), "2024-07-01", "2024-07-31").
		WillReturnRows(sqlmock.NewRows([]string{"resource", "total_qty"}).AddRow("Rice", int64(40)).AddRow("Water", int64(12)))

	rows, err := s.ResourceTotals(context.Background(), viewerPrincipal, 1, "2024-07-01", "2024-07-31")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rice", rows[0].Resource)
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	conn := newMockConnector(t)
	s := NewHealthStore(conn)

	conn.Mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.CheckConnectivity(context.Background(), viewerPrincipal))
	assert.Equal(t, 1, conn.Released())
}
