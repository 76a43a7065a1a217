package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(t *testing.T, entity string) TableDescriptor {
	t.Helper()
	d, err := Default.Describe(entity)
	require.NoError(t, err)
	return d
}

func TestBuildSelect(t *testing.T) {
	st := BuildSelect(describe(t, "Volunteer"))
	assert.Equal(t, `SELECT "volunteer_id", "name", "phone", "availability" FROM "volunteer"`, st.SQL)
	assert.Empty(t, st.Args)
}

func TestBuildInsert(t *testing.T) {
	st := BuildInsert(describe(t, "Volunteer"), FieldValues{
		"volunteer_id": "201",
		"name":         "Asha",
		"phone":        "",
		"bogus":        "DROP TABLE volunteer",
	})
	assert.Equal(t, `INSERT INTO "volunteer" ("volunteer_id", "name", "phone", "availability") VALUES (?, ?, ?, ?)`, st.SQL)
	assert.Equal(t, []any{"201", "Asha", nil, nil}, st.Args)
}

func TestBuildUpdate(t *testing.T) {
	t.Run("single key sets non-key columns", func(t *testing.T) {
		st, err := BuildUpdate(describe(t, "Resource"), FieldValues{
			"resource_id": "401",
			"category":    "Food",
			"item_name":   "Rice",
		})
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "resource" SET "category" = ?, "item_name" = ?, "unit" = ? WHERE "resource_id" = ?`, st.SQL)
		assert.Equal(t, []any{"Food", "Rice", nil, "401"}, st.Args)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := BuildUpdate(describe(t, "Resource"), FieldValues{"category": "Food"})
		assert.True(t, errors.Is(err, ErrMissingKey))
	})

	t.Run("composite key is unsupported whatever the values", func(t *testing.T) {
		for _, entity := range []string{"Stocked_At", "AssignedTo", "AidDistribution"} {
			desc := describe(t, entity)
			full := FieldValues{}
			for _, c := range desc.Columns() {
				full[c] = "1"
			}
			for _, values := range []FieldValues{{}, full} {
				_, err := BuildUpdate(desc, values)
				assert.True(t, errors.Is(err, ErrUnsupportedOperation), entity)
			}
		}
	})
}

func TestBuildDelete(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		st, err := BuildDelete(describe(t, "Victim"), FieldValues{"victim_id": "301"})
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "victim" WHERE "victim_id" = ?`, st.SQL)
		assert.Equal(t, []any{"301"}, st.Args)
	})

	t.Run("composite key binds the full tuple in key order", func(t *testing.T) {
		st, err := BuildDelete(describe(t, "AidDistribution"), FieldValues{
			"dist_date":    "2024-08-01",
			"resource_id":  "401",
			"victim_id":    "301",
			"volunteer_id": "201",
			"qty":          "4",
		})
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "aid_distribution" WHERE "volunteer_id" = ? AND "victim_id" = ? AND "resource_id" = ? AND "dist_date" = ?`, st.SQL)
		assert.Equal(t, []any{"201", "301", "401", "2024-08-01"}, st.Args)
	})

	t.Run("every strict subset of a composite key is rejected", func(t *testing.T) {
		desc := describe(t, "AidDistribution")
		keys := desc.Key().Columns()
		for mask := 0; mask < (1<<len(keys))-1; mask++ {
			values := FieldValues{}
			for i, k := range keys {
				if mask&(1<<i) != 0 {
					values[k] = "1"
				}
			}
			_, err := BuildDelete(desc, values)
			assert.True(t, errors.Is(err, ErrMissingKey), "mask %b", mask)
		}
	})
}

func TestParseFieldValues(t *testing.T) {
	form := map[string]string{
		"camp_id":     " 7 ",
		"resource_id": "",
		"current_qty": "40",
		"camp_id; --": "1",
	}
	values := ParseFieldValues(describe(t, "Stocked_At"), func(c string) string { return form[c] })

	assert.Equal(t, FieldValues{
		"camp_id":       "7",
		"resource_id":   nil,
		"current_qty":   "40",
		"reorder_level": nil,
	}, values)
	assert.Equal(t, []string{"resource_id"}, values.Missing([]string{"camp_id", "resource_id"}))
}
