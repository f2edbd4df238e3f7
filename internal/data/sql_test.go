package data

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding-trends/internal/model"
)

func createBidTable(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	cols := []string{"delivery_date TEXT", "hour_ending INTEGER", "resource_name TEXT", "resource_type TEXT", "qse TEXT"}
	for i := 1; i <= model.MaxTiers; i++ {
		cols = append(cols, fmt.Sprintf("mw_%d REAL", i))
	}
	for i := 1; i <= model.MaxTiers; i++ {
		cols = append(cols, fmt.Sprintf("price_%d REAL", i))
	}
	_, err := db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", ")))
	require.NoError(t, err)
}

func sqliteFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bids.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	createBidTable(t, db, "bids")
	insert := "INSERT INTO bids (delivery_date, hour_ending, resource_name, resource_type, qse, mw_1, price_1, mw_2, price_2) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	rows := [][]any{
		{"2024-01-15", 2, "U1", "T1", "QSE_A", 12.0, 31.0, nil, nil},
		{"2024-01-15", 1, "U1", "T1", "QSE_A", 10.0, 30.0, 20.0, 35.0},
		{"01/15/2023", 1, "U1", "T1", "QSE_A", 8.0, 28.0, nil, nil},
		{"2024-01-15", 1, "FRNYPP_CC1_4", "CCGT90", "QSE_B", nil, nil, nil, nil},
	}
	for _, r := range rows {
		_, err := db.Exec(insert, r...)
		require.NoError(t, err)
	}
	return path
}

func TestSQLSource_SQLite(t *testing.T) {
	src := SQLSource{Driver: "sqlite", DSN: sqliteFixture(t)}
	assert.Equal(t, "sqlite:bids", src.Name())

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	byKey := map[string]model.BidRecord{}
	for _, r := range records {
		byKey[fmt.Sprintf("%s/%s/%d", r.ResourceName, r.DeliveryDate, r.HourEnding)] = r
	}

	h1 := byKey["U1/2024-01-15/1"]
	assert.Equal(t, []float64{10, 20}, h1.Quantities)
	assert.Equal(t, []float64{30, 35}, h1.Prices)
	assert.Equal(t, "QSE_A", h1.QSE)

	assert.Equal(t, []float64{8}, byKey["U1/2023-01-15/1"].Quantities)

	empty := byKey["FRNYPP_CC1_4/2024-01-15/1"]
	assert.Equal(t, []float64{}, empty.Prices)
	assert.Equal(t, "CCGT90", empty.ResourceType)
}

func TestSQLSource_Errors(t *testing.T) {
	_, err := SQLSource{Driver: "sqlite", DSN: sqliteFixture(t), Table: "bids; DROP TABLE bids"}.Load(context.Background())
	assert.ErrorContains(t, err, "invalid table name")

	_, err = SQLSource{Driver: "sqlite", DSN: sqliteFixture(t), Table: "missing"}.Load(context.Background())
	assert.Error(t, err)

	_, err = SQLSource{Driver: "nosuchdriver", DSN: "x"}.Load(context.Background())
	assert.Error(t, err)

	path := sqliteFixture(t)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO bids (delivery_date, hour_ending, resource_name, resource_type, qse, mw_1, price_1, mw_2, price_2) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		"2024-01-16", 1, "U1", "T1", "QSE_A", 10.0, nil, nil, 99.0)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	records, err := SQLSource{Driver: "sqlite", DSN: path}.Load(context.Background())
	assert.Nil(t, records)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "price_1", pe.Column)
	assert.ErrorIs(t, err, errHalfTier)
}

func TestScanDate(t *testing.T) {
	d, err := scanDate([]byte("2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, model.NewDate(2024, 2, 29), d)

	_, err = scanDate(nil)
	assert.Error(t, err)
	_, err = scanDate(42)
	assert.Error(t, err)
}
