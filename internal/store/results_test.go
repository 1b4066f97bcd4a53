package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/blockpi/backend/internal/sim"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func classicResult(t *testing.T) sim.Result {
	t.Helper()
	r, err := sim.Simulate(sim.DefaultParams(100, 1, -1))
	require.NoError(t, err)
	return r
}

func TestNewResultAndDecode(t *testing.T) {
	r := classicResult(t)

	row, err := NewResult(r)
	require.NoError(t, err)
	assert.Equal(t, r.CollisionCount, row.CollisionCount)
	assert.True(t, row.PiApproximation.Valid)
	assert.InDelta(t, float64(r.CollisionCount)/10, row.PiApproximation.Float64, 1e-12)

	back, err := Decode(row)
	require.NoError(t, err)
	assert.Equal(t, r.Events, back.Events)
	assert.Equal(t, r.Trajectory, back.Trajectory)
	assert.Equal(t, r.Params.M1, back.Params.M1)
}

func TestNewResultEqualMassesHasNoPi(t *testing.T) {
	r, err := sim.Simulate(sim.DefaultParams(1, 1, -1))
	require.NoError(t, err)

	row, err := NewResult(r)
	require.NoError(t, err)
	assert.False(t, row.PiApproximation.Valid)
}

func TestSaveAssignsIDs(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO simulation_results").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	row, err := NewResult(classicResult(t))
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), row))

	assert.Equal(t, 7, row.ID)
	assert.NotEmpty(t, row.PublicID)
	assert.Equal(t, now, row.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	st, mock := newMockStore(t)
	id := "6f1c2d9a-3b4e-4f70-9a1b-2c3d4e5f6a7b"
	cols := []string{"id", "public_id", "m1", "m2", "v1_initial", "v2_initial", "total_time",
		"collision_count", "pi_approximation", "hit_event_cap", "events", "trajectory", "created_at"}

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("FROM simulation_results WHERE public_id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				1, id, 100.0, 1.0, -1.0, 0.0, 10.0, 31, 3.1, false,
				[]byte(`[{"time":0.2,"kind":"blocks"}]`), []byte(`[]`), time.Now()))

		res, err := st.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 31, res.CollisionCount)
		assert.True(t, res.PiApproximation.Valid)

		decoded, err := Decode(res)
		require.NoError(t, err)
		require.Len(t, decoded.Events, 1)
		assert.Equal(t, sim.BlockBlock, decoded.Events[0].Kind)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("FROM simulation_results WHERE public_id").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := st.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := st.Get(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	st, mock := newMockStore(t)
	id := "6f1c2d9a-3b4e-4f70-9a1b-2c3d4e5f6a7b"

	mock.ExpectExec("DELETE FROM simulation_results WHERE public_id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, st.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM simulation_results WHERE public_id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, st.Delete(context.Background(), id), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneOnce(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM simulation_results WHERE created_at").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n := pruneOnce(context.Background(), st, 30, time.Now())
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilStoreIsUnavailable(t *testing.T) {
	var st *Store
	_, err := st.Recent(context.Background(), 10)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, st.Delete(context.Background(), "x"), ErrUnavailable)
}
