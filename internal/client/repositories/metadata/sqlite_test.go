package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediahub/internal/dbx"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func fixedClock(r *SQLiteRepository, ts time.Time) {
	r.now = func() time.Time { return ts }
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "root", []byte(`{"user":{}}`)))

	v, err := r.Get(ctx, "root")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"user":{}}`), v)
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)

	rec, err := r.Stat(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestSet_UpsertOverwritesValueAndTimestamp(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	t1 := time.UnixMilli(1_700_000_000_000)
	fixedClock(r, t1)
	require.NoError(t, r.Set(ctx, "k", []byte("old")))

	t2 := t1.Add(time.Minute)
	fixedClock(r, t2)
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	rec, err := r.Stat(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []byte("new"), rec.Value)
	assert.True(t, rec.UpdatedAt.Equal(t2))
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", nil))

	rec, err := r.Stat(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Value)
}

func TestList_ByPrefix(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "root", []byte{1}))
	require.NoError(t, r.Set(ctx, "root.saved_at", []byte{2}))
	require.NoError(t, r.Set(ctx, "rook", []byte{3}))
	require.NoError(t, r.Set(ctx, "r%_x", []byte{4}))

	recs, err := r.List(ctx, "root")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "root", recs[0].Key)
	assert.Equal(t, "root.saved_at", recs[1].Key)

	recs, err = r.List(ctx, "r%")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "r%_x", recs[0].Key)

	recs, err = r.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestRepository_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Set(ctx, "k", []byte("v"))
	})
	require.NoError(t, err)

	v, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, "failed to delete metadata[k]")

	_, err = r.List(ctx, "")
	require.ErrorContains(t, err, "failed to list metadata")
}
