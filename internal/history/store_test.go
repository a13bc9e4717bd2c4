package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starspread/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db)
}

func TestOpenAppliesMigrations(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestStoreSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	equivalent := true
	run := &Run{
		TableName:  "main.silver.orders",
		Mode:       "reconstruct",
		Statement:  "SELECT `id`\nFROM `main`.`silver`.`orders`",
		Validated:  true,
		Equivalent: &equivalent,
	}
	require.NoError(t, store.Save(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.TableName, got.TableName)
	assert.Equal(t, run.Mode, got.Mode)
	assert.Equal(t, run.Statement, got.Statement)
	assert.True(t, got.Validated)
	require.NotNil(t, got.Equivalent)
	assert.True(t, *got.Equivalent)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
}

func TestStoreGetNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStoreUnvalidatedRunHasNilEquivalent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &Run{
		TableName: "main.silver.orders",
		Mode:      "flatten",
		Statement: "SELECT `id`\nFROM `main`.`silver`.`orders`",
	}
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, got.Validated)
	assert.Nil(t, got.Equivalent)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, table := range []string{"c.s.first", "c.s.second", "c.s.third"} {
		run := &Run{TableName: table, Mode: "reconstruct", Statement: "SELECT 1"}
		require.NoError(t, store.Save(ctx, run))
	}

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Same-second inserts fall back to ID ordering, so only check membership.
	tables := make([]string, len(runs))
	for i, r := range runs {
		tables[i] = r.TableName
	}
	assert.ElementsMatch(t, []string{"c.s.first", "c.s.second", "c.s.third"}, tables)
}

func TestStoreListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		run := &Run{TableName: "c.s.t", Mode: "reconstruct", Statement: "SELECT 1"}
		require.NoError(t, store.Save(ctx, run))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
