package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(email string, status model.Status) model.VerificationRecord {
	return model.VerificationRecord{
		Email:       email,
		Status:      status,
		FirstName:   "jane",
		LastName:    "doe",
		CompanyName: "Acme",
		Domain:      "example.com",
		ListID:      "list-a",
		CreatedAt:   1700000000000,
	}
}

func TestLocalStorePutGet(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Nil(t, got, "miss must be nil, nil")

	rec := testRecord("jane@example.com", model.StatusValid)
	require.NoError(t, s.Put(ctx, rec))

	got, err = s.Get(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestLocalStoreKeyNormalization(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testRecord("  Jane@Example.com ", model.StatusValid)))

	got, err := s.Get(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestLocalStoreOverwrite(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testRecord("jane@example.com", model.StatusUnknown)))
	require.NoError(t, s.Put(ctx, testRecord("jane@example.com", model.StatusValid)))

	got, err := s.Get(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StatusValid, got.Status)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalEntries, "overwrite must not add a row")
}

func TestLocalStoreDelete(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	deleted, err := s.Delete(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, s.Put(ctx, testRecord("jane@example.com", model.StatusValid)))

	deleted, err = s.Delete(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.Get(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLocalStoreDeleteAll(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testRecord("a@example.com", model.StatusValid)))
	require.NoError(t, s.Put(ctx, testRecord("b@example.com", model.StatusValid)))

	count, err := s.DeleteAll(ctx, []string{"a@example.com", "b@example.com", "missing@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLocalStoreClear(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testRecord("a@example.com", model.StatusValid)))
	require.NoError(t, s.Put(ctx, testRecord("b@example.com", model.StatusInvalid)))

	count, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLocalStoreListAll(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	a := testRecord("a@example.com", model.StatusValid)
	b := testRecord("b@example.com", model.StatusInvalid)
	require.NoError(t, s.Put(ctx, a))
	require.NoError(t, s.Put(ctx, b))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a, all["a@example.com"])
	assert.Equal(t, b, all["b@example.com"])
}

func TestLocalStoreStats(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEntries)

	older := testRecord("a@example.com", model.StatusValid)
	older.CreatedAt = 1000
	newer := testRecord("b@example.com", model.StatusValid)
	newer.CreatedAt = 2000
	require.NoError(t, s.Put(ctx, older))
	require.NoError(t, s.Put(ctx, newer))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEntries)
	assert.Equal(t, int64(2000), stats.NewestEntry)
	assert.Equal(t, int64(1000), stats.OldestEntry)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "jane@example.com", Key("  Jane@Example.COM "))
}
