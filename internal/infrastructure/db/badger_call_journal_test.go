package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

func TestBadgerCallJournal(t *testing.T) {
	badgerDB, err := OpenBadger("", true)
	require.NoError(t, err)
	defer badgerDB.Close()

	journal := NewBadgerCallJournal(badgerDB)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	tools := []string{"get_exchange_rates", "convert_currency", "get_currency_trend"}
	for i, tool := range tools {
		err := journal.Record(ctx, &entity.CallRecord{
			Tool:       tool,
			Status:     "ok",
			DurationMS: int64(10 * i),
			At:         start.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("Newest first", func(t *testing.T) {
		records, err := journal.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "get_currency_trend", records[0].Tool)
		assert.Equal(t, "convert_currency", records[1].Tool)
		assert.Equal(t, "get_exchange_rates", records[2].Tool)
		assert.NotEmpty(t, records[0].ID)
	})

	t.Run("Limit is honoured", func(t *testing.T) {
		records, err := journal.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("Oversized limit is clamped", func(t *testing.T) {
		records, err := journal.Recent(ctx, 1_000_000_000_000)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("Missing timestamp is filled", func(t *testing.T) {
		rec := &entity.CallRecord{Tool: "convert_currency", Status: "invalid_params"}
		require.NoError(t, journal.Record(ctx, rec))
		assert.False(t, rec.At.IsZero())

		records, err := journal.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, records[0].ID)
	})
}

func TestBadgerCallJournalRecentCap(t *testing.T) {
	badgerDB, err := OpenBadger("", true)
	require.NoError(t, err)
	defer badgerDB.Close()

	journal := NewBadgerCallJournal(badgerDB)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < MaxRecentLimit+5; i++ {
		require.NoError(t, journal.Record(ctx, &entity.CallRecord{
			Tool:   "get_exchange_rates",
			Status: "ok",
			At:     start.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := journal.Recent(ctx, MaxRecentLimit*4)
	require.NoError(t, err)
	assert.Len(t, records, MaxRecentLimit)

	records, err = journal.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, DefaultRecentLimit)
}

func TestOpenBadgerReadOnly(t *testing.T) {
	dir := t.TempDir()

	writer, err := OpenBadger(dir, false)
	require.NoError(t, err)
	require.NoError(t, NewBadgerCallJournal(writer).Record(context.Background(), &entity.CallRecord{
		Tool:   "convert_currency",
		Status: "ok",
	}))
	require.NoError(t, writer.Close())

	reader, err := OpenBadgerReadOnly(dir)
	require.NoError(t, err)
	defer reader.Close()

	records, err := NewBadgerCallJournal(reader).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "convert_currency", records[0].Tool)
}
