package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikepulse/bikepulse/internal/availability"
)

func ptrInt64(v int64) *int64 { return &v }

func ptrString(v string) *string { return &v }

func snapshotAt(stationID int64, ts time.Time, bikes int64) *availability.Snapshot {
	return &availability.Snapshot{
		StationID:           stationID,
		SnapshotTime:        ts,
		BikeStands:          ptrInt64(30),
		AvailableBikeStands: ptrInt64(30 - bikes),
		AvailableBikes:      ptrInt64(bikes),
		Status:              ptrString("OPEN"),
	}
}

func TestInMemoryRepository_InsertAndScan(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Insert(ctx, snapshotAt(42, base.Add(time.Duration(i)*5*time.Minute), int64(i)))
		require.NoError(t, err)
	}

	results, err := repo.ScanByStation(ctx, 42, availability.ScanOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Newest first by default.
	assert.Equal(t, base.Add(10*time.Minute), results[0].SnapshotTime)
	assert.Equal(t, base, results[2].SnapshotTime)
}

func TestInMemoryRepository_InsertRejectsDuplicateKey(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	ts := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	first := snapshotAt(42, ts, 5)
	require.NoError(t, repo.Insert(ctx, first))

	// Same key, different payload: first write wins.
	second := snapshotAt(42, ts, 9)
	err := repo.Insert(ctx, second)
	assert.ErrorIs(t, err, availability.ErrDuplicateSnapshot)

	results, err := repo.ScanByStation(ctx, 42, availability.ScanOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(5), *results[0].AvailableBikes)
}

func TestInMemoryRepository_DuplicateKeyAcrossZones(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	loc := time.FixedZone("IST", 3600)
	utc := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, snapshotAt(42, utc, 1)))
	// Same instant expressed in a different zone is the same key.
	err := repo.Insert(ctx, snapshotAt(42, utc.In(loc), 2))
	assert.ErrorIs(t, err, availability.ErrDuplicateSnapshot)
}

func TestInMemoryRepository_SameTimeDifferentStations(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	ts := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, ts, 1)))
	require.NoError(t, repo.Insert(ctx, snapshotAt(43, ts, 2)))

	ids, err := repo.DistinctStations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 43}, ids)
}

func TestInMemoryRepository_ScanTimeBoundsInclusive(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 2, 3, 9, 59, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 11, 1, 0, 0, time.UTC),
	}
	for i, ts := range times {
		require.NoError(t, repo.Insert(ctx, snapshotAt(42, ts, int64(i))))
	}

	from := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC)
	results, err := repo.ScanByStation(ctx, 42, availability.ScanOptions{From: &from, To: &to})
	require.NoError(t, err)

	// Both boundary snapshots included, 09:59 and 11:01 excluded.
	require.Len(t, results, 3)
	assert.Equal(t, to, results[0].SnapshotTime)
	assert.Equal(t, from, results[2].SnapshotTime)
}

func TestInMemoryRepository_ScanOffsetAndLimit(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, snapshotAt(42, base.Add(time.Duration(i)*time.Minute), int64(i))))
	}

	results, err := repo.ScanByStation(ctx, 42, availability.ScanOptions{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), *results[0].AvailableBikes)
	assert.Equal(t, int64(1), *results[1].AvailableBikes)

	// Offset past the end yields empty results, not an error.
	results, err = repo.ScanByStation(ctx, 42, availability.ScanOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryRepository_StatsSkipsNullSamples(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, base, 10)))
	require.NoError(t, repo.Insert(ctx, &availability.Snapshot{
		StationID:    42,
		SnapshotTime: base.Add(5 * time.Minute),
	}))
	require.NoError(t, repo.Insert(ctx, snapshotAt(43, base, 20)))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRecords)
	assert.Equal(t, int64(2), stats.UniqueStations)
	// The null sample does not drag the mean down.
	assert.InDelta(t, 15.0, stats.AvgBikesAvailable, 0.001)
}

func TestInMemoryRepository_SearchByAvailability(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, base, 2)))
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, base.Add(5*time.Minute), 8)))
	closed := snapshotAt(43, base, 8)
	closed.Status = ptrString("CLOSED")
	require.NoError(t, repo.Insert(ctx, closed))
	// Null availability never matches a numeric filter.
	require.NoError(t, repo.Insert(ctx, &availability.Snapshot{
		StationID:    44,
		SnapshotTime: base,
		Status:       ptrString("OPEN"),
	}))

	results, err := repo.SearchByAvailability(ctx, availability.AvailabilityFilter{MinBikes: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Status match is a case-insensitive substring.
	results, err = repo.SearchByAvailability(ctx, availability.AvailabilityFilter{
		MinBikes: 0,
		Status:   ptrString("clo"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(43), results[0].StationID)

	// Max bound is inclusive.
	results, err = repo.SearchByAvailability(ctx, availability.AvailabilityFilter{
		MinBikes: 2,
		MaxBikes: ptrInt64(2),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), *results[0].AvailableBikes)
}

func TestInMemoryRepository_ListAllOrdered(t *testing.T) {
	repo := availability.NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, snapshotAt(43, base, 1)))
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, base.Add(time.Minute), 2)))
	require.NoError(t, repo.Insert(ctx, snapshotAt(42, base, 3)))

	results, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(42), results[0].StationID)
	assert.Equal(t, base, results[0].SnapshotTime)
	assert.Equal(t, int64(43), results[2].StationID)
}
