package materialize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
	storagemocks "github.com/tempo-lab/project-tempo/internal/mocks/storage"
)

func d(y int, m time.Month, day int) rrule.Date { return rrule.NewDate(y, m, day) }

func runClub() occurrence.EventSeries {
	return occurrence.EventSeries{
		ID:        "1a000000-0000-0000-0000-000000000001",
		Slug:      "tuesday-run-club",
		Title:     "Tuesday Run Club",
		RRule:     "FREQ=WEEKLY;BYDAY=TU",
		Status:    occurrence.StatusActive,
		StartDate: d(2025, time.January, 7),
		StartTime: occurrence.TimeOfDay{Hour: 19},
		Duration:  90 * time.Minute,
		Timezone:  "America/New_York",
	}
}

func potluck() occurrence.EventSeries {
	return occurrence.EventSeries{
		ID:        "2b000000-0000-0000-0000-000000000002",
		Slug:      "first-saturday-potluck",
		Title:     "Potluck",
		RRule:     "FREQ=MONTHLY;BYDAY=1SA",
		Status:    occurrence.StatusActive,
		StartDate: d(2025, time.January, 4),
		StartTime: occurrence.TimeOfDay{Hour: 12, Minute: 30},
		Duration:  2 * time.Hour,
		Timezone:  "Europe/Paris",
	}
}

func newTestMaterializer(store *memStore, params JobParameter, now time.Time) *Materializer {
	m := NewMaterializer(store, store, params)
	m.now = func() time.Time { return now }
	return m
}

func TestJobParameter_Normalized(t *testing.T) {
	n := JobParameter{}.normalized()
	assert.Equal(t, DefaultJobParameter(), n)
	assert.Equal(t, 90, n.horizonDays())

	custom := JobParameter{BatchSize: 10, WorkerCount: 2, Horizon: 14 * 24 * time.Hour}.normalized()
	assert.Equal(t, 10, custom.BatchSize)
	assert.Equal(t, 14, custom.horizonDays())
}

func TestRun_MaterializesThroughHorizon(t *testing.T) {
	store := newMemStore(runClub(), potluck())
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 30 * 24 * time.Hour}, now)

	summary, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SeriesScanned)
	assert.Equal(t, 2, summary.Materialized)
	assert.Zero(t, summary.Failed)

	assert.Equal(t, []rrule.Date{
		d(2025, time.January, 7), d(2025, time.January, 14), d(2025, time.January, 21),
		d(2025, time.January, 28), d(2025, time.February, 4),
	}, store.datesFor(runClub().ID))
	assert.Equal(t, []rrule.Date{d(2025, time.January, 4), d(2025, time.February, 1)}, store.datesFor(potluck().ID))
	assert.Equal(t, 7, summary.Instances)

	wm, err := store.ReadWatermark(context.Background(), runClub().ID)
	require.NoError(t, err)
	assert.Equal(t, mo.Some(d(2025, time.February, 7)), wm)
}

func TestRun_IsIdempotentForSameWatermark(t *testing.T) {
	store := newMemStore(runClub())
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 14 * 24 * time.Hour}, now)

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	before := store.datesFor(runClub().ID)

	summary, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Instances)
	assert.Equal(t, before, store.datesFor(runClub().ID))

	m.now = func() time.Time { return now.Add(7 * 24 * time.Hour) }
	summary, err = m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Instances)
	assert.Equal(t, append(before, d(2025, time.January, 28)), store.datesFor(runClub().ID))
}

func TestRun_InstancesCarryWallClockTimes(t *testing.T) {
	store := newMemStore(runClub())
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 20 * 24 * time.Hour}, now)

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	for _, inst := range store.instances[runClub().ID] {
		assert.Equal(t, 19, inst.StartsAt.In(loc).Hour(), inst.Date.String())
		assert.Equal(t, 90*time.Minute, inst.EndsAt.Sub(inst.StartsAt))
		assert.Equal(t, InstanceID(runClub().ID, inst.Date), inst.ID)
	}
}

func TestRun_CorruptRuleIsCountedAndOthersContinue(t *testing.T) {
	broken := potluck()
	broken.RRule = "FREQ=FORTNIGHTLY"
	store := newMemStore(runClub(), broken)
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 14 * 24 * time.Hour}, now)

	summary, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SeriesScanned)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "partial", summary.result())
	assert.NotEmpty(t, store.datesFor(runClub().ID))
	assert.Empty(t, store.datesFor(broken.ID))
}

func TestRun_TruncatedExpansionHoldsWatermarkBack(t *testing.T) {
	daily := runClub()
	daily.RRule = "FREQ=DAILY"
	store := newMemStore(daily)
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 5 * 365 * 24 * time.Hour}, now)

	summary, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Truncated)
	assert.Equal(t, occurrence.MaxOccurrences, summary.Instances)

	last := d(2025, time.January, 7).AddDays(occurrence.MaxOccurrences - 1)
	wm, err := store.ReadWatermark(context.Background(), daily.ID)
	require.NoError(t, err)
	assert.Equal(t, mo.Some(last), wm)

	horizonEnd := d(2025, time.January, 8).AddDays(5 * 365)
	summary, err = m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Truncated)
	assert.Equal(t, horizonEnd.DaysSince(last), summary.Instances)
	dates := store.datesFor(daily.ID)
	assert.Equal(t, last.AddDays(1), dates[occurrence.MaxOccurrences])
}

func TestRun_PagesThroughSeries(t *testing.T) {
	store := newMemStore(runClub(), potluck())
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{BatchSize: 1, Horizon: 7 * 24 * time.Hour}, now)

	summary, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SeriesScanned)
	assert.Equal(t, []string{"", runClub().ID, potluck().ID}, store.pages)
}

func TestRun_StorageErrorIsPerSeries(t *testing.T) {
	seriesStore := storagemocks.NewSeriesStore(t)
	instanceStore := storagemocks.NewInstanceStore(t)

	seriesStore.EXPECT().
		ListActiveSeries(mock.Anything, "", defaultBatchSize).
		Return([]occurrence.EventSeries{runClub()}, nil).
		Once()
	seriesStore.EXPECT().
		ReadWatermark(mock.Anything, runClub().ID).
		Return(mo.None[rrule.Date](), errors.New("connection refused")).
		Once()

	m := NewMaterializer(seriesStore, instanceStore, JobParameter{})
	summary, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "failed", summary.result())
}

func TestRun_ListErrorFailsRun(t *testing.T) {
	seriesStore := storagemocks.NewSeriesStore(t)
	instanceStore := storagemocks.NewInstanceStore(t)

	seriesStore.EXPECT().
		ListActiveSeries(mock.Anything, "", defaultBatchSize).
		Return(nil, errors.New("connection refused")).
		Once()

	_, err := NewMaterializer(seriesStore, instanceStore, JobParameter{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list active series")
}

func TestMaterializeSeries(t *testing.T) {
	store := newMemStore(runClub())
	now := time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, JobParameter{Horizon: 14 * 24 * time.Hour}, now)

	res, err := m.MaterializeSeries(context.Background(), runClub())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Instances)
	assert.Equal(t, mo.Some(d(2025, time.January, 22)), res.Through)

	paused := runClub()
	paused.Status = occurrence.StatusPaused
	_, err = m.MaterializeSeries(context.Background(), paused)
	assert.ErrorIs(t, err, occurrence.ErrSeriesNotActive)
}

func TestMaterializeSeries_FlushesExpectedInstances(t *testing.T) {
	seriesStore := storagemocks.NewSeriesStore(t)
	instanceStore := storagemocks.NewInstanceStore(t)
	series := runClub()

	seriesStore.EXPECT().
		ReadWatermark(mock.Anything, series.ID).
		Return(mo.Some(d(2025, time.January, 14)), nil).
		Once()
	instanceStore.EXPECT().
		Flush(mock.Anything, series.ID, mock.Anything, d(2025, time.January, 22)).
		Run(func(_ context.Context, _ string, instances []storage.Instance, _ rrule.Date) {
			require.Len(t, instances, 1)
			assert.Equal(t, d(2025, time.January, 21), instances[0].Date)
			assert.Equal(t, "Tuesday Run Club", instances[0].Title)
		}).
		Return(nil).
		Once()

	m := NewMaterializer(seriesStore, instanceStore, JobParameter{Horizon: 14 * 24 * time.Hour})
	m.now = func() time.Time { return time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC) }

	res, err := m.MaterializeSeries(context.Background(), series)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Instances)
}

func TestInstanceID_Deterministic(t *testing.T) {
	a := InstanceID(runClub().ID, d(2025, time.January, 7))
	assert.Equal(t, a, InstanceID(runClub().ID, d(2025, time.January, 7)))
	assert.NotEqual(t, a, InstanceID(runClub().ID, d(2025, time.January, 14)))
	assert.NotEqual(t, a, InstanceID(potluck().ID, d(2025, time.January, 7)))
}

func TestShard_AssignsEachSeriesOnce(t *testing.T) {
	page := []occurrence.EventSeries{runClub(), potluck()}
	for i := 0; i < 6; i++ {
		s := runClub()
		s.ID = InstanceID("shard", d(2025, time.January, i+1))
		page = append(page, s)
	}

	buckets := shard(page, 3)
	require.Len(t, buckets, 3)

	seen := map[string]int{}
	for _, b := range buckets {
		for _, s := range b {
			seen[s.ID]++
		}
	}
	assert.Len(t, seen, len(page))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestFailureReason(t *testing.T) {
	_, perr := rrule.ParseRRule("FREQ=NOPE")
	assert.Equal(t, "invalid_rule", failureReason(perr))
	assert.Equal(t, "invalid_timezone", failureReason(occurrence.ErrInvalidTimezone))
	assert.Equal(t, "storage", failureReason(errStorage))
}
