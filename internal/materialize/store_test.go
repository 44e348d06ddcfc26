package materialize

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/mo"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
)

// memStore implements both stores with the same semantics as the Postgres
// adapters: idempotent inserts per date and a monotonic watermark.
type memStore struct {
	mu         sync.Mutex
	series     []occurrence.EventSeries
	watermarks map[string]rrule.Date
	instances  map[string]map[rrule.Date]storage.Instance
	pages      []string
}

func newMemStore(series ...occurrence.EventSeries) *memStore {
	sorted := append([]occurrence.EventSeries(nil), series...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &memStore{
		series:     sorted,
		watermarks: map[string]rrule.Date{},
		instances:  map[string]map[rrule.Date]storage.Instance{},
	}
}

func (m *memStore) CreateSeries(_ context.Context, s occurrence.EventSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.series {
		if existing.Slug == s.Slug {
			return storage.ErrDuplicate
		}
	}
	m.series = append(m.series, s)
	sort.Slice(m.series, func(i, j int) bool { return m.series[i].ID < m.series[j].ID })
	return nil
}

func (m *memStore) GetSeriesBySlug(_ context.Context, slug string) (occurrence.EventSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.series {
		if s.Slug == slug {
			return s, nil
		}
	}
	return occurrence.EventSeries{}, storage.ErrNotFound
}

func (m *memStore) ListActiveSeries(_ context.Context, afterID string, limit int) ([]occurrence.EventSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, afterID)

	var out []occurrence.EventSeries
	for _, s := range m.series {
		if s.Status != occurrence.StatusActive || s.ID <= afterID {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) ReadWatermark(_ context.Context, seriesID string) (mo.Option[rrule.Date], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.watermarks[seriesID]; ok {
		return mo.Some(d), nil
	}
	return mo.None[rrule.Date](), nil
}

func (m *memStore) AddExclusion(_ context.Context, seriesID string, date rrule.Date) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.series {
		if m.series[i].ID == seriesID {
			r, err := rrule.ParseRRule(m.series[i].RRule)
			if err != nil {
				return "", err
			}
			m.series[i].RRule = r.WithExcludedDate(date).String()
			delete(m.instances[seriesID], date)
			return m.series[i].RRule, nil
		}
	}
	return "", storage.ErrNotFound
}

func (m *memStore) Flush(_ context.Context, seriesID string, instances []storage.Instance, through rrule.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if durable, ok := m.watermarks[seriesID]; ok && !through.After(durable) {
		return nil
	}
	rows := m.instances[seriesID]
	if rows == nil {
		rows = map[rrule.Date]storage.Instance{}
		m.instances[seriesID] = rows
	}
	for _, inst := range instances {
		if _, exists := rows[inst.Date]; !exists {
			rows[inst.Date] = inst
		}
	}
	m.watermarks[seriesID] = through
	return nil
}

func (m *memStore) datesFor(seriesID string) []rrule.Date {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rrule.Date, 0, len(m.instances[seriesID]))
	for d := range m.instances[seriesID] {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
