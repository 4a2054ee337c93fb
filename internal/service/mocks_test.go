package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/calyptra/autopress/internal/analytics"
	"github.com/calyptra/autopress/internal/domain"
	"github.com/calyptra/autopress/internal/events"
	"github.com/calyptra/autopress/internal/generation"
	"github.com/calyptra/autopress/internal/publisher"
	"github.com/calyptra/autopress/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clone deep-copies a value through JSON so mutate callbacks that fail
// cannot leak partial changes into the fake stores.
func clone[T any](t *testing.T, v *T) *T {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("clone marshal: %v", err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("clone unmarshal: %v", err)
	}
	return out
}

// --- stores ---

type mockBatchJobStore struct {
	t    *testing.T
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.BatchJob
}

func newMockBatchJobStore(t *testing.T) *mockBatchJobStore {
	return &mockBatchJobStore{t: t, jobs: make(map[uuid.UUID]*domain.BatchJob)}
}

func (m *mockBatchJobStore) CreateBatchJob(_ context.Context, job *domain.BatchJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return store.ErrConflict
	}
	m.jobs[job.ID] = clone(m.t, job)
	return nil
}

func (m *mockBatchJobStore) GetBatchJob(_ context.Context, id uuid.UUID) (*domain.BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrBatchJobNotFound
	}
	return clone(m.t, job), nil
}

func (m *mockBatchJobStore) UpdateBatchJob(
	_ context.Context,
	id uuid.UUID,
	mutate func(job *domain.BatchJob) error,
) (*domain.BatchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrBatchJobNotFound
	}
	working := clone(m.t, job)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.jobs[id] = working
	return clone(m.t, working), nil
}

type mockPublishingJobStore struct {
	t    *testing.T
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.PublishingJob
}

func newMockPublishingJobStore(t *testing.T) *mockPublishingJobStore {
	return &mockPublishingJobStore{t: t, jobs: make(map[uuid.UUID]*domain.PublishingJob)}
}

func (m *mockPublishingJobStore) CreatePublishingJob(_ context.Context, job *domain.PublishingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return store.ErrConflict
	}
	m.jobs[job.ID] = clone(m.t, job)
	return nil
}

func (m *mockPublishingJobStore) GetPublishingJob(_ context.Context, id uuid.UUID) (*domain.PublishingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrPublishingJobNotFound
	}
	return clone(m.t, job), nil
}

func (m *mockPublishingJobStore) UpdatePublishingJob(
	_ context.Context,
	id uuid.UUID,
	mutate func(job *domain.PublishingJob) error,
) (*domain.PublishingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrPublishingJobNotFound
	}
	working := clone(m.t, job)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.jobs[id] = working
	return clone(m.t, working), nil
}

type mockResearchStore struct {
	jobs map[uuid.UUID]*domain.ResearchJob
}

func newMockResearchStore() *mockResearchStore {
	return &mockResearchStore{jobs: make(map[uuid.UUID]*domain.ResearchJob)}
}

func (m *mockResearchStore) GetResearchJob(_ context.Context, id uuid.UUID) (*domain.ResearchJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrResearchJobNotFound
	}
	return job, nil
}

type mockContentStore struct {
	t       *testing.T
	mu      sync.Mutex
	items   map[uuid.UUID]*domain.GeneratedContent
	ordered []uuid.UUID
}

func newMockContentStore(t *testing.T) *mockContentStore {
	return &mockContentStore{t: t, items: make(map[uuid.UUID]*domain.GeneratedContent)}
}

func (m *mockContentStore) CreateContent(_ context.Context, content *domain.GeneratedContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[content.ID]; exists {
		return store.ErrConflict
	}
	m.items[content.ID] = clone(m.t, content)
	m.ordered = append(m.ordered, content.ID)
	return nil
}

func (m *mockContentStore) GetContent(_ context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrContentNotFound
	}
	return clone(m.t, item), nil
}

func (m *mockContentStore) GetApprovedContent(_ context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || !item.Approved {
		return nil, store.ErrContentNotFound
	}
	return clone(m.t, item), nil
}

func (m *mockContentStore) ListContentByBatchJob(_ context.Context, batchJobID uuid.UUID) ([]*domain.GeneratedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.GeneratedContent
	for _, id := range m.ordered {
		if m.items[id].BatchJobID == batchJobID {
			out = append(out, clone(m.t, m.items[id]))
		}
	}
	return out, nil
}

type mockMetricsStore struct {
	t       *testing.T
	mu      sync.Mutex
	records map[uuid.UUID]*domain.PerformanceRecord
}

func newMockMetricsStore(t *testing.T) *mockMetricsStore {
	return &mockMetricsStore{t: t, records: make(map[uuid.UUID]*domain.PerformanceRecord)}
}

func (m *mockMetricsStore) CreateRecord(_ context.Context, record *domain.PerformanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[record.ContentID]; exists {
		return store.ErrConflict
	}
	m.records[record.ContentID] = clone(m.t, record)
	return nil
}

func (m *mockMetricsStore) GetRecord(_ context.Context, contentID uuid.UUID) (*domain.PerformanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[contentID]
	if !ok {
		return nil, store.ErrPerformanceNotFound
	}
	return clone(m.t, record), nil
}

func (m *mockMetricsStore) UpdateRecord(
	_ context.Context,
	contentID uuid.UUID,
	mutate func(record *domain.PerformanceRecord) error,
) (*domain.PerformanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[contentID]
	if !ok {
		return nil, store.ErrPerformanceNotFound
	}
	working := clone(m.t, record)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.records[contentID] = working
	return clone(m.t, working), nil
}

type mockFineTuningStore struct {
	mu      sync.Mutex
	entries []*domain.FineTuningEntry
	seen    map[string]struct{}
}

func newMockFineTuningStore() *mockFineTuningStore {
	return &mockFineTuningStore{seen: make(map[string]struct{})}
}

func (m *mockFineTuningStore) Append(_ context.Context, entry *domain.FineTuningEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s:%s", entry.ContentID, entry.Period)
	if _, dup := m.seen[key]; dup {
		return false, nil
	}
	m.seen[key] = struct{}{}
	m.entries = append(m.entries, entry)
	return true, nil
}

func (m *mockFineTuningStore) List(_ context.Context, limit int) ([]*domain.FineTuningEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.entries
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return append([]*domain.FineTuningEntry(nil), out...), nil
}

// --- capabilities ---

type mockGenerator struct {
	mu       sync.Mutex
	calls    int
	generate func(call int, req generation.Request) (*generation.Result, error)
}

func (m *mockGenerator) Generate(_ context.Context, req generation.Request) (*generation.Result, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	return m.generate(call, req)
}

type mockPublisher struct {
	mu            sync.Mutex
	connectionErr error
	publishErr    error
	result        *publisher.PublishResult
	published     []uuid.UUID
}

func (m *mockPublisher) Publish(
	_ context.Context,
	content *domain.GeneratedContent,
	_ *domain.SiteConfig,
	_ domain.PublishSettings,
	_ string,
) (*publisher.PublishResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	m.published = append(m.published, content.ID)
	return m.result, nil
}

func (m *mockPublisher) CheckConnection(_ context.Context, _ string) error {
	return m.connectionErr
}

type mockCollector struct {
	metrics *analytics.Metrics
	err     error
}

func (m *mockCollector) Fetch(_ context.Context, _ string) (*analytics.Metrics, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.metrics, nil
}

type mockRouter struct {
	siteID string
	err    error
}

func (m *mockRouter) DetermineTargetSite(_ *domain.RouteRequest) (string, error) {
	return m.siteID, m.err
}

type mockSiteProvider struct {
	sites map[string]*domain.SiteConfig
}

func (m *mockSiteProvider) Get(id string) (*domain.SiteConfig, bool) {
	site, ok := m.sites[id]
	return site, ok
}

// captureEmitter records emitted events instead of dispatching them.
type captureEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (e *captureEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func (e *captureEmitter) byType(taskType string) []*events.TaskRequestEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*events.TaskRequestEvent
	for _, ev := range e.events {
		if ev.Type == taskType {
			out = append(out, ev)
		}
	}
	return out
}
