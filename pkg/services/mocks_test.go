package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/render"
)

// mockProjectRepository is a configurable in-memory ProjectRepository.
type mockProjectRepository struct {
	mu      sync.Mutex
	records map[string]models.DiscoveryRecord
	saveErr error
	listErr error
	getErr  error
	updErr  error

	// Capture inputs for verification
	saved      []models.DiscoveryRecord
	saveCalls  int
	statusSets map[string]models.RecordStatus

	// block, when set, is received from before Save returns.
	block chan struct{}
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		records:    make(map[string]models.DiscoveryRecord),
		statusSets: make(map[string]models.RecordStatus),
	}
}

func (m *mockProjectRepository) Save(ctx context.Context, rec models.DiscoveryRecord) (*models.DiscoveryRecord, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	m.saved = append(m.saved, rec)
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		rec.ID = uuid.NewString()
	}
	m.records[rec.ID] = rec
	return &rec, nil
}

func (m *mockProjectRepository) List(ctx context.Context) ([]models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.DiscoveryRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id string) (*models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (m *mockProjectRepository) UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updErr != nil {
		return m.updErr
	}
	r, ok := m.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !r.Status.CanTransitionTo(status) {
		return apperrors.ErrInvalidTransition
	}
	r.Status = status
	m.records[id] = r
	m.statusSets[id] = status
	return nil
}

// mockMirror records draft writes.
type mockMirror struct {
	mu      sync.Mutex
	drafts  map[string]models.DiscoveryRecord
	saves   int
	deletes []string
	saveErr error
	loadErr error
}

func newMockMirror() *mockMirror {
	return &mockMirror{drafts: make(map[string]models.DiscoveryRecord)}
}

func (m *mockMirror) Save(ctx context.Context, rec models.DiscoveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.drafts[rec.ID] = rec
	return nil
}

func (m *mockMirror) Load(ctx context.Context, id string) (*models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	r, ok := m.drafts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (m *mockMirror) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	delete(m.drafts, id)
	return nil
}

func (m *mockMirror) List(ctx context.Context) ([]models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DiscoveryRecord, 0, len(m.drafts))
	for _, r := range m.drafts {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockMirror) Close() error { return nil }

func (m *mockMirror) draft(id string) (models.DiscoveryRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.drafts[id]
	return r, ok
}

// mockRenderer returns a fixed graphic or error.
type mockRenderer struct {
	mu      sync.Mutex
	docs    []string
	err     error
	graphic *render.Graphic
}

func (m *mockRenderer) Render(ctx context.Context, doc string) (*render.Graphic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	if m.err != nil {
		return nil, m.err
	}
	if m.graphic != nil {
		return m.graphic, nil
	}
	return &render.Graphic{ContentType: "image/svg+xml", Data: []byte("<svg/>")}, nil
}
