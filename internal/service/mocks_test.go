package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rootlinehq/rootline/internal/models"
)

// auditCall records one RecordAudit invocation.
type auditCall struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]any
}

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []auditCall
	err   error
}

func (m *mockAuditor) RecordAudit(
	_ context.Context, userID, action, entityType, entityID string, detail map[string]any,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, auditCall{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
	return m.err
}

func (m *mockAuditor) getCalls() []auditCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auditCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockMergeStore records calls and returns configured responses.
type mockMergeStore struct {
	mu    sync.Mutex
	calls []string

	previewMerge func(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error)
	executeMerge func(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error)
}

func (m *mockMergeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockMergeStore) PreviewMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error) {
	m.record("PreviewMerge")
	return m.previewMerge(ctx, userID, req)
}

func (m *mockMergeStore) ExecuteMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error) {
	m.record("ExecuteMerge")
	return m.executeMerge(ctx, userID, req)
}

func (m *mockMergeStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockPersonStore records calls and returns configured responses.
type mockPersonStore struct {
	mu    sync.Mutex
	calls []string

	getPerson         func(ctx context.Context, personID uuid.UUID) (*models.Person, error)
	listRelationships func(ctx context.Context, personID uuid.UUID) ([]models.Relationship, error)
}

func (m *mockPersonStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockPersonStore) GetPerson(ctx context.Context, personID uuid.UUID) (*models.Person, error) {
	m.record("GetPerson")
	return m.getPerson(ctx, personID)
}

func (m *mockPersonStore) ListRelationships(ctx context.Context, personID uuid.UUID) ([]models.Relationship, error) {
	m.record("ListRelationships")
	return m.listRelationships(ctx, personID)
}

// mockAuditEnqueuer records enqueued audit jobs.
type mockAuditEnqueuer struct {
	mu   sync.Mutex
	jobs []*AuditJob
}

func (m *mockAuditEnqueuer) Enqueue(job *AuditJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func (m *mockAuditEnqueuer) getJobs() []*AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*AuditJob, len(m.jobs))
	copy(out, m.jobs)
	return out
}
