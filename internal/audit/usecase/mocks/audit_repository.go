// Package mocks provides mock implementations of the audit use case dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
)

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	from, to *time.Time,
) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, offset, limit, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, cutoff, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
