// Package mocks provides mock implementations of the ledger use case dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	ledgerDomain "github.com/allisson/reelcast/internal/ledger/domain"
)

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

// Insert mocks the Insert method.
func (m *MockLedgerRepository) Insert(ctx context.Context, entry *ledgerDomain.IdempotencyEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockLedgerRepository) Get(ctx context.Context, recordID string) (*ledgerDomain.IdempotencyEntry, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerDomain.IdempotencyEntry), args.Error(1)
}

// List mocks the List method.
func (m *MockLedgerRepository) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.IdempotencyEntry, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledgerDomain.IdempotencyEntry), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockLedgerRepository) Delete(ctx context.Context, recordID string) (bool, error) {
	args := m.Called(ctx, recordID)
	return args.Bool(0), args.Error(1)
}
