// Package mocks provides mock implementations of the lock use case dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	lockDomain "github.com/allisson/reelcast/internal/lock/domain"
)

// MockLockRepository is a mock implementation of LockRepository.
type MockLockRepository struct {
	mock.Mock
}

// TryAcquire mocks the TryAcquire method.
func (m *MockLockRepository) TryAcquire(ctx context.Context, lock *lockDomain.ProcessingLock) (bool, error) {
	args := m.Called(ctx, lock)
	return args.Bool(0), args.Error(1)
}

// Release mocks the Release method.
func (m *MockLockRepository) Release(ctx context.Context, lockID string, token uuid.UUID) error {
	args := m.Called(ctx, lockID, token)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockLockRepository) Get(ctx context.Context, lockID string) (*lockDomain.ProcessingLock, error) {
	args := m.Called(ctx, lockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lockDomain.ProcessingLock), args.Error(1)
}

// List mocks the List method.
func (m *MockLockRepository) List(ctx context.Context) ([]*lockDomain.ProcessingLock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lockDomain.ProcessingLock), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
