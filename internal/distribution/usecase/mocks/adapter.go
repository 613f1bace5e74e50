// Package mocks provides testify mocks for the distribution use case collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	distributionDomain "github.com/allisson/reelcast/internal/distribution/domain"
)

// MockAdapter is a mock implementation of usecase.Adapter.
type MockAdapter struct {
	mock.Mock
}

// Name mocks the Name method.
func (m *MockAdapter) Name() string {
	args := m.Called()
	return args.String(0)
}

// Post mocks the Post method.
func (m *MockAdapter) Post(
	ctx context.Context,
	input distributionDomain.PostInput,
	creds map[string]string,
) (string, error) {
	args := m.Called(ctx, input, creds)
	return args.String(0), args.Error(1)
}
