// Package mocks provides mock implementations of the generation use case dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// MockScriptGenerator is a mock implementation of ScriptGenerator.
type MockScriptGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockScriptGenerator) Generate(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (string, error) {
	args := m.Called(ctx, record, params)
	return args.String(0), args.Error(1)
}

// MockAssetGenerator is a mock implementation of AssetGenerator.
type MockAssetGenerator struct {
	mock.Mock
}

// Submit mocks the Submit method.
func (m *MockAssetGenerator) Submit(ctx context.Context, request generationDomain.AssetRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

// Poll mocks the Poll method.
func (m *MockAssetGenerator) Poll(ctx context.Context, jobID string) (generationDomain.JobStatus, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(generationDomain.JobStatus), args.Error(1)
}

// MockProber is a mock implementation of Prober.
type MockProber struct {
	mock.Mock
}

// Probe mocks the Probe method.
func (m *MockProber) Probe(ctx context.Context, assetURL string) error {
	args := m.Called(ctx, assetURL)
	return args.Error(0)
}
