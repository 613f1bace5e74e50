// Package mocks provides testify mocks for the pipeline collaborators.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
	sourceService "github.com/allisson/reelcast/internal/source/service"
)

// MockCandidateSource is a mock implementation of usecase.CandidateSource.
type MockCandidateSource struct {
	mock.Mock
}

// Fetch mocks the Fetch method.
func (m *MockCandidateSource) Fetch(
	ctx context.Context,
	sourceRef string,
	opts sourceService.FetchOptions,
) ([]sourceDomain.ProductRecord, *sourceDomain.Diagnostic, error) {
	args := m.Called(ctx, sourceRef, opts)
	var records []sourceDomain.ProductRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]sourceDomain.ProductRecord)
	}
	var diag *sourceDomain.Diagnostic
	if args.Get(1) != nil {
		diag = args.Get(1).(*sourceDomain.Diagnostic)
	}
	return records, diag, args.Error(2)
}

// MockWritebackSink is a mock implementation of usecase.WritebackSink.
type MockWritebackSink struct {
	mock.Mock
}

// Enabled mocks the Enabled method.
func (m *MockWritebackSink) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// Writeback mocks the Writeback method.
func (m *MockWritebackSink) Writeback(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	payload sourceDomain.WritebackPayload,
) error {
	args := m.Called(ctx, record, payload)
	return args.Error(0)
}

// MockGenerationUseCase is a mock implementation of the generation use case.
type MockGenerationUseCase struct {
	mock.Mock
}

// Generate mocks the Generate method.
func (m *MockGenerationUseCase) Generate(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (*generationDomain.Result, error) {
	args := m.Called(ctx, record, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generationDomain.Result), args.Error(1)
}

// GenerateScript mocks the GenerateScript method.
func (m *MockGenerationUseCase) GenerateScript(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (string, bool, error) {
	args := m.Called(ctx, record, params)
	return args.String(0), args.Bool(1), args.Error(2)
}

// GenerateAsset mocks the GenerateAsset method.
func (m *MockGenerationUseCase) GenerateAsset(
	ctx context.Context,
	request generationDomain.AssetRequest,
) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

// PollUntilReady mocks the PollUntilReady method.
func (m *MockGenerationUseCase) PollUntilReady(
	ctx context.Context,
	jobID string,
	timeout, interval time.Duration,
) (string, error) {
	args := m.Called(ctx, jobID, timeout, interval)
	return args.String(0), args.Error(1)
}
