package commands

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/reelcast/internal/audit/domain"
	auditUseCase "github.com/allisson/reelcast/internal/audit/usecase"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	pipelineUseCase "github.com/allisson/reelcast/internal/pipeline/usecase"
)

type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) Persist(ctx context.Context, events []auditDomain.Event) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *mockAuditUseCase) List(
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

func (m *mockAuditUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditUseCase.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditUseCase.VerificationReport), args.Error(1)
}

func (m *mockAuditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

type mockPipelineUseCase struct {
	mock.Mock
}

func (m *mockPipelineUseCase) RunCycle(
	ctx context.Context,
	opts pipelineUseCase.RunOptions,
) (*pipelineDomain.CycleReport, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipelineDomain.CycleReport), args.Error(1)
}

func (m *mockPipelineUseCase) Start(ctx context.Context, interval time.Duration, opts pipelineUseCase.RunOptions) error {
	args := m.Called(ctx, interval, opts)
	return args.Error(0)
}

func (m *mockPipelineUseCase) DefaultOptions() pipelineUseCase.RunOptions {
	args := m.Called()
	return args.Get(0).(pipelineUseCase.RunOptions)
}
