package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/reelcast/internal/config"
	pipelineDomain "github.com/allisson/reelcast/internal/pipeline/domain"
	pipelineUseCase "github.com/allisson/reelcast/internal/pipeline/usecase"
	"github.com/allisson/reelcast/internal/testutil"
)

const cycleSource = `Product ID,Title,Description,Ready,Posted
SKU-1,Trail Running Shoes,Lightweight shoes for rough terrain,yes,
SKU-2,Ceramic Mug,Holds 350ml of coffee,no,
SKU-3,Desk Lamp,Warm LED light,yes,yes
`

// upstream fakes the asset-generation service, the asset host and one link platform.
type upstream struct {
	server *httptest.Server
	jobs   atomic.Int32
	posts  atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		u.jobs.Add(1)
		writeTestJSON(w, map[string]string{"id": "job-1", "status": "queued"})
	})
	mux.HandleFunc("GET /jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]string{"status": "completed", "video_url": u.server.URL + "/assets/job-1.mp4"})
	})
	mux.HandleFunc("HEAD /assets/job-1.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /social/posts", func(w http.ResponseWriter, r *http.Request) {
		u.posts.Add(1)
		writeTestJSON(w, map[string]string{"id": "post-1"})
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// sqliteCycleConfig points a container at a migrated SQLite file, a local CSV source
// and the fake upstream.
func sqliteCycleConfig(t *testing.T, u *upstream) *config.Config {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(source, []byte(cycleSource), 0o600))

	platforms := filepath.Join(dir, "platforms.yaml")
	require.NoError(t, os.WriteFile(platforms, []byte(`platforms:
  - name: social
    kind: link
    endpoint: `+u.server.URL+`/social/posts
    max_attempts: 1
`), 0o600))

	return &config.Config{
		LogLevel:                 "error",
		DBDriver:                 "sqlite3",
		DBConnectionString:       testutil.SetupSQLiteFile(t),
		DBMaxOpenConnections:     4,
		DBMaxIdleConnections:     4,
		DBConnMaxLifetime:        time.Minute,
		InstanceID:               "worker-1",
		MetricsNamespace:         "reelcast_test",
		SourceURL:                source,
		SourceTimeout:            5 * time.Second,
		SourceIDAliases:          []string{"product id"},
		SourceTitleAliases:       []string{"title"},
		SourceDescriptionAliases: []string{"description"},
		SourceReadyAliases:       []string{"ready"},
		SourcePostedAliases:      []string{"posted"},
		AssetAPIURL:              u.server.URL,
		AssetPollInterval:        10 * time.Millisecond,
		AssetPollTimeout:         5 * time.Second,
		LockTTL:                  time.Minute,
		DistributionPolicy:       "any",
		AuditPersist:             true,
		AuditSigningKey:          "cycle-test-signing-key",
		MappingFile:              filepath.Join(dir, "missing-mapping.yaml"),
		PlatformsFile:            platforms,
	}
}

func TestContainer_RunCycleAgainstSQLite(t *testing.T) {
	u := newUpstream(t)
	container := NewContainer(sqliteCycleConfig(t, u))
	t.Cleanup(func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	pipeline, err := container.PipelineUseCase()
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Now().Add(-time.Minute)

	t.Run("first cycle distributes the ready record", func(t *testing.T) {
		report, err := pipeline.RunCycle(ctx, pipelineUseCase.RunOptions{})
		require.NoError(t, err)

		assert.Equal(t, 1, report.Candidates)
		require.Len(t, report.Records, 1)
		record := report.Records[0]
		assert.Equal(t, "SKU-1", record.RecordID)
		assert.Equal(t, pipelineDomain.OutcomeDistributed, record.Outcome)
		assert.True(t, record.Committed)
		assert.Equal(t, "job-1", record.JobID)
		assert.Equal(t, int32(1), u.jobs.Load())
		assert.Equal(t, int32(1), u.posts.Load())
	})

	t.Run("ledger holds the committed record", func(t *testing.T) {
		ledger, err := container.LedgerUseCase()
		require.NoError(t, err)

		processed, err := ledger.HasProcessed(ctx, "SKU-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("second cycle skips the processed record", func(t *testing.T) {
		report, err := pipeline.RunCycle(ctx, pipelineUseCase.RunOptions{})
		require.NoError(t, err)

		require.Len(t, report.Records, 1)
		assert.Equal(t, pipelineDomain.OutcomeSkipped, report.Records[0].Outcome)
		assert.Equal(t, pipelineDomain.SkipReasonProcessed, report.Records[0].Reason)
		assert.Equal(t, int32(1), u.posts.Load())
	})

	t.Run("locks are released", func(t *testing.T) {
		locks, err := container.LockUseCase()
		require.NoError(t, err)

		held, err := locks.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, held)
	})

	t.Run("persisted audit trail verifies", func(t *testing.T) {
		audit, err := container.AuditUseCase()
		require.NoError(t, err)

		report, err := audit.VerifyBatch(ctx, start, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Positive(t, report.TotalChecked)
		assert.Equal(t, report.TotalChecked, report.SignedCount)
		assert.Zero(t, report.InvalidCount)
	})

	t.Run("status reflects both cycles", func(t *testing.T) {
		status := container.StatusTracker().Snapshot()
		assert.False(t, status.Running)
		assert.Equal(t, 2, status.CyclesCompleted)
		assert.Zero(t, status.CyclesFailed)
	})
}

func TestContainer_DryRunCycleLeavesNoTrace(t *testing.T) {
	u := newUpstream(t)
	container := NewContainer(sqliteCycleConfig(t, u))
	t.Cleanup(func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	pipeline, err := container.PipelineUseCase()
	require.NoError(t, err)

	report, err := pipeline.RunCycle(context.Background(), pipelineUseCase.RunOptions{DryRun: true})
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	assert.Equal(t, pipelineDomain.OutcomeDistributed, report.Records[0].Outcome)
	assert.False(t, report.Records[0].Committed)
	assert.Zero(t, u.jobs.Load())
	assert.Zero(t, u.posts.Load())

	ledger, err := container.LedgerUseCase()
	require.NoError(t, err)
	processed, err := ledger.HasProcessed(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.False(t, processed)
}
