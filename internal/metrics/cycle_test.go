package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCycleGauges(t *testing.T) {
	provider, err := NewProvider("cycle_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	err = RegisterCycleGauges(provider.MeterProvider(), "cycle_test", func() CycleSnapshot {
		return CycleSnapshot{
			Running:         true,
			CyclesCompleted: 4,
			CyclesFailed:    1,
			LastCycle:       map[string]int{"distributed": 3, "skipped": 2},
		}
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	output := w.Body.String()

	assert.Regexp(t, `cycle_test_cycle_running\{[^}]*\} 1`, output)
	assertBizMetricLine(t, output, `cycle_test_cycles_total`, `status="completed"`, `4`)
	assertBizMetricLine(t, output, `cycle_test_cycles_total`, `status="failed"`, `1`)
	assertBizMetricLine(t, output, `cycle_test_last_cycle_records`, `outcome="distributed"`, `3`)
	assertBizMetricLine(t, output, `cycle_test_last_cycle_records`, `outcome="skipped"`, `2`)
}
