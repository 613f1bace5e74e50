package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/reelcast/internal/credential"
	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

var params = mapping.Parameters{Avatar: "coastal_grower", Voice: "calm_female", DurationSeconds: 30, Reason: "kelp"}

func record() sourceDomain.ProductRecord {
	return sourceDomain.ProductRecord{RecordID: "SKU-1", Title: "Kelp Meal", Description: "Cold water kelp"}
}

func TestScriptService_Generate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Contains(t, req.Messages[1].Content, "Kelp Meal")

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Grow more with kelp. "}}]}`))
		}))
		defer server.Close()

		svc := NewScriptService(server.Client(),
			ScriptConfig{Endpoint: server.URL, APIKeyRef: "sk-test", Model: "gpt-4o-mini"},
			credential.NewDirectResolver())

		script, err := svc.Generate(context.Background(), record(), params)
		require.NoError(t, err)
		assert.Equal(t, "Grow more with kelp.", script)
	})

	t.Run("Unconfigured", func(t *testing.T) {
		svc := NewScriptService(nil, ScriptConfig{}, credential.NewDirectResolver())

		_, err := svc.Generate(context.Background(), record(), params)
		assert.ErrorIs(t, err, generationDomain.ErrScriptUnavailable)
	})

	t.Run("MissingCredential", func(t *testing.T) {
		svc := NewScriptService(nil, ScriptConfig{Endpoint: "http://127.0.0.1:1"}, credential.NewDirectResolver())

		_, err := svc.Generate(context.Background(), record(), params)
		assert.ErrorIs(t, err, generationDomain.ErrScriptUnavailable)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		svc := NewScriptService(server.Client(), ScriptConfig{Endpoint: server.URL, APIKeyRef: "k"}, credential.NewDirectResolver())

		_, err := svc.Generate(context.Background(), record(), params)
		assert.ErrorIs(t, err, generationDomain.ErrScriptUnavailable)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestAssetService_SubmitAndPoll(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs":
			var req submitRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "coastal_grower", req.Avatar)
			assert.Equal(t, 30, req.DurationSeconds)
			assert.Equal(t, "SKU-1", req.Reference)
			_, _ = w.Write([]byte(`{"job_id":"job-42","status":"queued"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/jobs/job-42":
			if polls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"status":"In Progress"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"completed","video_url":"https://cdn.example.com/job-42.mp4"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := NewAssetService(server.Client(), AssetConfig{BaseURL: server.URL + "/v1/"}, credential.NewDirectResolver())
	ctx := context.Background()

	jobID, err := svc.Submit(ctx, generationDomain.AssetRequest{RecordID: "SKU-1", ScriptText: "hi", Parameters: params})
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)

	first, err := svc.Poll(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, generationDomain.StatusRendering, first.Status)
	assert.Equal(t, "In Progress", first.Raw)

	second, err := svc.Poll(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, generationDomain.StatusReady, second.Status)
	assert.Equal(t, "https://cdn.example.com/job-42.mp4", second.AssetURL)
}

func TestAssetService_Unconfigured(t *testing.T) {
	svc := NewAssetService(nil, AssetConfig{}, credential.NewDirectResolver())

	_, err := svc.Submit(context.Background(), generationDomain.AssetRequest{})
	assert.ErrorContains(t, err, "not configured")
}

func TestHTTPProber_Probe(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{
			name:    "head ok",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
		},
		{
			name: "head rejected, ranged get partial content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				assert.Equal(t, "bytes=0-0", r.Header.Get("Range"))
				w.WriteHeader(http.StatusPartialContent)
				_, _ = w.Write([]byte{0})
			},
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			err := NewHTTPProber(server.Client()).Probe(context.Background(), server.URL+"/asset.mp4")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSyntheticAssets(t *testing.T) {
	ctx := context.Background()
	assets := SyntheticAssets{}

	jobID, err := assets.Submit(ctx, generationDomain.AssetRequest{RecordID: "SKU 1/a"})
	require.NoError(t, err)
	assert.Equal(t, "dry-run-SKU-1-a", jobID)

	status, err := assets.Poll(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, generationDomain.StatusReady, status.Status)
	assert.Contains(t, status.AssetURL, SyntheticAssetHost)

	assert.NoError(t, SyntheticProber{}.Probe(ctx, status.AssetURL))
	_, err = SyntheticScript{}.Generate(ctx, record(), params)
	assert.ErrorIs(t, err, generationDomain.ErrScriptUnavailable)
}
