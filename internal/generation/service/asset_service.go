package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/allisson/reelcast/internal/credential"
	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
)

// AssetConfig configures the asset-generation service.
type AssetConfig struct {
	// BaseURL is the service root; jobs are created at {BaseURL}/jobs.
	BaseURL   string
	APIKeyRef string
}

// AssetService submits render jobs and polls their status.
type AssetService struct {
	client   *http.Client
	config   AssetConfig
	resolver credential.Resolver
}

// NewAssetService creates an AssetService. A nil client uses http.DefaultClient.
func NewAssetService(client *http.Client, config AssetConfig, resolver credential.Resolver) *AssetService {
	if client == nil {
		client = http.DefaultClient
	}
	return &AssetService{client: client, config: config, resolver: resolver}
}

type submitRequest struct {
	Title           string `json:"title"`
	Script          string `json:"script"`
	Avatar          string `json:"avatar"`
	Voice           string `json:"voice"`
	DurationSeconds int    `json:"duration_seconds"`
	Reference       string `json:"reference"`
}

type jobResponse struct {
	ID       string `json:"id"`
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	URL      string `json:"url"`
	Error    string `json:"error"`
}

func (j jobResponse) id() string {
	if j.ID != "" {
		return j.ID
	}
	return j.JobID
}

func (j jobResponse) assetURL() string {
	if j.VideoURL != "" {
		return j.VideoURL
	}
	return j.URL
}

// Submit creates a render job and returns its id.
func (a *AssetService) Submit(ctx context.Context, request generationDomain.AssetRequest) (string, error) {
	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	body := submitRequest{
		Title:           request.Title,
		Script:          request.ScriptText,
		Avatar:          request.Parameters.Avatar,
		Voice:           request.Parameters.Voice,
		DurationSeconds: request.Parameters.DurationSeconds,
		Reference:       request.RecordID,
	}

	var response jobResponse
	if err := doJSON(ctx, a.client, http.MethodPost, a.endpoint(), token, body, &response); err != nil {
		return "", fmt.Errorf("failed to submit render job: %w", err)
	}
	if response.id() == "" {
		return "", fmt.Errorf("render job response carries no id")
	}
	return response.id(), nil
}

// Poll returns the normalized status of a job.
func (a *AssetService) Poll(ctx context.Context, jobID string) (generationDomain.JobStatus, error) {
	token, err := a.token(ctx)
	if err != nil {
		return generationDomain.JobStatus{}, err
	}

	var response jobResponse
	endpoint := a.endpoint() + "/" + url.PathEscape(jobID)
	if err := doJSON(ctx, a.client, http.MethodGet, endpoint, token, nil, &response); err != nil {
		return generationDomain.JobStatus{}, fmt.Errorf("failed to poll render job: %w", err)
	}

	status, _ := generationDomain.NormalizeStatus(response.Status)
	return generationDomain.JobStatus{
		JobID:    jobID,
		Status:   status,
		Raw:      response.Status,
		AssetURL: response.assetURL(),
		Error:    response.Error,
	}, nil
}

func (a *AssetService) endpoint() string {
	return strings.TrimRight(a.config.BaseURL, "/") + "/jobs"
}

func (a *AssetService) token(ctx context.Context) (string, error) {
	if a.config.BaseURL == "" {
		return "", fmt.Errorf("asset service is not configured")
	}
	if a.config.APIKeyRef == "" {
		return "", nil
	}
	token, err := a.resolver.Resolve(ctx, a.config.APIKeyRef)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset service credential: %w", err)
	}
	return token, nil
}
