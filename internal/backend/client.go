// HTTP client for the remote drawing-translation service. All state
// transitions happen server-side; this package only issues requests and
// normalizes responses into the local data model.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvallur/sketchtran/internal/models"
)

const maxErrorBody = 512 // bytes of an error response kept for messages

// Client talks to the translation backend. The upload endpoint is a
// pre-signed URL outside the base URL, so Upload takes an absolute URL.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a backend client. The timeout bounds every call including
// the raw file upload.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateJobResponse is the result of the job-creation call: the id to use
// for all subsequent lookups and a single-use pre-signed upload URL.
type CreateJobResponse struct {
	JobID     string `json:"jobId"`
	UploadURL string `json:"uploadUrl"`
}

// CreateJob registers a new job with the backend. The file itself is not
// sent here; it goes directly to the returned upload URL.
func (c *Client) CreateJob(ctx context.Context, filename, contentType, targetLanguage string) (*CreateJobResponse, error) {
	payload := map[string]string{
		"filename":       filename,
		"contentType":    contentType,
		"targetLanguage": targetLanguage,
	}
	var resp CreateJobResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/jobs", payload, &resp); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if resp.JobID == "" || resp.UploadURL == "" {
		return nil, fmt.Errorf("create job: %w: missing jobId or uploadUrl", ErrDecode)
	}
	return &resp, nil
}

// Upload PUTs the raw file bytes to a pre-signed URL returned by CreateJob.
func (c *Client) Upload(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload: %w", readAPIError(resp))
	}
	return nil
}

// wireJob tolerates both key spellings the backend uses for the job id:
// list responses carry "id", creation and detail responses carry "jobId".
type wireJob struct {
	ID               string           `json:"id"`
	JobID            string           `json:"jobId"`
	OriginalFilename string           `json:"originalFilename"`
	TargetLanguage   string           `json:"targetLanguage"`
	Status           models.JobStatus `json:"status"`
	UploadTimestamp  string           `json:"uploadTimestamp"`
}

func (w wireJob) normalize() models.Job {
	id := w.ID
	if id == "" {
		id = w.JobID
	}
	return models.Job{
		ID:               id,
		OriginalFilename: w.OriginalFilename,
		TargetLanguage:   w.TargetLanguage,
		Status:           w.Status,
		UploadTimestamp:  w.UploadTimestamp,
	}
}

// ListJobs fetches the full job list. Ordering is left to the caller.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var resp struct {
		Jobs []wireJob `json:"jobs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/jobs", nil, &resp); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]models.Job, 0, len(resp.Jobs))
	for _, w := range resp.Jobs {
		jobs = append(jobs, w.normalize())
	}
	return jobs, nil
}

// GetJobDetails fetches the expanded record for one job, including the
// generated instructions in every available language.
func (c *Client) GetJobDetails(ctx context.Context, jobID string) (*models.JobDetails, error) {
	var resp struct {
		JobID              string            `json:"jobId"`
		ID                 string            `json:"id"`
		OriginalDrawingURL string            `json:"originalDrawingUrl"`
		Instructions       map[string]string `json:"instructions"`
	}
	url := fmt.Sprintf("%s/jobs/%s/instructions", c.baseURL, jobID)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("get job details: %w", err)
	}

	id := resp.JobID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		id = jobID
	}
	return &models.JobDetails{
		JobID:              id,
		OriginalDrawingURL: resp.OriginalDrawingURL,
		Instructions:       resp.Instructions,
	}, nil
}

// GetDownloadLink asks the backend for a time-limited URL to the generated
// PDF. The backend creates the artifact on first request, so this is a
// lookup-or-generate; GET keeps it idempotent.
func (c *Client) GetDownloadLink(ctx context.Context, jobID string) (string, error) {
	var resp struct {
		DownloadURL string `json:"downloadUrl"`
	}
	url := fmt.Sprintf("%s/jobs/%s/download", c.baseURL, jobID)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", fmt.Errorf("get download link: %w", err)
	}
	if resp.DownloadURL == "" {
		return "", fmt.Errorf("get download link: %w: missing downloadUrl", ErrDecode)
	}
	return resp.DownloadURL, nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out. Non-2xx responses become *APIError.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
