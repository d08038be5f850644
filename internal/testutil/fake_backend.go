// An in-memory stand-in for the remote translation backend. Tests script
// its responses and assert on its call counters.

package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvallur/sketchtran/internal/backend"
	"github.com/nvallur/sketchtran/internal/models"
)

// FakeBackend implements session.Backend. The zero value is not usable;
// call NewFakeBackend.
type FakeBackend struct {
	mu sync.Mutex

	// Scripted responses. NextJobID/NextUploadURL apply to the next
	// CreateJob call; empty values fall back to generated ones.
	NextJobID     string
	NextUploadURL string

	Jobs    []models.Job
	Details map[string]*models.JobDetails
	Links   map[string]string

	// Scripted failures, returned verbatim when set.
	CreateErr  error
	UploadErr  error
	ListErr    error
	DetailsErr error
	LinkErr    error

	CreateCalls  int
	UploadCalls  int
	ListCalls    int
	DetailsCalls int
	LinkCalls    int

	UploadedTo          string
	UploadedBytes       []byte
	UploadedContentType string
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Details: make(map[string]*models.JobDetails),
		Links:   make(map[string]string),
	}
}

// TotalCalls returns how many backend calls of any kind were issued.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CreateCalls + f.UploadCalls + f.ListCalls + f.DetailsCalls + f.LinkCalls
}

// AddJob seeds the job list directly, bypassing the submission flow.
func (f *FakeBackend) AddJob(job models.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Jobs = append(f.Jobs, job)
}

// SetStatus updates a seeded job's status, simulating a server-side
// transition between refreshes.
func (f *FakeBackend) SetStatus(jobID string, status models.JobStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Jobs {
		if f.Jobs[i].ID == jobID {
			f.Jobs[i].Status = status
		}
	}
}

func (f *FakeBackend) CreateJob(ctx context.Context, filename, contentType, targetLanguage string) (*backend.CreateJobResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	id := f.NextJobID
	if id == "" {
		id = uuid.NewString()
	}
	url := f.NextUploadURL
	if url == "" {
		url = fmt.Sprintf("https://storage.test/upload/%s", id)
	}
	f.Jobs = append(f.Jobs, models.Job{
		ID:               id,
		OriginalFilename: filename,
		TargetLanguage:   targetLanguage,
		Status:           models.StatusPendingUpload,
		UploadTimestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	return &backend.CreateJobResponse{JobID: id, UploadURL: url}, nil
}

func (f *FakeBackend) Upload(ctx context.Context, uploadURL, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UploadCalls++
	if f.UploadErr != nil {
		return f.UploadErr
	}
	f.UploadedTo = uploadURL
	f.UploadedBytes = data
	f.UploadedContentType = contentType

	// A completed upload moves the newest pending job into processing.
	for i := range f.Jobs {
		if f.Jobs[i].Status == models.StatusPendingUpload {
			f.Jobs[i].Status = models.StatusProcessing
		}
	}
	return nil
}

func (f *FakeBackend) ListJobs(ctx context.Context) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Job, len(f.Jobs))
	copy(out, f.Jobs)
	return out, nil
}

func (f *FakeBackend) GetJobDetails(ctx context.Context, jobID string) (*models.JobDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DetailsCalls++
	if f.DetailsErr != nil {
		return nil, f.DetailsErr
	}
	details, ok := f.Details[jobID]
	if !ok {
		return nil, &backend.APIError{StatusCode: http.StatusNotFound}
	}
	return details, nil
}

func (f *FakeBackend) GetDownloadLink(ctx context.Context, jobID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LinkCalls++
	if f.LinkErr != nil {
		return "", f.LinkErr
	}
	link, ok := f.Links[jobID]
	if !ok {
		return "", &backend.APIError{StatusCode: http.StatusNotFound}
	}
	return link, nil
}
