// The session package holds all client-side state for one running
// instance: the job registry, the selected detail view, and the cache of
// resolved download links. State only changes when a request the session
// itself issued completes; the backend owns every job's lifecycle.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nvallur/sketchtran/internal/backend"
	"github.com/nvallur/sketchtran/internal/models"
)

var (
	// ErrNoFile is returned when a submission arrives without file bytes.
	// It is raised locally, before any backend call.
	ErrNoFile = errors.New("no file selected")

	// ErrBadLanguage is returned for a target language outside the closed set.
	ErrBadLanguage = errors.New("unsupported target language")

	// ErrBusy is returned when the same logical action is already in
	// flight. Double-clicks must not issue duplicate backend calls.
	ErrBusy = errors.New("request already in progress")

	// ErrUnknownJob is returned for a job id the registry has never seen.
	ErrUnknownJob = errors.New("unknown job")

	// ErrNotReady is returned when a DONE-gated action is attempted on a
	// job that is still processing or has failed.
	ErrNotReady = errors.New("job is not finished")
)

// Backend is the subset of the remote API the session drives. Implemented
// by backend.Client and by the test fake.
type Backend interface {
	CreateJob(ctx context.Context, filename, contentType, targetLanguage string) (*backend.CreateJobResponse, error)
	Upload(ctx context.Context, uploadURL, contentType string, data []byte) error
	ListJobs(ctx context.Context) ([]models.Job, error)
	GetJobDetails(ctx context.Context, jobID string) (*models.JobDetails, error)
	GetDownloadLink(ctx context.Context, jobID string) (string, error)
}

// Submission carries everything needed for the two-phase submit.
type Submission struct {
	Filename       string
	ContentType    string
	Data           []byte
	TargetLanguage string
}

// Session is safe for concurrent use. The mutex guards the registry, the
// selected details, the link cache, and the in-flight flags; it is never
// held across a network call.
type Session struct {
	backend      Backend
	log          *slog.Logger
	refreshDelay time.Duration // settle time between upload and post-submit refresh

	mu      sync.Mutex
	jobs    []models.Job
	details *models.JobDetails
	links   map[string]string
	loaded  bool

	submitting bool
	refreshing bool
	resolving  map[string]bool
}

func New(b Backend, log *slog.Logger, refreshDelay time.Duration) *Session {
	return &Session{
		backend:      b,
		log:          log,
		refreshDelay: refreshDelay,
		links:        make(map[string]string),
		resolving:    make(map[string]bool),
	}
}

// Submit runs the two-phase submission protocol: create the job record,
// then PUT the raw bytes to the returned pre-signed URL. A failed phase 1
// aborts before any upload. A failed phase 2 leaves an incomplete record
// server-side; no compensating call is made. On success the registry is
// refreshed so the new job appears, but a refresh failure does not fail
// the submit.
func (s *Session) Submit(ctx context.Context, sub Submission) (string, error) {
	if len(sub.Data) == 0 || sub.Filename == "" {
		return "", ErrNoFile
	}
	if !models.ValidLanguage(sub.TargetLanguage) {
		return "", fmt.Errorf("%w: %q", ErrBadLanguage, sub.TargetLanguage)
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	created, err := s.backend.CreateJob(ctx, sub.Filename, sub.ContentType, sub.TargetLanguage)
	if err != nil {
		return "", err
	}

	if err := s.backend.Upload(ctx, created.UploadURL, sub.ContentType, sub.Data); err != nil {
		return "", err
	}

	// The backend is eventually consistent between upload and the job
	// appearing in list responses. A short settle delay covers the common
	// case; the user can always refresh again manually.
	if s.refreshDelay > 0 {
		select {
		case <-time.After(s.refreshDelay):
		case <-ctx.Done():
			return created.JobID, nil
		}
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("post-submit refresh failed", "job_id", created.JobID, "error", err)
	}
	return created.JobID, nil
}

// Refresh fetches the full job list and replaces the registry atomically,
// ordered by upload timestamp descending (missing timestamps sort last).
// On failure the previous registry contents are retained. A successful
// refresh also drops the cached download links and any selected details,
// since both were derived from the replaced list.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.refreshing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	jobs, err := s.backend.ListJobs(ctx)
	if err != nil {
		return err
	}

	// ISO-8601 timestamps sort lexicographically; the stable sort keeps
	// ties in backend order within one refresh.
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].UploadTimestamp > jobs[j].UploadTimestamp
	})

	s.mu.Lock()
	s.jobs = jobs
	s.links = make(map[string]string)
	s.details = nil
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// EnsureLoaded performs the once-per-session initial refresh. Subsequent
// calls are no-ops.
func (s *Session) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	err := s.Refresh(ctx)
	if errors.Is(err, ErrBusy) {
		return nil
	}
	return err
}

// Jobs returns a snapshot of the registry in display order.
func (s *Session) Jobs() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Job looks up a single registry entry by id.
func (s *Session) Job(jobID string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == jobID {
			return j, true
		}
	}
	return models.Job{}, false
}

// FetchDetails loads the expanded record for a finished job and makes it
// the selected detail view. On failure the selection is cleared so a
// stale record is never shown alongside the error.
func (s *Session) FetchDetails(ctx context.Context, jobID string) (*models.JobDetails, error) {
	if err := s.requireDone(jobID); err != nil {
		return nil, err
	}

	details, err := s.backend.GetJobDetails(ctx, jobID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.details = nil
		return nil, err
	}
	s.details = details
	return details, nil
}

// SelectedDetails returns the currently displayed detail record, if any.
func (s *Session) SelectedDetails() *models.JobDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details
}

// ResolveDownloadLink fetches a time-limited PDF link for a finished job
// and caches it for the rest of the session. Re-invocation overwrites the
// cached value. Concurrent resolution for the same job returns ErrBusy.
func (s *Session) ResolveDownloadLink(ctx context.Context, jobID string) (string, error) {
	if err := s.requireDone(jobID); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.resolving[jobID] {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.resolving[jobID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.resolving, jobID)
		s.mu.Unlock()
	}()

	url, err := s.backend.GetDownloadLink(ctx, jobID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.links[jobID] = url
	s.mu.Unlock()
	return url, nil
}

// DownloadLink returns the cached link for a job, if one was resolved
// since the last registry refresh.
func (s *Session) DownloadLink(jobID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.links[jobID]
	return url, ok
}

func (s *Session) requireDone(jobID string) error {
	job, ok := s.Job(jobID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	if !job.Done() {
		return fmt.Errorf("%w: %s is %s", ErrNotReady, jobID, job.Status)
	}
	return nil
}
