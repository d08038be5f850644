package models

import "fmt"

// JobStatus is the backend-owned lifecycle state of a job. The set is
// open-ended: the backend may introduce new values, so unknown statuses
// are carried through and displayed verbatim rather than rejected.
type JobStatus string

const (
	StatusPendingUpload JobStatus = "PENDING_UPLOAD"
	StatusProcessing    JobStatus = "PROCESSING"
	StatusPendingPDF    JobStatus = "PENDING_PDF"
	StatusDone          JobStatus = "DONE"
	StatusFailed        JobStatus = "FAILED"
)

// Job is one user-submitted drawing tracked by the remote backend. The
// client never mutates a job; it only re-renders whatever the most recent
// registry refresh reported.
type Job struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	TargetLanguage   string    `json:"target_language"`
	Status           JobStatus `json:"status"`
	UploadTimestamp  string    `json:"upload_timestamp"` // ISO-8601, used only for ordering
}

// Done reports whether the job has finished processing. "View" and
// "Download PDF" are only available in this state.
func (j Job) Done() bool {
	return j.Status == StatusDone
}

// InstructionsUnavailable is rendered when a details record carries neither
// the requested translation nor the base-language text.
const InstructionsUnavailable = "Instructions not available."

// englishKey is the base-language entry every details record is expected
// to carry.
const englishKey = "englishInstructions"

// JobDetails is the expanded record fetched on demand for a single job.
// Instructions holds the base-language text under "englishInstructions"
// plus zero or more "translatedInstructions_<lang>" entries.
type JobDetails struct {
	JobID              string            `json:"job_id"`
	OriginalDrawingURL string            `json:"original_drawing_url"`
	Instructions       map[string]string `json:"instructions"`
}

// InstructionsFor resolves the display text for a target language. The
// fallback chain never renders empty: requested translation, then the
// base-language text, then a literal placeholder.
func (d *JobDetails) InstructionsFor(lang string) string {
	if lang != BaseLanguage {
		if text := d.Instructions[TranslationKey(lang)]; text != "" {
			return text
		}
	}
	if text := d.Instructions[englishKey]; text != "" {
		return text
	}
	return InstructionsUnavailable
}

// TranslationKey returns the instructions-map key for a translated language.
func TranslationKey(lang string) string {
	return fmt.Sprintf("translatedInstructions_%s", lang)
}
