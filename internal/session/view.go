package session

import "github.com/nvallur/sketchtran/internal/models"

// JobView is one registry row as the UI renders it: the job plus the
// action gating flags and any download link resolved this session.
type JobView struct {
	models.Job
	CanView     bool   `json:"can_view"`
	CanDownload bool   `json:"can_download"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Snapshot returns the registry in display order with per-row action
// state. Both actions are gated on the job being DONE.
func (s *Session) Snapshot() []JobView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]JobView, 0, len(s.jobs))
	for _, j := range s.jobs {
		v := JobView{
			Job:         j,
			CanView:     j.Done(),
			CanDownload: j.Done(),
		}
		if url, ok := s.links[j.ID]; ok {
			v.DownloadURL = url
		}
		views = append(views, v)
	}
	return views
}
