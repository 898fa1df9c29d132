package sessions

import (
	"time"

	"calorievision-backend/internal/analysis"
)

// State is a session's position in the analysis lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateImageStaged State = "image_staged"
	StateAnalyzing   State = "analyzing"
	StateResult      State = "result"
	StateFailed      State = "failed"
)

// FailureCodeAnalysis marks a session whose last analysis failed.
const FailureCodeAnalysis = "analysis_failed"

// Image describes the staged photo. The storage key never leaves the service.
type Image struct {
	StorageKey string    `json:"-"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	StagedAt   time.Time `json:"stagedAt"`
}

// Failure is the user-facing error of a failed analysis.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Session is one user's walk through select → analyze → result.
type Session struct {
	ID                 string           `json:"id"`
	State              State            `json:"state"`
	Image              *Image           `json:"image,omitempty"`
	Result             *analysis.Result `json:"result,omitempty"`
	Error              *Failure         `json:"error,omitempty"`
	Generation         int              `json:"-"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	AnalysisStartedAt  *time.Time       `json:"analysisStartedAt,omitempty"`
	AnalysisFinishedAt *time.Time       `json:"analysisFinishedAt,omitempty"`
}

// Clone returns a deep copy so stored sessions are never shared with callers.
func (s Session) Clone() Session {
	out := s
	if s.Image != nil {
		img := *s.Image
		out.Image = &img
	}
	if s.Result != nil {
		res := *s.Result
		res.FoodRecord = s.Result.FoodRecord.Clone()
		out.Result = &res
	}
	if s.Error != nil {
		f := *s.Error
		out.Error = &f
	}
	if s.AnalysisStartedAt != nil {
		t := *s.AnalysisStartedAt
		out.AnalysisStartedAt = &t
	}
	if s.AnalysisFinishedAt != nil {
		t := *s.AnalysisFinishedAt
		out.AnalysisFinishedAt = &t
	}
	return out
}
