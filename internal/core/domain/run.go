package domain

import "time"

type RunState string

const (
	StateSuccess        RunState = "success"
	StateRejected       RunState = "rejected"
	StateExtractFailed  RunState = "extract_failed"
	StateClassifyFailed RunState = "classify_failed"
	StateNotifyFailed   RunState = "notify_failed"
	StateUnhandledError RunState = "unhandled_error"
)

type Stage string

const (
	StageValidate Stage = "validate"
	StageExtract  Stage = "extract"
	StageClassify Stage = "classify"
	StageNotify   Stage = "notify"
	StageRelease  Stage = "release"
)

type PipelineRun struct {
	ID           string    `json:"id" yaml:"id"`
	DocumentID   string    `json:"document_id" yaml:"document_id"`
	OriginalName string    `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	State        RunState  `json:"state" yaml:"state"`
	Domain       Domain    `json:"domain,omitempty" yaml:"domain,omitempty"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
}

func (r PipelineRun) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}
