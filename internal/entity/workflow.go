package entity

import "time"

type WorkflowState string

const (
	StateInitial WorkflowState = "initial"
	StateLoading WorkflowState = "loading"
	StateResult  WorkflowState = "result"
	StateError   WorkflowState = "error"
)

// WorkflowEvent is published when a generation attempt finishes.
type WorkflowEvent struct {
	SessionID string        `json:"session_id"`
	Attempt   uint64        `json:"attempt"`
	State     WorkflowState `json:"state"`
	ErrorKind ErrorKind     `json:"error_kind,omitempty"`
	Filename  string        `json:"filename,omitempty"`
	Time      time.Time     `json:"time"`
}

type SessionResponse struct {
	ID              string        `json:"id"`
	State           WorkflowState `json:"state"`
	ProgressMessage string        `json:"progress_message,omitempty"`
	Caption         string        `json:"caption"`
	Filename        string        `json:"filename,omitempty"`
	HasSource       bool          `json:"has_source"`
	HasResult       bool          `json:"has_result"`
	Error           *ErrorInfo    `json:"error,omitempty"`
}

type CaptionRequest struct {
	Caption *string `json:"caption" binding:"required"`
}

type DataURLResponse struct {
	DataURL  string `json:"data_url"`
	Filename string `json:"filename"`
}

type ShareFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type ShareResponse struct {
	Title string      `json:"title"`
	Text  string      `json:"text"`
	Files []ShareFile `json:"files"`
}

type MailtoResponse struct {
	Href string `json:"href"`
}
