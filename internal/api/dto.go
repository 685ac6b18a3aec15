package api

// SessionResponse is returned when a conversation is created.
type SessionResponse struct {
	SessionID string `json:"session_id" example:"7f8c1b3e-..." validate:"required"`
	Greeting  string `json:"greeting" example:"Hello, I am a bot. How can I help you?" validate:"required"`
}

// ChatRequest is the request body for one conversational exchange.
type ChatRequest struct {
	SessionID string `json:"session_id" example:"7f8c1b3e-..." validate:"required"`
	Message   string `json:"message" example:"What do my notes say about b-trees?" validate:"required"`
	Task      string `json:"task,omitempty" example:"Summary"`
}

// ChatResponse carries the model answer and its provenance.
type ChatResponse struct {
	Answer       string   `json:"answer" validate:"required"`
	RelatedNotes []string `json:"related_notes"`
	References   []string `json:"references"`
}

// TasksResponse lists the available task template names.
type TasksResponse struct {
	Tasks []string `json:"tasks" validate:"required"`
}

// ReindexResponse reports a completed index pass.
type ReindexResponse struct {
	Indexed int `json:"indexed" example:"12" validate:"required"`
}

// StatsResponse summarizes the ingest ledger.
type StatsResponse struct {
	Notes    int `json:"notes" example:"42" validate:"required"`
	Segments int `json:"segments" example:"310" validate:"required"`
}
