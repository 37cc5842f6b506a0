package dto

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	StockCode string `json:"stock_code"`
	Stream    bool   `json:"stream"`
}

// ChatResponse is the non-streaming chat result.
type ChatResponse struct {
	SessionID      string `json:"session_id"`
	Reply          string `json:"reply"`
	Model          string `json:"model"`
	TokensUsed     *int   `json:"tokens_used,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	RemainingChats int    `json:"remaining_chats"`
}

// SessionResponse summarizes one chat session.
type SessionResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	StockCode    *string `json:"stock_code,omitempty"`
	MessageCount int     `json:"message_count"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}
