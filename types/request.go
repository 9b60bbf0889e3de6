package types

type QuestionRequest struct {
	DatabaseID  string     `json:"database_id"`
	Question    string     `json:"question" binding:"required"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

type DatabaseRequest struct {
	DatabaseID string   `json:"database_id" binding:"required"`
	URLs       []string `json:"urls" binding:"required"`
}

type DocumentRequest struct {
	DatabaseID string `json:"database_id" binding:"required"`
	URL        string `json:"url" binding:"required"`
}
