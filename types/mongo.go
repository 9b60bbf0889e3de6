package types

// QuestionLog is an answered question persisted for auditing.
type QuestionLog struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	DatabaseID string `json:"database_id" bson:"database_id"`
	Question   string `json:"question" bson:"question"`
	Answer     string `json:"answer" bson:"answer"`
	Turns      int    `json:"turns" bson:"turns"`
	CreatedAt  int64  `json:"created_at" bson:"created_at"`
}
