package model

import "time"

const Collection = "insight"

// Sentiment labels, as exposed to clients.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Insight is the cached AI summary of one conversation; generated at most
// once per thread.
type Insight struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	Summary        string    `bson:"summary" json:"summary"`
	Sentiment      string    `bson:"sentiment" json:"sentiment"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
