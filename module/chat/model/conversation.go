package model

import "time"

const CollConversation = "conversation"

// Conversation is a one-to-one thread; Participants always holds exactly two
// user ids.
type Conversation struct {
	ID           string    `bson:"_id" json:"conversationId"`
	Participants []string  `bson:"participants" json:"participants"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
