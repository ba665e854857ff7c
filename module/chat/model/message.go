package model

import (
	"time"

	usermodel "VConnct/module/user/model"
)

const CollMessage = "message"

// Message carries text and/or an uploaded image URL. Sender is a read-time
// join, never persisted.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Text           string    `bson:"text,omitempty" json:"text,omitempty"`
	Image          string    `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`

	Sender *usermodel.Contact `bson:"-" json:"sender,omitempty"`
}

// ConversationSummary is the inbox row: who the thread is with and what was
// said last.
type ConversationSummary struct {
	ConversationID   string             `json:"conversationId"`
	OtherParticipant *usermodel.Contact `json:"otherParticipant"`
	LastMessage      *Message           `json:"lastMessage"`
}
