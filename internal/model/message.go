package model

import "time"

// FlattenedMessage is one message of one conversation with the conversation
// columns copied onto it.
type FlattenedMessage struct {
	ChatID        string     `json:"chat_id"`
	ChatUserID    string     `json:"chat_user_id"`
	ChatTitle     string     `json:"chat_title"`
	ChatModels    []string   `json:"chat_model"`
	LastChatModel string     `json:"last_chat_model"`
	ChatCreatedAt *time.Time `json:"chat_created_at"`
	ChatUpdatedAt *time.Time `json:"chat_updated_at"`
	UserName      string     `json:"user_name"`
	Role          Role       `json:"role"`
	Model         string     `json:"model"`
	MessageID     string     `json:"message_id"`
	ParentID      *string    `json:"parentId"`
	LastChildID   *string    `json:"last_child_id"`
	ChildrenIDs   []string   `json:"childrenIds"`
	CreatedAt     *time.Time `json:"created_at"`
	Content       *string    `json:"content"`
}

// QAPair is a user message with the latest answer to it, if any.
type QAPair struct {
	FlattenedMessage
	AnswerMessageID *string `json:"answer_message_id"`
	RespondContent  *string `json:"respond_content"`
}
