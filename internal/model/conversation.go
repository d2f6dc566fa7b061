package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RawChat is one row of the chat table joined with the owner's display name.
type RawChat struct {
	ID        string
	UserID    string
	UserName  *string
	Chat      []byte
	CreatedAt int64 // epoch seconds
	UpdatedAt int64
}

type ConversationRecord struct {
	ID        string
	UserID    string
	UserName  string
	Title     string
	Models    []string
	CreatedAt *time.Time
	UpdatedAt *time.Time
	Messages  MessageTree
}

// MessageTree maps message id to node. Parent and children are id references,
// so a tree with dangling parents is still a valid value.
type MessageTree map[string]MessageNode

type MessageNode struct {
	ID          string
	Role        Role
	Model       string
	ParentID    *string
	ChildrenIDs []string
	Timestamp   *time.Time
	Content     *string
}

// Parent returns the node this message replies to, if it is present in the tree.
func (t MessageTree) Parent(id string) (MessageNode, bool) {
	node, ok := t[id]
	if !ok || node.ParentID == nil {
		return MessageNode{}, false
	}
	parent, ok := t[*node.ParentID]
	return parent, ok
}

// LastModel is the model the conversation ended on, empty when none was recorded.
func (c ConversationRecord) LastModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[len(c.Models)-1]
}
