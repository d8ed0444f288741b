package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

type Sender string

const (
	SenderAdmin Sender = "admin"
	SenderUser  Sender = "user"
)

func ParseSender(s string) (Sender, error) {
	switch Sender(strings.ToLower(strings.TrimSpace(s))) {
	case SenderAdmin:
		return SenderAdmin, nil
	case SenderUser:
		return SenderUser, nil
	}
	return "", fmt.Errorf("%w: unknown sender %q", common.ErrValidation, s)
}

type ChatMessage struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	Sender        Sender `json:"sender"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	Read          bool   `json:"read"`
}

func NewChatMessage(id, appID string, from Sender, text string, at time.Time) (ChatMessage, error) {
	if strings.TrimSpace(appID) == "" {
		return ChatMessage{}, fmt.Errorf("%w: application id is required", common.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return ChatMessage{}, fmt.Errorf("%w: message text is required", common.ErrValidation)
	}
	if _, err := ParseSender(string(from)); err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		ID:            id,
		ApplicationID: appID,
		Sender:        from,
		Text:          strings.TrimSpace(text),
		Timestamp:     at.UTC().Format(IDLayout),
	}, nil
}

func (m ChatMessage) ToRow() Row {
	return Row{
		"id":            m.ID,
		"applicationId": m.ApplicationID,
		"sender":        string(m.Sender),
		"text":          m.Text,
		"timestamp":     m.Timestamp,
		"read":          m.Read,
	}
}

func ChatMessageFromRow(r Row) (ChatMessage, error) {
	appID := r.String("applicationId")
	if appID == "" {
		return ChatMessage{}, fmt.Errorf("%w: chat row without applicationId", common.ErrParse)
	}
	from, err := ParseSender(r.String("sender"))
	if err != nil {
		return ChatMessage{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	return ChatMessage{
		ID:            r.String("id"),
		ApplicationID: appID,
		Sender:        from,
		Text:          r.String("text"),
		Timestamp:     r.String("timestamp"),
		Read:          r.Bool("read"),
	}, nil
}

// ChatLog holds the conversation of each application, keyed by application
// id. Each slice is append-only in insertion order.
type ChatLog map[string][]ChatMessage

// GroupChat builds a ChatLog from a flat list, keeping list order.
func GroupChat(msgs []ChatMessage) ChatLog {
	log := make(ChatLog)
	for _, m := range msgs {
		log[m.ApplicationID] = append(log[m.ApplicationID], m)
	}
	return log
}

// Len is the total number of messages across all threads.
func (c ChatLog) Len() int {
	n := 0
	for _, thread := range c {
		n += len(thread)
	}
	return n
}

// Flatten lists every message, threads ordered by application id.
func (c ChatLog) Flatten() []ChatMessage {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ChatMessage, 0, c.Len())
	for _, id := range ids {
		out = append(out, c[id]...)
	}
	return out
}

// Clone copies the map and every thread.
func (c ChatLog) Clone() ChatLog {
	out := make(ChatLog, len(c))
	for id, thread := range c {
		out[id] = append([]ChatMessage(nil), thread...)
	}
	return out
}

// Unread counts messages in a thread not yet read by reader, i.e. sent by
// the other side.
func (c ChatLog) Unread(appID string, reader Sender) int {
	n := 0
	for _, m := range c[appID] {
		if m.Sender != reader && !m.Read {
			n++
		}
	}
	return n
}
