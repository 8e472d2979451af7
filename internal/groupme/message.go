// Package groupme talks to the GroupMe bot and group message APIs.
package groupme

// SenderTypeBot marks messages posted by a bot, including this one.
const SenderTypeBot = "bot"

// Attachment is one message attachment. Only mentions are used here.
type Attachment struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"user_ids,omitempty"`
	Loci    [][]int  `json:"loci,omitempty"`
}

// Message is a GroupMe message as delivered to a bot callback and returned
// by the group messages endpoint.
type Message struct {
	ID          string       `json:"id"`
	GroupID     string       `json:"group_id"`
	Name        string       `json:"name"`
	SenderID    string       `json:"sender_id"`
	SenderType  string       `json:"sender_type"`
	UserID      string       `json:"user_id"`
	Text        string       `json:"text"`
	CreatedAt   int64        `json:"created_at"`
	System      bool         `json:"system"`
	Attachments []Attachment `json:"attachments"`
	FavoritedBy []string     `json:"favorited_by"`
}

// FromBot reports whether a bot sent the message.
func (m *Message) FromBot() bool {
	return m.SenderType == SenderTypeBot
}

// MentionIDs returns the user ids tagged in the message, in the order the
// client attached them.
func (m *Message) MentionIDs() []string {
	for _, a := range m.Attachments {
		if a.Type == "mentions" {
			return a.UserIDs
		}
	}
	return nil
}

// FavoritedByAny reports whether any of ids liked the message.
func (m *Message) FavoritedByAny(ids []string) bool {
	for _, f := range m.FavoritedBy {
		for _, id := range ids {
			if f == id {
				return true
			}
		}
	}
	return false
}
