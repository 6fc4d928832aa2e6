package entity

import "time"

// Message is one directed text communication between two users.
// Everything except the seen flag is immutable after creation.
type Message struct {
	Id        string    `bson:"_id" json:"id"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	Text      string    `bson:"text" json:"text"`
	Seen      bool      `bson:"seen" json:"seen"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ConversationSummary is one row of the conversation listing: the latest
// message exchanged with a peer plus how many messages from that peer the
// user has not seen yet.
type ConversationSummary struct {
	PeerId      string
	Last        Message
	UnseenCount int64
}

// MessageResponse is a Message with sender and recipient identities resolved.
type MessageResponse struct {
	Id          string     `json:"id"`
	From        UserPublic `json:"from"`
	To          UserPublic `json:"to"`
	Text        string     `json:"text"`
	Seen        bool       `json:"seen"`
	CreatedAt   time.Time  `json:"createdAt"`
	UnseenCount int64      `json:"unseenCount"`
}

const EventNewMessage = "newMessage"

// MessageEvent is the frame pushed over a user's channel when a message is
// sent. IsOwnMessage marks the echo delivered to the sender's own channel.
type MessageEvent struct {
	Type         string          `json:"type"`
	Message      MessageResponse `json:"message"`
	IsOwnMessage bool            `json:"isOwnMessage"`
}

// ConversationKey is the unordered participant pair identifying a
// conversation regardless of message direction.
type ConversationKey struct {
	A, B string
}

func NewConversationKey(userId1, userId2 string) ConversationKey {
	if userId1 < userId2 {
		return ConversationKey{A: userId1, B: userId2}
	}
	return ConversationKey{A: userId2, B: userId1}
}

func (m MessageResponse) ConversationKey() ConversationKey {
	return NewConversationKey(m.From.Id, m.To.Id)
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}
