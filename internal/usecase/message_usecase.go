package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"konekt/internal/entity"
	"konekt/internal/repository"

	"github.com/samber/lo"
)

// ConversationPageSize is the fixed page size of the conversation listing.
const ConversationPageSize = 10

var (
	ErrTextRequired      = errors.New("message text is required")
	ErrSelfMessage       = errors.New("cannot send a message to yourself")
	ErrRecipientNotFound = errors.New("recipient not found")
)

// Publisher is the push-channel capability injected into the message
// service. Publishing is best-effort and never fails a send.
type Publisher interface {
	Publish(userID string, payload []byte)
}

type MessageUsecase interface {
	Send(ctx context.Context, senderId, recipientId, text string) (entity.MessageResponse, error)
	// ListConversations returns page `offset` (0-based) of the caller's
	// conversations: the latest message per peer plus its unseen count,
	// newest first, at most ConversationPageSize entries.
	ListConversations(ctx context.Context, userId string, offset int) ([]entity.MessageResponse, error)
	UnreadCount(ctx context.Context, userId string) (int64, error)
	UnreadCountByPeer(ctx context.Context, userId string) (map[string]int64, error)
	MarkConversationRead(ctx context.Context, userId, peerId string) (bool, error)
}

type messageUsecase struct {
	messageRepo repository.MessageRepository
	userUc      UserUsecase
	publisher   Publisher
}

func NewMessageUsecase(messageRepo repository.MessageRepository, userUc UserUsecase, publisher Publisher) MessageUsecase {
	return &messageUsecase{
		messageRepo: messageRepo,
		userUc:      userUc,
		publisher:   publisher,
	}
}

func (m *messageUsecase) Send(ctx context.Context, senderId, recipientId, text string) (entity.MessageResponse, error) {
	if text == "" {
		return entity.MessageResponse{}, ErrTextRequired
	}
	if senderId == recipientId {
		return entity.MessageResponse{}, ErrSelfMessage
	}

	recipient, err := m.userUc.GetPublic(ctx, recipientId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.MessageResponse{}, ErrRecipientNotFound
		}
		return entity.MessageResponse{}, err
	}

	sender, err := m.userUc.GetPublic(ctx, senderId)
	if err != nil {
		return entity.MessageResponse{}, err
	}

	message, err := m.messageRepo.Create(ctx, entity.Message{
		From: senderId,
		To:   recipientId,
		Text: text,
	})
	if err != nil {
		return entity.MessageResponse{}, err
	}

	response := entity.MessageResponse{
		Id:        message.Id,
		From:      sender,
		To:        recipient,
		Text:      message.Text,
		Seen:      message.Seen,
		CreatedAt: message.CreatedAt,
	}

	m.notify(recipientId, response, false)
	// Echo to the sender's own channel; the client uses it to reset its
	// unread badge instead of incrementing it.
	m.notify(senderId, response, true)

	return response, nil
}

func (m *messageUsecase) notify(userId string, message entity.MessageResponse, isOwn bool) {
	event := entity.MessageEvent{
		Type:         entity.EventNewMessage,
		Message:      message,
		IsOwnMessage: isOwn,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Marshal message event error: %v", err)
		return
	}

	m.publisher.Publish(userId, payload)
}

func (m *messageUsecase) ListConversations(ctx context.Context, userId string, offset int) ([]entity.MessageResponse, error) {
	if offset < 0 {
		offset = 0
	}

	skip := int64(offset) * ConversationPageSize
	summaries, err := m.messageRepo.ListConversations(ctx, userId, skip, ConversationPageSize)
	if err != nil {
		return nil, err
	}

	userIds := lo.Uniq(lo.FlatMap(summaries, func(s entity.ConversationSummary, _ int) []string {
		return []string{s.Last.From, s.Last.To}
	}))

	identities, err := m.userUc.ResolvePublic(ctx, userIds)
	if err != nil {
		return nil, err
	}

	responses := make([]entity.MessageResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, entity.MessageResponse{
			Id:          summary.Last.Id,
			From:        identities[summary.Last.From],
			To:          identities[summary.Last.To],
			Text:        summary.Last.Text,
			Seen:        summary.Last.Seen,
			CreatedAt:   summary.Last.CreatedAt,
			UnseenCount: summary.UnseenCount,
		})
	}

	return responses, nil
}

func (m *messageUsecase) UnreadCount(ctx context.Context, userId string) (int64, error) {
	return m.messageRepo.TotalUnseen(ctx, userId)
}

func (m *messageUsecase) UnreadCountByPeer(ctx context.Context, userId string) (map[string]int64, error) {
	return m.messageRepo.UnseenCountByPeer(ctx, userId)
}

func (m *messageUsecase) MarkConversationRead(ctx context.Context, userId, peerId string) (bool, error) {
	// Marking an already-read conversation transitions zero records and
	// still succeeds.
	if _, err := m.messageRepo.MarkRead(ctx, userId, peerId); err != nil {
		return false, err
	}

	return true, nil
}
