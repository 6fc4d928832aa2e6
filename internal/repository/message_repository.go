package repository

import (
	"context"
	"errors"
	"time"

	"konekt/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, message entity.Message) (entity.Message, error)
	Get(ctx context.Context, messageId string) (entity.Message, error)
	// ListConversations returns the latest message per distinct peer with the
	// unseen count for that peer, ordered by that message's timestamp descending.
	ListConversations(ctx context.Context, userId string, skip, limit int64) ([]entity.ConversationSummary, error)
	// MarkRead flips seen=true on every unseen message from peer to user in a
	// single bulk update and reports how many records transitioned.
	MarkRead(ctx context.Context, userId, peerId string) (int64, error)
	UnseenCountByPeer(ctx context.Context, userId string) (map[string]int64, error)
	TotalUnseen(ctx context.Context, userId string) (int64, error)
}

type messageRepository struct {
	db mongo.Database
}

func NewMessageRepository(db mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, message entity.Message) (entity.Message, error) {
	collection := r.db.Collection("messages")
	message.Id = uuid.New().String()
	message.Seen = false
	message.CreatedAt = time.Now()

	_, err := collection.InsertOne(ctx, message)
	if err != nil {
		return entity.Message{}, err
	}

	return message, nil
}

func (r *messageRepository) Get(ctx context.Context, messageId string) (entity.Message, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{"_id": messageId}

	var message entity.Message
	err := collection.FindOne(ctx, filter).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Message{}, ErrMessageNotFound
		}
		return entity.Message{}, err
	}

	return message, nil
}

// conversationRow is the shape produced by the listing aggregation: the
// newest message per peer plus the conditional unseen sum for that peer.
type conversationRow struct {
	PeerId      string    `bson:"_id"`
	Id          string    `bson:"id"`
	From        string    `bson:"from"`
	To          string    `bson:"to"`
	Text        string    `bson:"text"`
	Seen        bool      `bson:"seen"`
	CreatedAt   time.Time `bson:"createdAt"`
	UnseenCount int64     `bson:"unseenCount"`
}

func (r *messageRepository) ListConversations(ctx context.Context, userId string, skip, limit int64) ([]entity.ConversationSummary, error) {
	collection := r.db.Collection("messages")

	matchStage := bson.D{{Key: "$match", Value: bson.M{
		"$or": bson.A{
			bson.M{"from": userId},
			bson.M{"to": userId},
		},
	}}}
	sortStage := bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}
	peerStage := bson.D{{Key: "$addFields", Value: bson.M{
		"peer": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$from", userId}},
			"$to",
			"$from",
		}},
	}}}
	groupStage := bson.D{{Key: "$group", Value: bson.M{
		"_id":       "$peer",
		"id":        bson.M{"$first": "$_id"},
		"from":      bson.M{"$first": "$from"},
		"to":        bson.M{"$first": "$to"},
		"text":      bson.M{"$first": "$text"},
		"seen":      bson.M{"$first": "$seen"},
		"createdAt": bson.M{"$first": "$createdAt"},
		"unseenCount": bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$and": bson.A{
				bson.M{"$eq": bson.A{"$to", userId}},
				bson.M{"$eq": bson.A{"$seen", false}},
			}},
			1,
			0,
		}}},
	}}}
	latestFirstStage := bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}}
	skipStage := bson.D{{Key: "$skip", Value: skip}}
	limitStage := bson.D{{Key: "$limit", Value: limit}}

	cursor, err := collection.Aggregate(ctx, mongo.Pipeline{
		matchStage, sortStage, peerStage, groupStage, latestFirstStage, skipStage, limitStage,
	})
	if err != nil {
		return nil, err
	}

	var rows []conversationRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	summaries := make([]entity.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, entity.ConversationSummary{
			PeerId: row.PeerId,
			Last: entity.Message{
				Id:        row.Id,
				From:      row.From,
				To:        row.To,
				Text:      row.Text,
				Seen:      row.Seen,
				CreatedAt: row.CreatedAt,
			},
			UnseenCount: row.UnseenCount,
		})
	}

	return summaries, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, userId, peerId string) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"from": peerId,
		"to":   userId,
		"seen": false,
	}
	update := bson.M{
		"$set": bson.M{"seen": true},
	}

	result, err := collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *messageRepository) UnseenCountByPeer(ctx context.Context, userId string) (map[string]int64, error) {
	collection := r.db.Collection("messages")

	matchStage := bson.D{{Key: "$match", Value: bson.M{
		"to":   userId,
		"seen": false,
	}}}
	groupStage := bson.D{{Key: "$group", Value: bson.M{
		"_id":   "$from",
		"count": bson.M{"$sum": 1},
	}}}

	cursor, err := collection.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage})
	if err != nil {
		return nil, err
	}

	var rows []struct {
		PeerId string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PeerId] = row.Count
	}

	return counts, nil
}

func (r *messageRepository) TotalUnseen(ctx context.Context, userId string) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"to":   userId,
		"seen": false,
	}

	return collection.CountDocuments(ctx, filter)
}
