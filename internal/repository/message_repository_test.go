package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"konekt/infrastructure/db"
	"konekt/internal/entity"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")
	os.Exit(m.Run())
}

// setupTestDB connects to the database named by MONGODB_URI and hands back
// a clean messages collection. Skips when no database is reachable.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("Skipping: MONGODB_URI not set")
	}

	ctx := context.Background()
	store, err := db.NewMongoStore(ctx, uri, "konekt_test")
	if err != nil {
		t.Skipf("Skipping: could not connect to test database: %v", err)
		return nil
	}

	if err := store.DB.Collection("messages").Drop(ctx); err != nil {
		t.Fatalf("Failed to drop messages collection: %v", err)
	}

	t.Cleanup(func() {
		_ = store.DB.Collection("messages").Drop(context.Background())
		_ = store.Close(context.Background())
	})

	return store.DB
}

// send appends a message and leaves room between timestamps so ordering is
// stable at Mongo's millisecond precision.
func send(t *testing.T, repo MessageRepository, from, to, text string) entity.Message {
	t.Helper()

	message, err := repo.Create(context.Background(), entity.Message{
		From: from,
		To:   to,
		Text: text,
	})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	return message
}

func TestCreate_AssignsIdentityAndDefaults(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))

	message := send(t, repo, "alice", "bob", "hi")

	require.NotEmpty(t, message.Id)
	require.False(t, message.Seen)
	require.WithinDuration(t, time.Now(), message.CreatedAt, 5*time.Second)

	stored, err := repo.Get(context.Background(), message.Id)
	require.NoError(t, err)
	require.Equal(t, "hi", stored.Text)
	require.Equal(t, "alice", stored.From)
}

func TestListConversations_OneRowPerPeerNewestFirst(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))
	ctx := context.Background()

	send(t, repo, "bob", "alice", "old from bob")
	send(t, repo, "bob", "alice", "new from bob")
	send(t, repo, "alice", "carol", "to carol")
	send(t, repo, "carol", "alice", "from carol")

	summaries, err := repo.ListConversations(ctx, "alice", 0, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	require.Equal(t, "carol", summaries[0].PeerId)
	require.Equal(t, "from carol", summaries[0].Last.Text)
	require.Equal(t, int64(1), summaries[0].UnseenCount)

	require.Equal(t, "bob", summaries[1].PeerId)
	require.Equal(t, "new from bob", summaries[1].Last.Text)
	require.Equal(t, int64(2), summaries[1].UnseenCount)
}

func TestListConversations_OutgoingOnlyConversationHasZeroUnseen(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))

	send(t, repo, "alice", "bob", "no reply yet")

	summaries, err := repo.ListConversations(context.Background(), "alice", 0, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "bob", summaries[0].PeerId)
	require.Zero(t, summaries[0].UnseenCount)
}

func TestListConversations_Pagination(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		send(t, repo, fmt.Sprintf("peer-%02d", i), "alice", "hello")
	}

	page0, err := repo.ListConversations(ctx, "alice", 0, 10)
	require.NoError(t, err)
	page1, err := repo.ListConversations(ctx, "alice", 10, 10)
	require.NoError(t, err)
	page2, err := repo.ListConversations(ctx, "alice", 20, 10)
	require.NoError(t, err)

	require.Len(t, page0, 10)
	require.Len(t, page1, 2)
	require.Empty(t, page2)

	seen := make(map[string]bool)
	for _, summary := range append(page0, page1...) {
		require.False(t, seen[summary.PeerId])
		seen[summary.PeerId] = true
	}
}

func TestMarkRead_BulkAndIdempotent(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))
	ctx := context.Background()

	send(t, repo, "alice", "bob", "one")
	send(t, repo, "alice", "bob", "two")
	send(t, repo, "carol", "bob", "untouched")

	transitioned, err := repo.MarkRead(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(2), transitioned)

	transitioned, err = repo.MarkRead(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Zero(t, transitioned)

	counts, err := repo.UnseenCountByPeer(ctx, "bob")
	require.NoError(t, err)
	require.Zero(t, counts["alice"])
	require.Equal(t, int64(1), counts["carol"])
}

func TestTotalUnseen_EqualsSumAcrossPeers(t *testing.T) {
	repo := NewMessageRepository(*setupTestDB(t))
	ctx := context.Background()

	send(t, repo, "bob", "alice", "one")
	send(t, repo, "carol", "alice", "two")
	send(t, repo, "carol", "alice", "three")
	send(t, repo, "alice", "bob", "outgoing")

	counts, err := repo.UnseenCountByPeer(ctx, "alice")
	require.NoError(t, err)

	var sum int64
	for _, count := range counts {
		sum += count
	}

	total, err := repo.TotalUnseen(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, sum, total)
	require.Equal(t, int64(3), total)
}
