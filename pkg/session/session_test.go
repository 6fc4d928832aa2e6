package session

import (
	"errors"
	"testing"
	"time"

	"konekt/internal/entity"

	"github.com/stretchr/testify/require"
)

func user(id string) entity.UserPublic {
	return entity.UserPublic{Id: id, Username: "user-" + id}
}

func conversation(id, from, to string, createdAt time.Time, unseen int64) entity.MessageResponse {
	return entity.MessageResponse{
		Id:          id,
		From:        user(from),
		To:          user(to),
		Text:        "hello",
		CreatedAt:   createdAt,
		UnseenCount: unseen,
	}
}

func pushed(id, from, to string, createdAt time.Time, isOwn bool) Push {
	return Push{Event: entity.MessageEvent{
		Type:         entity.EventNewMessage,
		Message:      conversation(id, from, to, createdAt, 0),
		IsOwnMessage: isOwn,
	}}
}

func TestToggle_OpensAndTriggersInitialFetch(t *testing.T) {
	state := Reduce(State{}, Toggle{})

	require.Equal(t, Loading, state.Phase)
	require.Zero(t, state.Badge)
}

func TestToggle_WithLoadedConversationsDoesNotRefetch(t *testing.T) {
	now := time.Now()
	state := State{
		Phase:         Closed,
		Conversations: []entity.MessageResponse{conversation("m1", "a", "b", now, 0)},
		Badge:         3,
	}

	state = Reduce(state, Toggle{})

	require.Equal(t, Ready, state.Phase)
	require.Zero(t, state.Badge)
}

func TestToggle_ClosesWhenOpen(t *testing.T) {
	state := Reduce(State{Phase: Ready}, Toggle{})
	require.Equal(t, Closed, state.Phase)
}

func TestOutsideClick_ClosesUnlessInPanelOrLoadMore(t *testing.T) {
	open := State{Phase: Ready}

	require.Equal(t, Closed, Reduce(open, OutsideClick{}).Phase)
	require.Equal(t, Ready, Reduce(open, OutsideClick{InPanel: true}).Phase)
	require.Equal(t, Ready, Reduce(open, OutsideClick{OnLoadMore: true}).Phase)
	require.Equal(t, Closed, Reduce(State{Phase: Closed}, OutsideClick{}).Phase)
}

func TestLoadMore_SuppressedWhileFetchInFlight(t *testing.T) {
	require.Equal(t, LoadingMore, Reduce(State{Phase: Ready}, LoadMore{}).Phase)
	require.Equal(t, Loading, Reduce(State{Phase: Loading}, LoadMore{}).Phase)
	require.Equal(t, LoadingMore, Reduce(State{Phase: LoadingMore}, LoadMore{}).Phase)
	require.Equal(t, Closed, Reduce(State{Phase: Closed}, LoadMore{}).Phase)
}

func TestToggle_CloseDuringInitialFetchDoesNotRefetchOnReopen(t *testing.T) {
	state := Reduce(State{}, Toggle{})
	require.Equal(t, Loading, state.Phase)

	state = Reduce(state, Toggle{})
	require.Equal(t, Closed, state.Phase)

	// The first fetch is still in flight; reopening must not start a second
	// one, or its result would be appended twice.
	state = Reduce(state, Toggle{})
	require.Equal(t, Ready, state.Phase)

	state = Reduce(state, PageLoaded{Items: []entity.MessageResponse{
		conversation("m1", "peer", "me", time.Now(), 1),
	}})
	require.Len(t, state.Conversations, 1)
	require.Equal(t, 1, state.NextOffset)

	// Once the fetch settles, load-more works as usual.
	state = Reduce(state, LoadMore{})
	require.Equal(t, LoadingMore, state.Phase)
}

func TestPageLoaded_AppendsAndAdvancesOffset(t *testing.T) {
	now := time.Now()
	state := State{Phase: Loading}

	state = Reduce(state, PageLoaded{Items: []entity.MessageResponse{
		conversation("m1", "a", "b", now.Add(-time.Hour), 1),
		conversation("m2", "c", "b", now, 2),
	}})

	require.Equal(t, Ready, state.Phase)
	require.Equal(t, 1, state.NextOffset)
	require.Len(t, state.Conversations, 2)
	// Newest first.
	require.Equal(t, "m2", state.Conversations[0].Id)
	require.NoError(t, state.Err)
}

func TestPageLoaded_ErrorWithNoDataIsVisible(t *testing.T) {
	fetchErr := errors.New("fetch failed")

	state := Reduce(State{Phase: Loading}, PageLoaded{Err: fetchErr})

	require.Equal(t, Ready, state.Phase)
	require.ErrorIs(t, state.Err, fetchErr)
	require.Empty(t, state.Conversations)
}

func TestPageLoaded_ErrorPreservesExistingView(t *testing.T) {
	now := time.Now()
	loaded := []entity.MessageResponse{conversation("m1", "a", "b", now, 0)}

	state := Reduce(State{Phase: LoadingMore, Conversations: loaded, NextOffset: 1}, PageLoaded{Err: errors.New("boom")})

	require.Equal(t, Ready, state.Phase)
	require.Len(t, state.Conversations, 1)
	require.Equal(t, 1, state.NextOffset)
}

func TestPush_OwnMessageResetsBadge(t *testing.T) {
	state := State{Phase: Ready, Badge: 7}

	state = Reduce(state, pushed("m9", "me", "peer", time.Now(), true))

	require.Zero(t, state.Badge)
}

func TestPush_IncomingMessageIncrementsBadge(t *testing.T) {
	state := Reduce(State{}, pushed("m9", "peer", "me", time.Now(), false))
	require.Equal(t, 1, state.Badge)

	state = Reduce(state, pushed("m10", "peer", "me", time.Now(), false))
	require.Equal(t, 2, state.Badge)
}

func TestPush_LoadedConversationIsReplacedAndResorted(t *testing.T) {
	now := time.Now()
	state := State{
		Phase: Ready,
		Conversations: []entity.MessageResponse{
			conversation("m2", "carol", "me", now, 0),
			conversation("m1", "alice", "me", now.Add(-time.Hour), 1),
		},
	}

	// Alice writes again; direction is reversed relative to the loaded row.
	state = Reduce(state, pushed("m3", "me", "alice", now.Add(time.Minute), true))

	require.Len(t, state.Conversations, 2)
	require.Equal(t, "m3", state.Conversations[0].Id)
	require.Equal(t, "m2", state.Conversations[1].Id)
	// Own message leaves the unseen count alone.
	require.Equal(t, int64(1), state.Conversations[0].UnseenCount)
}

func TestPush_IncomingBumpsUnseenCountOfLoadedConversation(t *testing.T) {
	now := time.Now()
	state := State{
		Phase: Ready,
		Conversations: []entity.MessageResponse{
			conversation("m1", "alice", "me", now.Add(-time.Hour), 1),
		},
	}

	state = Reduce(state, pushed("m2", "alice", "me", now, false))

	require.Equal(t, "m2", state.Conversations[0].Id)
	require.Equal(t, int64(2), state.Conversations[0].UnseenCount)
}

func TestPush_UnknownConversationOnlyMovesBadge(t *testing.T) {
	now := time.Now()
	state := State{
		Phase: Ready,
		Conversations: []entity.MessageResponse{
			conversation("m1", "alice", "me", now.Add(-time.Hour), 0),
		},
	}

	state = Reduce(state, pushed("m2", "newcomer", "me", now, false))

	require.Len(t, state.Conversations, 1)
	require.Equal(t, "m1", state.Conversations[0].Id)
	require.Equal(t, 1, state.Badge)
}

func TestPush_AppliesWhileClosed(t *testing.T) {
	state := Reduce(State{Phase: Closed}, pushed("m1", "peer", "me", time.Now(), false))

	require.Equal(t, Closed, state.Phase)
	require.Equal(t, 1, state.Badge)
}

func TestUnreadLoaded_SetsBadge(t *testing.T) {
	state := Reduce(State{Badge: 1}, UnreadLoaded{Count: 5})
	require.Equal(t, 5, state.Badge)
}

func TestSession_FoldsAgainstCurrentState(t *testing.T) {
	s := New()

	// A push that arrives between attach and apply still sees the latest
	// badge, not a snapshot.
	s.Apply(UnreadLoaded{Count: 4})
	state := s.Apply(pushed("m1", "peer", "me", time.Now(), false))

	require.Equal(t, 5, state.Badge)

	state = s.Apply(pushed("m2", "me", "peer", time.Now(), true))
	require.Zero(t, state.Badge)
}
