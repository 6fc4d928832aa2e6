// Package session models the messages-panel client as a reducer: every
// incoming event (push frame, fetch result, UI interaction) is folded
// against whatever state is current at apply-time, never against a
// captured snapshot.
package session

import (
	"sort"
	"sync"

	"konekt/internal/entity"
)

type Phase int

const (
	Closed Phase = iota
	Loading
	Ready
	LoadingMore
)

// PageSize mirrors the server's fixed conversation page size.
const PageSize = 10

// State is the local view of the messages panel: loaded conversation
// summaries (newest first), the unread badge, and the next page to fetch.
type State struct {
	Phase         Phase
	Conversations []entity.MessageResponse
	Badge         int
	NextOffset    int
	Err           error

	// fetching tracks an in-flight page fetch independently of Phase, so
	// closing the panel mid-fetch cannot let a reopen start a second one.
	fetching bool
}

func (s State) open() bool {
	return s.Phase != Closed
}

type Event interface {
	isEvent()
}

// Toggle is a click on the panel toggle control.
type Toggle struct{}

// OutsideClick is any click outside the toggle; it closes the panel unless
// it lands inside the panel or on the load-more control.
type OutsideClick struct {
	InPanel    bool
	OnLoadMore bool
}

// LoadMore is a click on the load-more control.
type LoadMore struct{}

// PageLoaded is the result of a conversation page fetch.
type PageLoaded struct {
	Items []entity.MessageResponse
	Err   error
}

// UnreadLoaded is the result of an unread-count fetch.
type UnreadLoaded struct {
	Count int
}

// Push is a frame received on the push channel.
type Push struct {
	Event entity.MessageEvent
}

func (Toggle) isEvent()       {}
func (OutsideClick) isEvent() {}
func (LoadMore) isEvent()     {}
func (PageLoaded) isEvent()   {}
func (UnreadLoaded) isEvent() {}
func (Push) isEvent()         {}

// Reduce folds one event into the state. It is pure: the caller owns
// side effects (issuing fetches when the phase enters Loading/LoadingMore).
func Reduce(state State, event Event) State {
	switch e := event.(type) {
	case Toggle:
		if state.open() {
			state.Phase = Closed
			return state
		}
		state.Badge = 0
		if len(state.Conversations) == 0 && !state.fetching {
			state.Phase = Loading
			state.fetching = true
		} else {
			state.Phase = Ready
		}
		return state

	case OutsideClick:
		if state.open() && !e.InPanel && !e.OnLoadMore {
			state.Phase = Closed
		}
		return state

	case LoadMore:
		if state.Phase == Ready && !state.fetching {
			state.Phase = LoadingMore
			state.fetching = true
		}
		return state

	case PageLoaded:
		return reducePage(state, e)

	case UnreadLoaded:
		state.Badge = e.Count
		return state

	case Push:
		return reducePush(state, e.Event)
	}

	return state
}

func reducePage(state State, page PageLoaded) State {
	wasOpen := state.open()
	state.fetching = false

	if page.Err != nil {
		// Stale-but-available: an existing view survives a failed fetch.
		state.Err = page.Err
		if wasOpen {
			state.Phase = Ready
		}
		return state
	}

	state.Err = nil
	state.Conversations = sortNewestFirst(append(state.Conversations, page.Items...))
	state.NextOffset++
	if wasOpen {
		state.Phase = Ready
	}
	return state
}

func reducePush(state State, event entity.MessageEvent) State {
	if event.Type != entity.EventNewMessage {
		return state
	}

	if event.IsOwnMessage {
		// The sender's own echo never grows the sender's badge.
		state.Badge = 0
	} else {
		state.Badge++
	}

	key := event.Message.ConversationKey()
	for i, conversation := range state.Conversations {
		if conversation.ConversationKey() != key {
			continue
		}

		replacement := event.Message
		replacement.UnseenCount = conversation.UnseenCount
		if !event.IsOwnMessage {
			replacement.UnseenCount++
		}

		state.Conversations[i] = replacement
		state.Conversations = sortNewestFirst(state.Conversations)
		return state
	}

	// Unknown conversation: only the badge moves; the list is refreshed by
	// the next on-demand fetch.
	return state
}

func sortNewestFirst(conversations []entity.MessageResponse) []entity.MessageResponse {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})
	return conversations
}

// Session is a concurrency-safe holder of State. Apply serializes folds so
// events from the push stream and the UI never interleave mid-update.
type Session struct {
	mu    sync.Mutex
	state State
}

func New() *Session {
	return &Session{}
}

func (s *Session) Apply(event Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, event)
	return s.state
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
