package session

import (
	"context"
	"net/url"

	"konekt/internal/entity"

	"github.com/gorilla/websocket"
)

// Subscribe dials the push-channel endpoint and feeds every newMessage
// frame into onEvent until the context is cancelled or the connection
// errors. Missed frames are not replayed; callers reconcile by fetching.
func Subscribe(ctx context.Context, wsURL, accessToken string, onEvent func(entity.MessageEvent)) error {
	endpoint, err := url.Parse(wsURL)
	if err != nil {
		return err
	}
	query := endpoint.Query()
	query.Set("token", accessToken)
	endpoint.RawQuery = query.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		var event entity.MessageEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if event.Type == entity.EventNewMessage {
			onEvent(event)
		}
	}
}
