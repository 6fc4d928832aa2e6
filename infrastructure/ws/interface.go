package ws

// IHub is a per-user addressable broadcast channel. Delivery is best-effort:
// an event published to a user with no live subscribers is dropped.
type IHub interface {
	Run()
	RegisterClient(client *UserClient)
	UnregisterClient(client *UserClient)
	// Publish delivers payload to every connection currently subscribed for
	// userID. At-most-once, no queue, no retry.
	Publish(userID string, payload []byte)
	ClientCount() int
	// SetOnUserOffline registers a callback invoked when a user's last
	// connection goes away.
	SetOnUserOffline(callback func(userID string) error)
}
