package services

import (
	"fmt"

	pubnub "github.com/pubnub/go"
)

// Notifier pushes reservation and payment events to per-user PubNub
// channels so clients do not have to poll.
type Notifier struct {
	pubnub *pubnub.PubNub
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{pubnub: pn}
}

// NotifyUser publishes a message on the user's channel. A nil notifier or
// missing PubNub client is a no-op, which keeps tests and minimal deploys
// free of realtime plumbing.
func (n *Notifier) NotifyUser(userID string, message map[string]any) {
	if n == nil || n.pubnub == nil || userID == "" {
		return
	}

	channel := fmt.Sprintf("user-%s", userID)
	n.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}
