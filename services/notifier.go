package services

import (
	"log"
	"sync"
	"time"
)

// ChatResolver looks up the addressable chat for a user, if one is known
type ChatResolver interface {
	ResolveChat(userID string) (int64, bool)
}

// Sender delivers a text message to a chat
type Sender interface {
	Send(chatID int64, text string) error
}

// Notifier interface defines the rate-limited outbound message dispatcher
type Notifier interface {
	Notify(userID, message string, bypassCooldown bool)
}

// notifier enforces a per-user cooldown between messages so progress ticks
// cannot trip Telegram's flood limits. A dropped message is never replayed.
// Management replies pass bypassCooldown and are sent without checking or
// stamping the cooldown.
type notifier struct {
	resolver ChatResolver
	sender   Sender
	cooldown time.Duration
	lastSent map[string]time.Time
	mu       sync.Mutex
}

// NewNotifier creates a notifier with the given per-user cooldown
func NewNotifier(resolver ChatResolver, sender Sender, cooldown time.Duration) Notifier {
	return &notifier{
		resolver: resolver,
		sender:   sender,
		cooldown: cooldown,
		lastSent: make(map[string]time.Time),
	}
}

// Notify sends a message to the user's chat. Best-effort: a missing chat or
// a failed send is logged and otherwise ignored.
func (n *notifier) Notify(userID, message string, bypassCooldown bool) {
	chatID, ok := n.resolver.ResolveChat(userID)
	if !ok {
		log.Printf("No chat known for user %s, dropping notification", userID)
		return
	}

	if !bypassCooldown {
		n.mu.Lock()
		if time.Since(n.lastSent[userID]) < n.cooldown {
			n.mu.Unlock()
			log.Printf("Rate limiting notification for user %s", userID)
			return
		}
		n.mu.Unlock()
	}

	// The cooldown stamp is taken after the send so a failed send does not
	// suppress the next attempt. The send itself happens outside the lock.
	if err := n.sender.Send(chatID, message); err != nil {
		log.Printf("Failed to send notification to user %s: %v", userID, err)
		return
	}

	if !bypassCooldown {
		n.mu.Lock()
		n.lastSent[userID] = time.Now()
		n.mu.Unlock()
	}
}
