package botstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the bot's position in a per-chat dialogue.
type State string

const (
	Idle               State = "IDLE"
	AwaitingUsername   State = "AWAITING_USERNAME"
	AwaitingBillCheck  State = "AWAITING_BILL_CHECK"
	AwaitingBillNumber State = "AWAITING_BILL_NUMBER"
)

// TTL is how long a non-idle dialogue survives without activity.
const TTL = time.Hour

const keyPattern = "bot:chat_state:%d"

// Store reads and writes per-chat dialogue state.
type Store struct {
	client *redis.Client
}

// New creates a store on the shared Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the chat's current state. A missing or expired key means the
// dialogue is idle.
func (s *Store) Get(ctx context.Context, chatID int64) (State, error) {
	raw, err := s.client.Get(ctx, fmt.Sprintf(keyPattern, chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return Idle, nil
	}
	if err != nil {
		return Idle, err
	}
	return State(raw), nil
}

// Set stores the chat's state and refreshes the inactivity timer.
// Setting Idle simply clears the key.
func (s *Store) Set(ctx context.Context, chatID int64, state State) error {
	if state == Idle {
		return s.Clear(ctx, chatID)
	}
	return s.client.Set(ctx, fmt.Sprintf(keyPattern, chatID), string(state), TTL).Err()
}

// Clear resets the chat back to idle.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, fmt.Sprintf(keyPattern, chatID)).Err()
}
