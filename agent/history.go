package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Trimmer bounds the chat history kept for a conversation.
type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// LastTurnsTrimmer keeps system messages plus everything from the start of
// the last Turns user turns. A turn starts at a user message. Turns <= 0
// keeps only system messages.
type LastTurnsTrimmer struct {
	Turns int
}

func (t LastTurnsTrimmer) Trim(history []*schema.Message) []*schema.Message {
	start := len(history)
	if t.Turns > 0 {
		start = 0
		seen := 0
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role != schema.User {
				continue
			}
			seen++
			if seen == t.Turns {
				start = i
				break
			}
		}
	}
	out := make([]*schema.Message, 0, len(history))
	for i, m := range history {
		if i >= start || m.Role == schema.System {
			out = append(out, m)
		}
	}
	return out
}

type HistoryReadWriter interface {
	Load(ctx context.Context) ([]*schema.Message, error)
	Clear(ctx context.Context) error

	// Append adds msgs, trims, saves and returns the history to feed the
	// next adk run.
	Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error)
}

// HistoryStore keeps the chat transcript next to the tracker, under the
// same state key.
type HistoryStore struct {
	store   Store[[]*schema.Message]
	trimmer Trimmer
}

func NewHistoryStore(core Cache[[]*schema.Message], trimmer Trimmer) *HistoryStore {
	return &HistoryStore{
		store:   NewStore(core, "formbot:history"),
		trimmer: trimmer,
	}
}

func NewMemoryHistoryStore(trimmer Trimmer) *HistoryStore {
	return NewHistoryStore(NewMemoryCore[[]*schema.Message](), trimmer)
}

func (s *HistoryStore) Load(ctx context.Context) ([]*schema.Message, error) {
	hist, _, err := s.store.Get(ctx)
	return hist, err
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

// Append skips nil messages and a message repeating the previous one, which
// happens when a rejected turn is re-sent.
func (s *HistoryStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	hist, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(hist); n > 0 && hist[n-1].Role == msg.Role && hist[n-1].Content == msg.Content {
			continue
		}
		hist = append(hist, msg)
	}
	if s.trimmer != nil {
		hist = s.trimmer.Trim(hist)
	}
	if err := s.store.Set(ctx, hist); err != nil {
		return nil, err
	}
	return hist, nil
}

var _ HistoryReadWriter = (*HistoryStore)(nil)
