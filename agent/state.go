package agent

import (
	"context"

	"github.com/tbxark/formbot/types"
)

// TrackerReadWriter loads and saves the tracker of the conversation routed
// by the context state key.
type TrackerReadWriter interface {
	Init(ctx context.Context) *types.Tracker
	Read(ctx context.Context) (*types.Tracker, error)
	Write(ctx context.Context, tracker *types.Tracker) error
	Remove(ctx context.Context) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey sets a routing key for state storage in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

// StateKeyFromContext gets the routing key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(stateKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

// stateKey falls back to a shared default conversation when ctx carries
// no key.
func stateKey(ctx context.Context) string {
	if key, ok := StateKeyFromContext(ctx); ok && key != "" {
		return key
	}
	return defaultStateKey
}

// TrackerStore keeps trackers in a Cache under the "formbot:tracker" namespace.
type TrackerStore struct {
	store Store[*types.Tracker]
}

func NewTrackerStore(core Cache[*types.Tracker]) *TrackerStore {
	return &TrackerStore{store: NewStore(core, "formbot:tracker")}
}

func NewMemoryTrackerStore() *TrackerStore {
	return NewTrackerStore(NewMemoryCore[*types.Tracker]())
}

func (s *TrackerStore) Init(ctx context.Context) *types.Tracker {
	return types.NewTracker(stateKey(ctx))
}

func (s *TrackerStore) Read(ctx context.Context) (*types.Tracker, error) {
	tracker, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || tracker == nil {
		return s.Init(ctx), nil
	}
	if tracker.Phase == "" {
		tracker.Phase = types.PhaseCollecting
	}
	if tracker.Slots == nil {
		tracker.Slots = map[string]types.Value{}
	}
	return tracker, nil
}

func (s *TrackerStore) Write(ctx context.Context, tracker *types.Tracker) error {
	if tracker.Phase == "" {
		tracker.Phase = types.PhaseCollecting
	}
	return s.store.Set(ctx, tracker)
}

func (s *TrackerStore) Remove(ctx context.Context) error {
	return s.store.Del(ctx)
}

var _ TrackerReadWriter = (*TrackerStore)(nil)
