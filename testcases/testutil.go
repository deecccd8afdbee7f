package testcases

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/formbot/agent"
	"github.com/tbxark/formbot/form"
	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{BaseURL:%q, Model:%q}", c.BaseURL, c.Model)
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := json.Unmarshal(file, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func InitChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("FORMBOT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set FORMBOT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	conf, err := loadConfig("../config.json")
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	if conf.APIKey == "" {
		t.Skip("config.json api_key is empty")
		return nil
	}
	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// BookingRecorder collects the bookings handed over on submit and cancel.
type BookingRecorder struct {
	mu        sync.Mutex
	form      *form.RestaurantForm
	Submitted []form.RestaurantBooking
	Cancelled []string
}

func (r *BookingRecorder) Submit(ctx context.Context, tracker *types.Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Submitted = append(r.Submitted, r.form.Booking(tracker))
	return nil
}

func (r *BookingRecorder) Cancel(ctx context.Context, tracker *types.Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cancelled = append(r.Cancelled, tracker.SenderID)
	return nil
}

// Conversation drives a FormFlow for one sender.
type Conversation struct {
	t        *testing.T
	ctx      context.Context
	Flow     *agent.FormFlow
	Trackers *agent.TrackerStore
	Bookings *BookingRecorder
}

type conversationOptions struct {
	sender  string
	domain  *responder.Domain
	prefill map[string]types.Value
}

type ConversationOption func(*conversationOptions)

func WithSender(sender string) ConversationOption {
	return func(o *conversationOptions) {
		o.sender = sender
	}
}

func WithDomain(domain *responder.Domain) ConversationOption {
	return func(o *conversationOptions) {
		o.domain = domain
	}
}

func WithPrefill(values map[string]types.Value) ConversationOption {
	return func(o *conversationOptions) {
		o.prefill = values
	}
}

type flowFactory func(f *form.RestaurantForm, domain *responder.Domain, trackers agent.TrackerReadWriter, opts ...agent.FlowOption) (*agent.FormFlow, error)

func newConversation(t *testing.T, factory flowFactory, opts ...ConversationOption) *Conversation {
	t.Helper()
	o := &conversationOptions{sender: t.Name()}
	for _, opt := range opts {
		opt(o)
	}
	f := form.NewRestaurantForm()
	bookings := &BookingRecorder{form: f}
	trackers := agent.NewMemoryTrackerStore()
	flowOpts := []agent.FlowOption{agent.WithManager(bookings)}
	if o.prefill != nil {
		flowOpts = append(flowOpts, agent.WithPrefill(o.prefill))
	}
	flow, err := factory(f, o.domain, trackers, flowOpts...)
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	return &Conversation{
		t:        t,
		ctx:      agent.WithStateKey(context.Background(), o.sender),
		Flow:     flow,
		Trackers: trackers,
		Bookings: bookings,
	}
}

// NewLocalConversation uses the keyword interpreter and is deterministic.
func NewLocalConversation(t *testing.T, opts ...ConversationOption) *Conversation {
	return newConversation(t, func(f *form.RestaurantForm, domain *responder.Domain, trackers agent.TrackerReadWriter, flowOpts ...agent.FlowOption) (*agent.FormFlow, error) {
		return agent.NewLocalFormFlow(f, domain, trackers, flowOpts...)
	}, opts...)
}

// NewLiveConversation talks to the configured chat model.
func NewLiveConversation(t *testing.T, opts ...ConversationOption) *Conversation {
	chatModel := InitChatModel(t)
	if chatModel == nil {
		return nil
	}
	return newConversation(t, func(f *form.RestaurantForm, domain *responder.Domain, trackers agent.TrackerReadWriter, flowOpts ...agent.FlowOption) (*agent.FormFlow, error) {
		return agent.NewToolBasedFormFlow(f, chatModel, domain, trackers, "English", flowOpts...)
	}, opts...)
}

func (c *Conversation) Context() context.Context {
	return c.ctx
}

// Say runs one user turn and fails the test on error.
func (c *Conversation) Say(text string) *agent.Response {
	c.t.Helper()
	resp, err := c.Flow.Invoke(c.ctx, &agent.Request{UserText: text})
	if err != nil {
		c.t.Fatalf("turn %q failed: %v", text, err)
	}
	c.t.Logf("user: %s\nbot: %s", text, resp.Text())
	return resp
}

// Try runs one user turn and returns the error instead of failing.
func (c *Conversation) Try(text string) (*agent.Response, error) {
	return c.Flow.Invoke(c.ctx, &agent.Request{UserText: text})
}

func (c *Conversation) Tracker() *types.Tracker {
	c.t.Helper()
	tracker, err := c.Trackers.Read(c.ctx)
	if err != nil {
		c.t.Fatalf("failed to read tracker: %v", err)
	}
	return tracker
}

func Templates(resp *agent.Response) []string {
	out := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, m.Template)
	}
	return out
}
