package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/tbxark/formbot/agent"
	"github.com/tbxark/formbot/form"
	"github.com/tbxark/formbot/responder"
	"github.com/tbxark/formbot/types"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var sender string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive booking conversation on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(root.configPath, root.envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if sender == "" {
				sender = uuid.NewString()
			}
			return startChat(cmd.Context(), config, sender, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "", "conversation id (random when empty)")
	return cmd
}

type stores struct {
	trackers agent.TrackerReadWriter
	history  *agent.HistoryStore
	close    func() error
}

func newStores(ctx context.Context, config *Config) (*stores, error) {
	trimmer := agent.LastTurnsTrimmer{Turns: 20}
	if config.RedisAddr == "" {
		return &stores{
			trackers: agent.NewMemoryTrackerStore(),
			history:  agent.NewMemoryHistoryStore(trimmer),
			close:    func() error { return nil },
		}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", config.RedisAddr, err)
	}
	slog.Info("Using redis tracker store", "addr", config.RedisAddr)
	ttl := time.Duration(config.TrackerTTLHours) * time.Hour
	return &stores{
		trackers: agent.NewTrackerStore(agent.NewRedisCore[*types.Tracker](client, ttl)),
		history:  agent.NewHistoryStore(agent.NewRedisCore[[]*schema.Message](client, ttl), trimmer),
		close:    client.Close,
	}, nil
}

func newFlow(ctx context.Context, config *Config, f *form.RestaurantForm, trackers agent.TrackerReadWriter) (*agent.FormFlow, error) {
	domain, err := responder.DefaultDomain()
	if err != nil {
		return nil, err
	}
	if config.Domain != "" {
		custom, err := responder.LoadDomain(config.Domain)
		if err != nil {
			return nil, err
		}
		domain = domain.Merge(custom)
	}
	manager := agent.WithManager(&BookingManager{form: f})
	if config.APIKey == "" {
		slog.Info("No API key configured, using local interpreter")
		return agent.NewLocalFormFlow(f, domain, trackers, manager)
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return agent.NewToolBasedFormFlow(f, cm, domain, trackers, config.Lang, manager)
}

func startChat(ctx context.Context, config *Config, sender string, in io.Reader, out io.Writer) error {
	ctx = agent.WithStateKey(ctx, sender)
	st, err := newStores(ctx, config)
	if err != nil {
		return err
	}
	defer st.close()

	f := form.NewRestaurantForm()
	flow, err := newFlow(ctx, config, f, st.trackers)
	if err != nil {
		return err
	}
	formAgent := agent.NewAgent(
		"RestaurantBooker",
		"An agent that books restaurant tables by collecting cuisine, party size, seating, preferences and feedback",
		flow,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: formAgent,
	})

	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "Restaurant booking (conversation %s). Say hi to start, \"stop\" to cancel.\n", sender)
	for {
		fmt.Fprint(out, "you: ")
		input, rErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if rErr != nil {
				fmt.Fprintln(out, "bye.")
				return nil
			}
			continue
		}
		history, err := st.history.Append(ctx, schema.UserMessage(input))
		if err != nil {
			return err
		}
		iter := runner.Run(ctx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				if !errors.Is(event.Err, agent.ErrFormClosed) {
					return event.Err
				}
				slog.Debug("Stored booking was already closed", "sender", sender)
				if err := restart(ctx, flow, st.history); err != nil {
					return err
				}
				fmt.Fprintln(out, "\nbot: That booking is finished. Say hi to start a new one.")
				continue
			}
			msg, err := event.Output.MessageOutput.GetMessage()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nbot: %v\n======\n", msg.Content)
			if event.Action != nil && event.Action.Exit {
				if err := restart(ctx, flow, st.history); err != nil {
					return err
				}
				continue
			}
			if _, err := st.history.Append(ctx, msg); err != nil {
				return err
			}
		}
		if rErr != nil {
			return nil
		}
	}
}

// restart drops the finished booking so the next message opens a new form.
func restart(ctx context.Context, flow *agent.FormFlow, history *agent.HistoryStore) error {
	if err := flow.Reset(ctx); err != nil {
		return err
	}
	return history.Clear(ctx)
}
