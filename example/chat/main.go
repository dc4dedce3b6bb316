package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/encodelabs/careagent/agent"
)

var quitWords = map[string]bool{
	"quit":    true,
	"exit":    true,
	"bye":     true,
	"goodbye": true,
}

const goodbye = "Take care of yourself. Remember, it's okay to reach out whenever you need support. Goodbye!"

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	conversation := flag.String("conversation", "", "conversation id to resume")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := startApp(context.Background(), config, *conversation); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config, conversationID string) error {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}

	store := agent.NewMemoryStateStore()
	if config.DBPath != "" {
		cache, cErr := agent.OpenSQLiteCache[*agent.ConversationState](config.DBPath)
		if cErr != nil {
			return cErr
		}
		defer cache.Close()
		store = agent.NewStateStore(cache)
	}

	flow, err := agent.NewModelChatFlow(cm, store,
		agent.WithGatewayTimeout(30*time.Second),
	)
	if err != nil {
		return err
	}

	conversationID, greeting, err := flow.StartSession(ctx, conversationID)
	if err != nil {
		return err
	}
	fmt.Printf("\nCompanion: %s\n\n", greeting)
	fmt.Printf("(conversation %s, type 'quit' to end the session)\n\n", conversationID)

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("\nSession ended.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if quitWords[strings.ToLower(input)] {
			fmt.Printf("\nCompanion: %s\n", goodbye)
			return nil
		}
		reply, tErr := flow.ProcessTurn(ctx, conversationID, input)
		if tErr != nil {
			if reply == "" {
				return tErr
			}
			// Reply is still usable; only persistence failed.
			fmt.Printf("(warning: %v)\n", tErr)
		}
		fmt.Printf("\nCompanion: %s\n\n", reply)
	}
}
