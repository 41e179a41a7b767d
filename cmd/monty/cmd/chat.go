package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/montyhq/monty/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the trading assistant",
	Long: `Interactive chat with the Claude-backed trading assistant.

The assistant can look up quotes, positions, and history, and file trade
proposals. Approvals still go through you: tell it to approve, or use
'monty approve' in another terminal.

Requires ANTHROPIC_API_KEY in the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	registry := chat.NewRegistry()
	registry.Register(chat.EngineTools(s.engine, s.ledger, s.store)...)

	agent := chat.NewAgent(registry, chat.AgentConfig{
		Model:     s.cfg.Chat.Model,
		MaxTokens: s.cfg.Chat.MaxTokens,
	}, logger)
	conv := chat.NewConversation()

	fmt.Println("monty chat - type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err := agent.Send(cmd.Context(), conv, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}
