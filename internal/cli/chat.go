package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/acmeliving/sophie-go/internal/service"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Chat starts an interactive conversation with the assistant. Type a
message and press enter; an empty line or Ctrl+D ends the session. Pass
--session to continue an earlier conversation.

Examples:
  sophie chat
  sophie chat --session 0b1f2c3d`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "continue an existing session")
}

func runChat(cmd *cobra.Command, args []string) error {
	chat, err := newChatService()
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("Chatting with %s at %s. Empty line to quit.\n\n", cfg.AgentName, cfg.CommunityName)
	}

	sessionID := chatSessionID
	prospectID := ""
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if interactive {
			fmt.Print("you> ")
		}
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}

		resp, err := chat.HandleMessage(context.Background(), service.ChatRequest{
			SessionID:  sessionID,
			ProspectID: prospectID,
			Message:    message,
		})
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		sessionID = resp.SessionID
		prospectID = resp.ProspectID

		if interactive {
			fmt.Printf("%s> %s\n\n", strings.ToLower(cfg.AgentName), resp.Response)
			if verbose {
				fmt.Printf("  [intent: %s, session: %s]\n\n", resp.Intent, resp.SessionID)
			}
		} else {
			fmt.Println(resp.Response)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if interactive && sessionID != "" {
		fmt.Printf("Session %s saved. Resume with: sophie chat --session %s\n", sessionID, sessionID)
	}
	return nil
}
