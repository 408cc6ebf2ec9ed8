package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/loan-match/backend/internal/service/conversation"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		server    string
		productID string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about one product against a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asker := conversation.NewHTTPAsker(server, timeout)

			selected, err := asker.Product(cmd.Context(), productID)
			if err != nil {
				return err
			}

			session, err := conversation.Open(selected, asker)
			if errors.Is(err, conversation.ErrNoProduct) {
				return fmt.Errorf("product %q not found", productID)
			}
			if err != nil {
				return err
			}
			defer session.Close()

			logger := opts.logger.With().Str("session_id", session.ID()).Logger()
			logger.Debug().Str("product_id", productID).Msg("conversation opened")

			return runChat(cmd, session)
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "API server base URL")
	cmd.Flags().StringVarP(&productID, "product", "p", "", "product id to chat about (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "per-question timeout")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func runChat(cmd *cobra.Command, session *conversation.Session) error {
	out := cmd.OutOrStdout()
	p := session.Product()
	fmt.Fprintf(out, "Chatting about %s %s. Type /history to review, /quit to leave.\n", p.Bank, p.Name)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			for _, msg := range session.History() {
				fmt.Fprintf(out, "[%s] %s\n", msg.Role, msg.Content)
			}
			continue
		}

		reply, err := session.Submit(cmd.Context(), line)
		var sessionErr *conversation.SessionError
		switch {
		case errors.As(err, &sessionErr):
			fmt.Fprintln(out, reply.Content)
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", sessionErr.Err)
		case errors.Is(err, context.Canceled), errors.Is(err, conversation.ErrSessionClosed):
			return nil
		case err != nil:
			return err
		default:
			fmt.Fprintln(out, reply.Content)
		}
	}
}
