// Command chat is a terminal client for studio direct messages.
//
//	chat -role parent -id ST-2024-001 -peer T-001
//
// Lines read from stdin are sent to the peer; new messages are printed as they arrive.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"studio/internal/apiclient"
	"studio/internal/chat"
	"studio/internal/config"
	"studio/internal/logger"
	"studio/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false, true)
		boot.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.Logging.Level, true, cfg.Logging.NoColor)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("chat failed")
	}
}

// run signs in, then either lists contacts or chats with -peer until in is exhausted or ctx is done.
func run(ctx context.Context, cfg config.App, args []string, in io.Reader, out io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		baseURL  = fs.String("url", cfg.Chat.BaseURL, "studio api base url")
		role     = fs.String("role", string(model.RoleParent), "parent, teacher or admin")
		id       = fs.String("id", "", "student id for parents, teacher id for teachers")
		password = fs.String("password", cfg.Auth.SharedPassword, "shared password")
		peer     = fs.String("peer", "", "id of the user to chat with; empty lists contacts")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := apiclient.New(*baseURL, cfg.Chat.RequestTimeout)
	user, err := client.Login(ctx, model.Role(*role), *id, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "signed in as %s (%s)\n", user.Name, user.Role)

	if *peer == "" {
		contacts, err := client.Contacts(ctx)
		if err != nil {
			return fmt.Errorf("contacts: %w", err)
		}
		for _, c := range contacts {
			fmt.Fprintf(out, "%-12s %-20s %s\n", c.ID, c.Name, c.Status)
		}
		return nil
	}

	sess := chat.NewSession(ctx, client, user.ID, chat.Config{
		MessagePoll: cfg.Chat.MessagePoll,
		ContactPoll: cfg.Chat.ContactPoll,
		MatchWindow: cfg.Chat.MatchWindow,
	}, log)
	printed := make(chan struct{})
	defer func() {
		sess.Close()
		<-printed
	}()

	if err := sess.Select(*peer); err != nil {
		close(printed)
		return fmt.Errorf("select peer: %w", err)
	}

	go func() {
		defer close(printed)
		for u := range sess.Updates() {
			for _, m := range u.Messages {
				if m.SenderID == user.ID {
					continue
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.SenderID, m.Content)
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := sess.Send(ctx, line); err != nil && !errors.Is(err, chat.ErrEmptyMessage) {
				log.Error().Err(err).Msg("send failed")
			}
		}
	}
}
