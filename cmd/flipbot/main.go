package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"flipbot/internal/app"
	"flipbot/internal/tui"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	var (
		configPath string
		mockMode   bool
		noTUI      bool
		resumeID   string
	)

	root := &cobra.Command{
		Use:     "flipbot",
		Short:   "FlipBot - guided fix & flip deal analysis",
		Long:    "FlipBot is a conversational underwriting assistant for fix & flip investors.\n\nRun without arguments for the interactive TUI, or with --no-tui for a plain REPL.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if base := strings.TrimSpace(os.Getenv("FLIPBOT_API_URL")); base != "" {
				cfg.APIBaseURL = base
			}

			application, err := app.NewApplication(cfg, mockMode)
			if err != nil {
				return err
			}
			defer application.Close()

			var session *app.SessionController
			if resumeID != "" {
				session, err = application.ResumeSession(resumeID)
				if err != nil {
					return fmt.Errorf("resume session %s: %w", resumeID, err)
				}
			} else {
				session = application.NewSession()
			}

			if noTUI {
				return runREPL(session)
			}
			p := tea.NewProgram(tui.New(application, session))
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: user config dir)")
	root.PersistentFlags().BoolVar(&mockMode, "mock", false, "use the built-in mock analyzer instead of the remote service")
	root.Flags().BoolVarP(&noTUI, "no-tui", "n", false, "use a plain REPL instead of the TUI")
	root.Flags().StringVar(&resumeID, "resume", "", "resume a saved deal session by id")

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved deal sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cfg, mockMode)
			if err != nil {
				return err
			}
			defer application.Close()

			records, err := application.ListSessions()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No saved deal sessions.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Title)
			}
			return nil
		},
	}
	root.AddCommand(sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runREPL is the plain line-based fallback for terminals without TUI support.
func runREPL(session *app.SessionController) error {
	printNewMessages(session, 0)
	seen := len(session.Messages())

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
		switch strings.ToLower(line) {
		case "/quit", "/exit":
			return nil
		case "/new":
			session.StartNewDeal()
			seen = 0
			seen = printNewMessages(session, seen)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		result, err := session.HandleInput(ctx, line)
		cancel()
		if err != nil {
			if errors.Is(err, app.ErrBusy) {
				fmt.Println("Still working on the previous request...")
				continue
			}
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		if result.RedirectUpgrade {
			fmt.Println("You're out of free analyses. Upgrade your plan to continue.")
		}
		seen = printNewMessages(session, seen)
	}
}

func printNewMessages(session *app.SessionController, seen int) int {
	messages := session.Messages()
	for _, msg := range messages[seen:] {
		prefix := "flipbot"
		if msg.Sender == app.SenderUser {
			prefix = "you"
		}
		text := msg.Text
		if text == "" {
			text = "[analysis result]"
		}
		fmt.Printf("[%s] %s\n", prefix, text)
	}
	return len(messages)
}
