package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"snapsort/internal/agent"
	mcpclient "snapsort/internal/agent/mcp"
	"snapsort/internal/agent/session"
	"snapsort/internal/cli/ui"
	"snapsort/internal/config"
	"snapsort/internal/llm"
)

var chatFlags struct {
	SessionID string
	NoSave    bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the screenshot-organizing agent",
	Long:  "Starts an interactive conversation. In remote mode the model drives the full tool set through a spawned tool-server subprocess; in local mode it is plain chat against a locally hosted model.",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatFlags.SessionID, "session", "", "resume a saved session by id")
	chatCmd.Flags().BoolVar(&chatFlags.NoSave, "no-save", false, "do not persist the session")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	sessions := session.NewStore(cfg.StateDir)
	thread, sessionID, err := resumeOrNewThread(sessions, cfg.Mode)
	if err != nil {
		return err
	}

	var toolSession agent.ToolSession
	if cfg.Mode == "remote" {
		sess := mcpclient.NewSession(serverCommand(cfg), logger)
		fmt.Println(ui.Dim("starting tool server..."))
		if err := sess.Start(ctx); err != nil {
			return fmt.Errorf("tool server failed to start: %w", err)
		}
		defer func() {
			_ = sess.Stop()
		}()
		fmt.Println(ui.Info("tools", fmt.Sprintf("%d available", len(sess.Tools()))))
		toolSession = sess
	}

	provider := newProvider(cfg)
	a := agent.New(provider, toolSession, thread, logger)

	fmt.Println(ui.Info("mode", cfg.Mode) + " " + ui.Dim("(type 'exit' to quit)"))

	t := term.NewTerminal(os.Stdin, ui.Prompt(cfg.Mode))
	for {
		line, err := readLine(t)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		answer, err := a.HandleMessage(ctx, line)
		if err != nil {
			// a failed round leaves the thread untouched and the session
			// usable, so just report and keep going
			fmt.Println(ui.Errorf("%v", err))
			var sessErr *mcpclient.SessionError
			if errors.As(err, &sessErr) {
				return err
			}
			continue
		}
		fmt.Println(answer)

		if !chatFlags.NoSave {
			sessionID, err = sessions.Save(sessionID, thread)
			if err != nil {
				logger.Warn("failed to save session", "error", err)
			}
		}
	}

	if !chatFlags.NoSave && thread.Len() > 0 {
		if id, err := sessions.Save(sessionID, thread); err == nil {
			fmt.Println(ui.Dim("session saved: " + id))
		}
	}
	return nil
}

func resumeOrNewThread(sessions *session.Store, mode string) (*agent.Thread, string, error) {
	if chatFlags.SessionID == "" {
		return agent.NewThread(mode), "", nil
	}
	thread, err := sessions.Load(chatFlags.SessionID)
	if err != nil {
		return nil, "", err
	}
	if thread.Mode() != mode {
		return nil, "", fmt.Errorf("session %s was recorded in %s mode; start a new session to switch modes", chatFlags.SessionID, thread.Mode())
	}
	return thread, chatFlags.SessionID, nil
}

func newProvider(cfg *config.Config) llm.Provider {
	if cfg.Mode == "local" {
		return llm.NewLocalProvider(cfg.Local.Endpoint, cfg.Local.Model)
	}
	return llm.NewOpenAIProvider(cfg.Remote.Endpoint, cfg.Remote.APIKey, cfg.Remote.Model)
}

// serverCommand resolves the tool server command line. The server inherits
// this process's config flags so both sides agree on categories and paths.
func serverCommand(cfg *config.Config) string {
	if strings.TrimSpace(cfg.ServerCommand) != "" {
		return cfg.ServerCommand
	}
	self, err := os.Executable()
	if err != nil {
		self = "snapsort"
	}
	cmdline := self + " serve"
	if strings.TrimSpace(flags.ConfigPath) != "" {
		cmdline += " --config " + flags.ConfigPath
	}
	return cmdline
}

// readLine reads one line in raw mode so arrow keys and basic editing work.
func readLine(t *term.Terminal) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return t.ReadLine()
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	if width, height, sizeErr := term.GetSize(fd); sizeErr == nil {
		t.SetSize(width, height)
	}
	line, readErr := t.ReadLine()
	if restoreErr := term.Restore(fd, oldState); restoreErr != nil {
		return "", restoreErr
	}
	return line, readErr
}
