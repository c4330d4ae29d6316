// cursorq - command line front end for the cursor-agent SDK.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitcnd/cursor-agent-sdk-go/cursor"
	"github.com/gitcnd/cursor-agent-sdk-go/internal/ndjson"
)

var version = "dev"

var (
	modelFlag   string
	modeFlag    string
	cwdFlag     string
	cliPathFlag string
	resumeFlag  string
	jsonFlag    bool
	quietFlag   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cursorq [prompt]",
	Short: "Run one-shot prompts against the Cursor Agent CLI",
	Long: `cursorq streams a cursor-agent session to the terminal.

Defaults are read from ` + "`~/.config/cursorq.yaml`" + ` and overridden by flags.

Config keys: model, mode, cli_path, cwd.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runQuery,
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use")
	rootCmd.Flags().StringVar(&modeFlag, "mode", "", "Permission mode: default, acceptEdits or bypassPermissions")
	rootCmd.Flags().StringVarP(&cwdFlag, "cwd", "C", "", "Working directory for the agent")
	rootCmd.Flags().StringVar(&cliPathFlag, "cli-path", "", "Explicit cursor-agent binary path")
	rootCmd.Flags().StringVar(&resumeFlag, "resume", "", "Resume a previous session by id")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print raw messages as JSON lines")
	rootCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress tool activity output")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cursorq version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cursorq", version)
	},
}

func runQuery(cmd *cobra.Command, args []string) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := buildOptions(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if jsonFlag {
		return streamJSON(ctx, args[0], opts)
	}
	return streamText(ctx, args[0], opts)
}

// buildOptions merges the config file under the flags.
func buildOptions(config *Config) []cursor.Option {
	model := firstNonEmpty(modelFlag, config.Model)
	mode := firstNonEmpty(modeFlag, config.Mode)
	cliPath := firstNonEmpty(cliPathFlag, config.CLIPath)
	cwd := firstNonEmpty(cwdFlag, config.Cwd)

	var opts []cursor.Option
	if model != "" {
		opts = append(opts, cursor.WithModel(model))
	}
	if mode != "" {
		opts = append(opts, cursor.WithPermissionMode(cursor.PermissionMode(mode)))
	}
	if cliPath != "" {
		opts = append(opts, cursor.WithCLIPath(cliPath))
	}
	if cwd != "" {
		opts = append(opts, cursor.WithCwd(cwd))
	}
	if resumeFlag != "" {
		opts = append(opts, cursor.WithResume(resumeFlag))
	}
	return opts
}

// streamText renders the session as live text with tool annotations.
func streamText(ctx context.Context, prompt string, opts []cursor.Option) error {
	events, err := cursor.QueryStream(ctx, prompt, opts...)
	if err != nil {
		return describeError(err)
	}

	for event := range events {
		switch e := event.(type) {
		case cursor.TextEvent:
			fmt.Print(e.Text)
		case cursor.ToolStartEvent:
			if !quietFlag {
				fmt.Fprintf(os.Stderr, "\n[tool %s started]\n", e.Name)
			}
		case cursor.ToolCompleteEvent:
			if !quietFlag {
				fmt.Fprintf(os.Stderr, "[tool %s completed]\n", e.ID)
			}
		case cursor.TurnCompleteEvent:
			fmt.Println()
			if e.Error != nil {
				return e.Error
			}
		case cursor.ErrorEvent:
			return describeError(e.Error)
		}
	}
	return nil
}

// streamJSON dumps every message as one JSON object per line.
func streamJSON(ctx context.Context, prompt string, opts []cursor.Option) error {
	out := ndjson.NewWriter(os.Stdout)

	for msg, err := range cursor.Query(ctx, prompt, opts...) {
		if err != nil {
			return describeError(err)
		}

		record := map[string]interface{}{"type": msg.MsgType()}
		switch m := msg.(type) {
		case *cursor.SystemMessage:
			record["subtype"] = m.Subtype
			record["data"] = m.Data
		case *cursor.UserMessage:
			record["content"] = m.Content
		case *cursor.AssistantMessage:
			record["model"] = m.Model
			record["text"] = m.Text()
		case *cursor.ResultMessage:
			record["subtype"] = m.Subtype
			record["is_error"] = m.IsError
			record["duration_ms"] = m.DurationMs
			record["session_id"] = m.SessionID
			record["result"] = m.Result
		}
		if err := out.WriteJSON(record); err != nil {
			return err
		}
	}
	return nil
}

// describeError adds install guidance for the common failure modes.
func describeError(err error) error {
	var notFound *cursor.CLINotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w\n\nset cli_path in ~/.config/cursorq.yaml or pass --cli-path", err)
	}

	var procErr *cursor.ProcessError
	if errors.As(err, &procErr) && procErr.Stderr != "" {
		return fmt.Errorf("%w\nstderr:\n%s", err, procErr.Stderr)
	}

	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
