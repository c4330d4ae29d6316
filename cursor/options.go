package cursor

import (
	"io"
	"log/slog"
)

// PermissionMode controls tool execution approval. The cursor-agent CLI
// collapses acceptEdits and bypassPermissions into its --force flag.
type PermissionMode string

const (
	// PermissionModeDefault lets the CLI prompt for dangerous operations.
	PermissionModeDefault PermissionMode = "default"
	// PermissionModeAcceptEdits auto-approves file modifications.
	PermissionModeAcceptEdits PermissionMode = "acceptEdits"
	// PermissionModeBypass auto-approves all tools (use with caution).
	PermissionModeBypass PermissionMode = "bypassPermissions"
)

// Options holds query configuration for the cursor-agent CLI.
type Options struct {
	StderrHandler   func([]byte)
	Logger          *slog.Logger
	Env             map[string]string
	Model           string
	Cwd             string
	CLIPath         string
	Resume          string
	SystemPrompt    string
	PermissionMode  PermissionMode
	ExtraArgs       []string
	MaxBufferSize   int
	EventBufferSize int
}

// Option is a functional option for configuring a query or session.
type Option func(*Options)

// WithModel sets the model to use.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithPermissionMode sets tool execution approval behavior.
func WithPermissionMode(mode PermissionMode) Option {
	return func(o *Options) {
		o.PermissionMode = mode
	}
}

// WithCwd sets the working directory for the CLI process.
func WithCwd(dir string) Option {
	return func(o *Options) {
		o.Cwd = dir
	}
}

// WithCLIPath sets an explicit cursor-agent binary path, bypassing the
// search path lookup.
func WithCLIPath(path string) Option {
	return func(o *Options) {
		o.CLIPath = path
	}
}

// WithResume resumes a previous session by id.
func WithResume(sessionID string) Option {
	return func(o *Options) {
		o.Resume = sessionID
	}
}

// WithSystemPrompt prepends a system prompt to the submitted prompt.
// cursor-agent has no native system prompt flag.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithEnv sets additional environment variables for the CLI process,
// merged over the inherited environment.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithExtraArgs appends additional CLI arguments (escape hatch).
func WithExtraArgs(args ...string) Option {
	return func(o *Options) {
		o.ExtraArgs = args
	}
}

// WithMaxBufferSize caps the size of a single stdout record.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) {
		o.MaxBufferSize = size
	}
}

// WithEventBufferSize sets the session event channel buffer size.
func WithEventBufferSize(size int) Option {
	return func(o *Options) {
		o.EventBufferSize = size
	}
}

// WithStderrHandler registers a handler for raw CLI stderr chunks, in
// addition to the bounded capture used for error reports.
func WithStderrHandler(h func([]byte)) Option {
	return func(o *Options) {
		o.StderrHandler = h
	}
}

// WithLogger sets a structured logger for protocol-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func defaultOptions() Options {
	return Options{
		PermissionMode:  PermissionModeDefault,
		EventBufferSize: 100,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func buildOptions(opts []Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
