package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/repositories"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/services"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/shared"
	"github.com/MarsoL4/spotify-PlaylistCleaner/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify services.Service
	repos   *repositories.Repositories
	logger  *log.Logger
	output  io.Writer
	input   *bufio.Scanner
	engine  *tasks.CleanEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify services.Service
	Repos   *repositories.Repositories
	Logger  *log.Logger
	Output  io.Writer
	Input   io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		repos:   opts.Repos,
		logger:  opts.Logger,
		output:  opts.Output,
		input:   bufio.NewScanner(opts.Input),
		engine:  tasks.NewCleanEngine(opts.Spotify, opts.Logger),
	}
}

// SetLogger replaces the logger on the runner and its engine.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.engine = tasks.NewCleanEngine(r.spotify, l)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, playlistsCommand, cleanCommand, browseCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// readLine reads one line of user input, trimmed. ok is false when input is
// exhausted.
func (r *Runner) readLine(prompt string) (line string, ok bool) {
	r.writePlain("%s", prompt)
	if !r.input.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.input.Text()), true
}
