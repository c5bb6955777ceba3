package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/picabord/website/blog/application"
	"github.com/picabord/website/blog/persistence"
	"github.com/picabord/website/shared/config"
	"github.com/picabord/website/shared/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CLI is the root command. Flags left at their zero value fall back to the
// environment and then to built-in defaults.
type CLI struct {
	EnvFile    string `name:"env-file" default:".env" help:"Optional dotenv file read before the environment."`
	ContentDir string `name:"content-dir" short:"d" help:"Directory holding the post files (env CONTENT_DIR)."`
	LogLevel   string `name:"log-level" help:"trace, debug, info, warn or error (env LOG_LEVEL)."`
	LogFormat  string `name:"log-format" help:"console or json (env LOG_FORMAT)."`

	Serve      ServeCmd      `cmd:"" default:"1" help:"Run the blog HTTP server."`
	Posts      PostsCmd      `cmd:"" help:"Inspect posts in the content directory."`
	Categories CategoriesCmd `cmd:"" help:"List categories of published posts."`
	Tags       TagsCmd       `cmd:"" help:"List tags of published posts."`

	config *config.Config
}

// Globals is passed to every command's Run.
type Globals struct {
	CLI *CLI
}

// Config returns the configuration resolved after flag parsing.
func (g *Globals) Config() *config.Config {
	return g.CLI.config
}

// AfterApply loads configuration once flags are parsed and sets up the
// global logger.
func (c *CLI) AfterApply() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = logger
	c.config = cfg
	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(c.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.ContentDir != "" {
		cfg.ContentDir = c.ContentDir
	}
	if c.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(c.LogLevel)
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	return cfg, cfg.Validate()
}

// newLogger builds a zerolog logger writing human-readable lines for
// "console" and JSON otherwise.
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// newPostService wires the file store and the renderer.
func newPostService(cfg *config.Config, recorder metrics.Recorder) *application.PostService {
	repo := persistence.NewPostRepository(cfg.ContentDir,
		persistence.WithAuthor(cfg.SiteAuthor),
		persistence.WithLogger(log.Logger.With().Str("component", "content").Logger()),
		persistence.WithRecorder(recorder),
	)
	return application.NewPostService(repo, application.NewMarkdownRenderer())
}
