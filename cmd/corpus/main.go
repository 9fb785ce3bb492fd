// Command corpus classifies corpus texts by genre and extracts logical units
// from them.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/core/genre"
	"github.com/FocuswithJustin/JuniperCorpus/internal/config"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for corpus.
type CLI struct {
	// Global flags
	ConfigFile string `name:"config" short:"c" help:"Config file (default: ./corpus.yaml when present)" type:"path"`
	Dictionary string `name:"dictionary" help:"Pattern dictionary replacing the embedded one" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat  string `name:"log-format" help:"Log format: text, json"`

	Classify ClassifyCmd `cmd:"" help:"Classify corpus files or directories by genre"`
	Extract  ExtractCmd  `cmd:"" help:"Extract a logical unit from a corpus file"`
	Legacy   LegacyGroup `cmd:"" help:"Map text types to and from legacy categories"`
	Debug    DebugCmd    `cmd:"" help:"Trace every genre score for one file"`
	Config   ConfigGroup `cmd:"" help:"Show or write configuration"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// env carries the resolved configuration into commands.
type env struct {
	ctx    context.Context
	out    io.Writer
	cfg    *config.Config
	dict   *genre.Dictionary
	logger *slog.Logger
}

// setup resolves configuration: defaults, then the config file, then flags.
func (c *CLI) setup(ctx context.Context, stdout, stderr io.Writer) (*env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.NewIO("getwd", "", err)
	}

	cfg, err := config.Load(c.ConfigFile, wd)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.Merge(&config.Config{
		Log:        config.LogConfig{Level: c.LogLevel, Format: c.LogFormat},
		Dictionary: c.Dictionary,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, format := cfg.Logging()
	logging.InitLoggerTo(stderr, level, format)

	dict, err := cfg.LoadDictionary()
	if err != nil {
		return nil, err
	}
	logging.Debug("configuration loaded",
		"config", c.ConfigFile,
		"dictionary_version", dict.Version,
		"jobs", cfg.Batch.Jobs)

	return &env{
		ctx:    ctx,
		out:    stdout,
		cfg:    cfg,
		dict:   dict,
		logger: logging.GetLogger(),
	}, nil
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, options ...kong.Option) error {
	var cli CLI
	options = append([]kong.Option{
		kong.Name("corpus"),
		kong.Description("Corpus genre classification and logical-unit extraction"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	e, err := cli.setup(ctx, stdout, stderr)
	if err != nil {
		return err
	}
	return kctx.Run(e)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logging.Error("command failed", "error", err.Error(), "category", errors.Category(err))
		os.Exit(1)
	}
}
