// Package cli implements the fatcat command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/fatcat/internal/config"
	"github.com/idelchi/fatcat/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// flags holds the raw command-line values before they are merged with the config.
type flags struct {
	size        string
	logFile     string
	top         uint
	verbose     bool
	format      string
	excludes    []string
	workers     int
	archive     string
	debug       bool
	logLevel    string
	configFile  string
	integration bool
}

// settings is the merged configuration for a single run.
type settings struct {
	path      string
	minSize   uint64
	logFile   string
	top       uint
	verbose   bool
	format    string
	excludes  []string
	workers   int
	archive   string
	debug     bool
	logLevel  string
	logFormat string
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run runs the CLI with the given arguments and streams. Failures are
// returned as *ExitError.
func (c CLI) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := c.newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	// cobra argument and flag errors
	return &ExitError{Code: ExitUsage, Err: err}
}

func (c CLI) newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	def := config.Default()

	root := &cobra.Command{
		Use:   "fatcat [PATH]",
		Short: "Hunt down the fat files hogging your disk space",
		Long: heredoc.Doc(`
			fatcat walks PATH (default: current directory) and lists every file at or
			above the minimum size, largest first.

			Hidden files are included and symbolic links are never followed.
			Defaults can be set in fatcat.yaml ($HOME/.config/fatcat or the current
			directory) or through FATCAT_* environment variables.
		`),
		Example: heredoc.Doc(`
			fatcat
			fatcat /home
			fatcat ./downloads -s 500
			fatcat -v -o result.log
			fatcat / -s 2GB --format json
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(stdout, rendered)

				return nil
			}

			s, err := resolve(cmd, f, args)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			return logic(cmd.Context(), c.version, s, stdout, stderr)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	fl := root.Flags()
	fl.SortFlags = false
	fl.StringVarP(&f.size, "size", "s", def.Scan.MinSize, "Minimum file size in MB, or with a unit (e.g. 1.5GB, 500MiB)")
	fl.StringVarP(&f.logFile, "output", "o", "", "Save results to log file")
	fl.UintVarP(&f.top, "top", "t", def.Scan.Top, "Show top N files")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Show detailed statistics")
	fl.StringVar(&f.format, "format", def.Output.Format, "Output format: "+strings.Join(config.Formats, ", "))
	fl.StringSliceVarP(&f.excludes, "exclude", "e", def.Scan.Excludes, "Regex patterns to exclude")
	fl.IntVarP(&f.workers, "workers", "w", def.Scan.Workers, "Number of traversal workers (0 = automatic)")
	fl.StringVar(&f.archive, "archive", def.Archive.Path, "Also store results in this SQLite archive")
	fl.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fl.BoolVarP(&f.integration, "init", "i", false, "Output init script for shell usage")

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "config file (default: $HOME/.config/fatcat/fatcat.yaml)")
	pf.StringVar(&f.logLevel, "log-level", def.Logging.Level, "log level (debug, info, warn, error)")

	root.SetHelpFunc(helpFunc(root.HelpFunc(), root, c.version))
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	root.AddCommand(newHistoryCommand(&f, stdout))

	return root
}

// helpFunc renders the root help as boxes and keeps cobra's help for subcommands.
func helpFunc(fallback func(*cobra.Command, []string), root *cobra.Command, version string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if cmd != root {
			fallback(cmd, args)

			return
		}

		w := cmd.OutOrStdout()

		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", brand.Render("fatcat"), dimmed.Render(version))
		fmt.Fprintln(w, dimmed.Render(root.Short+"."))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Usage: %s %s\n", brand.Render("fatcat"), dimmed.Render("[PATH] [OPTIONS]"))
		fmt.Fprintln(w)
		fmt.Fprint(w, root.Long)
		fmt.Fprintln(w)

		options := strings.Split(strings.TrimRight(root.Flags().FlagUsages(), "\n"), "\n")
		options = append(options, strings.Split(strings.TrimRight(root.PersistentFlags().FlagUsages(), "\n"), "\n")...)
		fmt.Fprint(w, box("Options", options, colorBlue))
		fmt.Fprintln(w)

		examples := strings.Split(strings.TrimRight(root.Example, "\n"), "\n")
		fmt.Fprint(w, box("Examples", examples, colorCyan))
		fmt.Fprintln(w)

		fmt.Fprintln(w, dimmed.Render("Commands: history  Show archived scans"))
		fmt.Fprintln(w)
	}
}

// loadConfig loads the config file and applies the log level flag.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}

	return cfg, nil
}

// resolve merges config values with explicitly set flags.
func resolve(cmd *cobra.Command, f flags, args []string) (settings, error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return settings{}, err
	}

	changed := cmd.Flags().Changed

	s := settings{
		path:      "./",
		logFile:   f.logFile,
		top:       cfg.Scan.Top,
		verbose:   f.verbose,
		format:    cfg.Output.Format,
		excludes:  cfg.Scan.Excludes,
		workers:   cfg.Scan.Workers,
		archive:   cfg.Archive.Path,
		debug:     f.debug,
		logLevel:  cfg.Logging.Level,
		logFormat: cfg.Logging.Format,
	}

	if len(args) > 0 {
		s.path = args[0]
	}

	size := cfg.Scan.MinSize
	if changed("size") {
		size = f.size
	}

	if s.minSize, err = config.ParseMinSize(size); err != nil {
		return settings{}, err
	}

	if changed("top") {
		s.top = f.top
	}

	if changed("format") {
		s.format = f.format
	}

	if changed("exclude") {
		s.excludes = f.excludes
	}

	if changed("workers") {
		s.workers = f.workers
	}

	if changed("archive") {
		s.archive = f.archive
	}

	if s.debug {
		s.logLevel = "debug"
	}

	if !slices.Contains(config.Formats, s.format) {
		return settings{}, fmt.Errorf("invalid output format %q: must be one of %v", s.format, config.Formats)
	}

	if s.workers < 0 {
		return settings{}, errors.New("workers cannot be negative")
	}

	return s, nil
}
