// Command treepunch punches the content of a folder into a Subversion work
// copy: files and folders are transferred, added, moved and removed so the
// work copy matches the folder, ready to be committed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/treepunch/treepunch/logging"
	"github.com/treepunch/treepunch/punch"
	"github.com/treepunch/treepunch/svn"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

const defaultCommitMessage = "Punched recent changes."

// Exit codes.
const (
	exitOK             = 0
	exitError          = 1
	exitUsage          = 2
	exitPendingChanges = 3
	exitNameViolation  = 4
)

// usageError marks command line validation failures.
type usageError struct {
	message string
}

func (e *usageError) Error() string {
	return e.message
}

func usageErrorf(format string, args ...any) error {
	return &usageError{message: fmt.Sprintf(format, args...)}
}

var rootCmd = &cobra.Command{
	Use:   "treepunch [flags] FOLDER [WORK-FOLDER]",
	Short: "Punch the content of a folder into a Subversion work copy",
	Long: `Treepunch makes a Subversion work copy match the content of a plain
folder. Files are copied over, new files are added, files that are gone are
removed and renamed files can be detected as moves, so the pending changes
are ready to be committed in one go.`,
	Version:      Version,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("include", "", "ant patterns for entries to punch (default: all)")
	flags.String("exclude", "", "ant patterns for entries to leave alone")
	flags.String("work-only", "", "ant patterns for entries that must exist only in the work copy")
	flags.String("move", "name", "move detection: name, none")
	flags.String("names", "preserve", "name transformation: lower, preserve, upper")
	flags.String("text", "", "ant patterns for text files to normalize while copying")
	flags.String("newline", "native", "newline for text files: crlf, dos, lf, native, unix")
	flags.Int("tabsize", 0, "expand tabs in text files to this column width (0 keeps tabs)")
	flags.Bool("strip-trailing", false, "strip trailing whitespace from text file lines")
	flags.String("before", "check", "actions before punching, in order: check, checkout, none, reset, update")
	flags.String("after", "none", "actions after punching, in order: commit, none, purge")
	flags.StringP("message", "m", defaultCommitMessage, "commit message for --after commit")
	flags.String("depot", "", "qualified depot URL for --before checkout")
	flags.String("encoding", "", "locale encoding for the svn client, for example UTF-8")
	flags.String("log", "info", "log level: debug, info, warn, error")
	flags.String("log-dir", "", "folder for rotated log files")
	flags.String("journal", "", "SQLite file recording every punch")
	flags.Bool("watch", false, "keep running and punch again after the folder changes")
	flags.Duration("debounce", punch.DefaultDebounce, "quiet period before a watched change triggers a punch")

	viper.SetEnvPrefix("TREEPUNCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlags(flags) //nolint:errcheck
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	var pending *svn.PendingChangesError
	if errors.As(err, &pending) {
		return exitPendingChanges
	}
	var clash *punch.NameClashError
	var transformation *punch.NameTransformationError
	var workOnly *punch.WorkOnlyViolationError
	if errors.As(err, &clash) || errors.As(err, &transformation) || errors.As(err, &workOnly) {
		return exitNameViolation
	}
	return exitError
}

func run(cmd *cobra.Command, args []string) error {
	viper.SetConfigName(".treepunch")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := logLevel(viper.GetString("log"))
	if err != nil {
		return err
	}
	logging.Init(level, viper.GetString("log-dir"))
	log := logging.Sub("main")

	externalRoot, err := filepath.Abs(args[0])
	if err != nil {
		return usageErrorf("resolve folder: %v", err)
	}
	workRoot := "."
	if len(args) > 1 {
		workRoot = args[1]
	}
	workRoot, err = filepath.Abs(workRoot)
	if err != nil {
		return usageErrorf("resolve work folder: %v", err)
	}

	beforeActions, err := parseActions(viper.GetString("before"), []string{"check", "checkout", "none", "reset", "update"}, "--before")
	if err != nil {
		return err
	}
	afterActions, err := parseActions(viper.GetString("after"), []string{"commit", "none", "purge"}, "--after")
	if err != nil {
		return err
	}
	depotURL := viper.GetString("depot")
	if contains(beforeActions, "checkout") && depotURL == "" {
		return usageErrorf("option --depot must be set for --before checkout")
	}

	moveMode, err := punch.MoveModeByName(viper.GetString("move"))
	if err != nil {
		return usageErrorf("%v", err)
	}
	nameTransform, err := punch.NameTransformByName(viper.GetString("names"))
	if err != nil {
		return usageErrorf("%v", err)
	}
	textOptions, err := buildTextOptions(cmd)
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	runner := svn.NewRunner(viper.GetString("encoding"))
	work := svn.NewWorkCopy(fsys, runner, workRoot)

	if err := runBeforeActions(log, work, beforeActions, depotURL); err != nil {
		return err
	}
	if !contains(beforeActions, "checkout") {
		url, err := svn.Detect(runner, workRoot)
		if err != nil {
			return err
		}
		log.Info("found work copy", "root", workRoot, "url", url)
	}

	puncher := punch.NewPuncher(fsys, work)
	puncher.MoveMode = moveMode
	puncher.NameTransform = nameTransform
	puncher.TextOptions = textOptions

	var journal *punch.Journal
	if path := viper.GetString("journal"); path != "" {
		journal, err = punch.OpenJournal(path)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	punchOnce := func() error {
		started := time.Now()
		result, err := puncher.Punch(externalRoot, viper.GetString("include"), viper.GetString("exclude"), viper.GetString("work-only"))
		if journal != nil {
			outcome := "ok"
			if err != nil {
				outcome = err.Error()
			}
			if recordErr := journal.Record(started, externalRoot, workRoot, result, outcome); recordErr != nil {
				log.Warn("journal write failed", "error", recordErr)
			}
		}
		if err != nil {
			return err
		}
		return runAfterActions(log, work, afterActions, viper.GetString("message"))
	}

	if err := punchOnce(); err != nil {
		return err
	}

	if viper.GetBool("watch") {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := punch.Watch(ctx, externalRoot, viper.GetDuration("debounce"), func() {
			if err := punchOnce(); err != nil {
				log.Error("punch failed", "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

func runBeforeActions(log *slog.Logger, work *svn.WorkCopy, actions []string, depotURL string) error {
	for _, action := range actions {
		log.Info("run before action", "action", action)
		var err error
		switch action {
		case "check":
			err = work.Check()
		case "checkout":
			err = work.Checkout(depotURL)
		case "none":
		case "reset":
			err = work.Reset()
		case "update":
			err = work.Update()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func runAfterActions(log *slog.Logger, work *svn.WorkCopy, actions []string, message string) error {
	for _, action := range actions {
		log.Info("run after action", "action", action)
		var err error
		switch action {
		case "commit":
			err = work.Commit([]string{"."}, message)
		case "none":
		case "purge":
			err = work.Purge()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// parseActions validates a comma separated action list. Each action may
// appear once; "none" and "checkout" must be the only action when given.
func parseActions(text string, valid []string, option string) ([]string, error) {
	var actions []string
	for _, part := range strings.Split(text, ",") {
		action := strings.TrimSpace(part)
		if action == "" {
			continue
		}
		if !contains(valid, action) {
			return nil, usageErrorf("action for %s is %q but must be one of: %s", option, action, strings.Join(valid, ", "))
		}
		if contains(actions, action) {
			return nil, usageErrorf("duplicate action %q for %s", action, option)
		}
		actions = append(actions, action)
	}
	if len(actions) == 0 {
		return nil, usageErrorf("at least one action must be given for %s", option)
	}
	for _, sole := range []string{"none", "checkout"} {
		if contains(actions, sole) && len(actions) > 1 {
			return nil, usageErrorf("action %q for %s cannot be combined with other actions", sole, option)
		}
	}
	return actions, nil
}

// buildTextOptions validates the text flags. The newline, tab and strip
// options only make sense together with --text.
func buildTextOptions(cmd *cobra.Command) (*punch.TextOptions, error) {
	patternText := viper.GetString("text")
	if patternText == "" {
		for _, name := range []string{"newline", "tabsize", "strip-trailing"} {
			if cmd.Flags().Changed(name) {
				return nil, usageErrorf("option --%s requires --text", name)
			}
		}
		return nil, nil
	}
	newline, err := punch.NewlineByName(viper.GetString("newline"))
	if err != nil {
		return nil, usageErrorf("%v", err)
	}
	options, err := punch.NewTextOptions(patternText, newline, viper.GetInt("tabsize"), viper.GetBool("strip-trailing"))
	if err != nil {
		return nil, usageErrorf("%v", err)
	}
	return options, nil
}

func logLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, usageErrorf("log level is %q but must be one of: debug, info, warn, error", name)
}

func contains(list []string, item string) bool {
	for _, candidate := range list {
		if candidate == item {
			return true
		}
	}
	return false
}
