// Package cmd содержит дерево команд pwvault.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"pwvault/internal/app"
	"pwvault/internal/config"
	"pwvault/internal/domain/entry"
	"pwvault/internal/utils/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
	// 128 + SIGINT, как у прерванной команды в shell.
	exitInterrupted = 130
)

// cli - общее состояние команд одного запуска.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfgFile string
	debug   bool

	v      *viper.Viper
	cfg    *config.Config
	log    *slog.Logger
	app    *app.App
	prompt *prompter
}

// usageError - ошибка вызова команды (аргументы, флаги).
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// explain превращает промах поиска в понятное пользователю сообщение.
func explain(title string, err error) error {
	if errors.Is(err, entry.ErrTitleNotFound) {
		return fmt.Errorf("no password found for title '%s': %w", title, entry.ErrTitleNotFound)
	}
	return err
}

// Execute запускает pwvault с аргументами процесса и завершает его.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// Повторный сигнал обрабатывается по умолчанию.
	context.AfterFunc(ctx, stop)
	code := Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run выполняет одну командную строку и возвращает код выхода.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{
		in:     in,
		out:    out,
		errOut: errOut,
		v:      viper.New(),
		prompt: newPrompter(in, errOut),
	}

	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	cmd, err := root.ExecuteContextC(ctx)

	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil {
			c.log.Error("failed to close store", slog.String("error", cerr.Error()))
		}
	}

	if err == nil {
		return exitOK
	}

	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		color.New(color.FgRed).Fprintln(errOut, "Error: interrupted")
		return exitInterrupted
	}

	color.New(color.FgRed).Fprintf(errOut, "Error: %v\n", err)

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprint(errOut, cmd.UsageString())
		return exitUsage
	}
	return exitError
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pwvault",
		Short: "pwvault - a local password vault",
		Long: `pwvault keeps passwords encrypted in a local store.

Every secret is sealed with AES-256-GCM under a key derived from the master
password with PBKDF2-HMAC-SHA256 and a fresh random salt.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q for \"pwvault\"", args[0])
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return usagef("a command is required: generate, retrieve, list or delete")
		},
		PersistentPreRunE: c.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.pwvault/config.yaml)")
	flags.BoolVar(&c.debug, "debug", false, "enable debug logging")
	flags.String("store", "", "path of the password store")
	flags.String("driver", "", "store driver (json, sqlite, bolt)")

	// Флаги только что объявлены, ошибки здесь невозможны.
	_ = c.v.BindPFlag(config.KeyStorePath, flags.Lookup("store"))
	_ = c.v.BindPFlag(config.KeyStoreDriver, flags.Lookup("driver"))

	root.AddCommand(
		c.newGenerateCmd(),
		c.newRetrieveCmd(),
		c.newListCmd(),
		c.newDeleteCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd == cmd.Root() {
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if c.debug {
		level = slog.LevelDebug
	}
	c.log = logger.New(c.errOut, cfg.Env, level)

	c.app, err = app.New(cfg, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return nil
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".pwvault"))
		}
		c.v.AddConfigPath(".")
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return config.Load(c.v)
}

// titleArgs принимает от minArgs до maxArgs аргументов, первый из которых
// непустое название записи.
func titleArgs(minArgs, maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(minArgs, maxArgs)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		if len(args) > 0 && args[0] == "" {
			return &usageError{err: entry.ErrInvalidTitle}
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}
