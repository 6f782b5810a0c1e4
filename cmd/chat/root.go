package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/ai-code-helper/client/internal/config"
	"github.com/zhouzirui/ai-code-helper/client/internal/logging"
	"github.com/zhouzirui/ai-code-helper/client/internal/model/locale"
	"github.com/zhouzirui/ai-code-helper/client/internal/service/chat"
	"github.com/zhouzirui/ai-code-helper/client/internal/service/i18n"
	"github.com/zhouzirui/ai-code-helper/client/internal/service/session"
	"github.com/zhouzirui/ai-code-helper/client/internal/storage"
)

const rootLongDesc string = `Chat with the AI Code Helper from the terminal.

Without a subcommand an interactive session starts: type a question and the
answer streams in as it is generated. Inside the session "/lang <code>"
switches the interface language and "/exit" (or Ctrl+D) quits.

The interface language is remembered between runs. Answers within one run
share a memory id so the backend keeps the conversation context.

Examples:
  chat
  chat send "what is a goroutine?"
  chat locale zh
  chat --base-url http://localhost:8081`

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	baseURL   string
	memoryID  int
	localeDir string
	debug     bool
}

// app holds the services a command works with. It is built once per
// invocation in PersistentPreRunE.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger   *slog.Logger
	client   *chat.Client
	i18n     *i18n.Service
	session  *session.Service
	memoryID int

	closeStore func() error
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	a := &app{in: in, out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "Interactive client for the AI Code Helper",
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context(), cmd, opts)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.repl(cmd.Context())
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Backend base URL (default from CHAT_BASE_URL)")
	cmd.PersistentFlags().IntVar(&opts.memoryID, "memory-id", 0, "Use this memory id instead of the session one")
	cmd.PersistentFlags().StringVar(&opts.localeDir, "locale-dir", "", "Directory of extra message catalogs (default from LOCALE_DIR)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSendCmd(a), newLocaleCmd(a), newIDCmd(a))

	return cmd
}

func (a *app) init(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Client.BaseURL = opts.baseURL
	}
	if cmd.Flags().Changed("locale-dir") {
		cfg.Locale.Dir = opts.localeDir
	}

	level, levelErr := logging.ParseLevel(cfg.Log.Level)
	if opts.debug {
		level = slog.LevelDebug
	}
	a.logger = logging.New(a.errOut, level, cfg.Log.NoColor)
	if levelErr != nil {
		a.logger.Warn("falling back to info logging", "error", levelErr)
	}

	a.client, err = chat.NewClient(cfg.Client.BaseURL,
		chat.WithEndpoint(cfg.Client.Endpoint),
		chat.WithIdleTimeout(cfg.Client.IdleTimeout),
		chat.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	tables, err := loadTables(cfg.Locale.Dir)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	a.closeStore = closeStore

	a.i18n = i18n.NewService(ctx, store, tables,
		i18n.WithDefaultLocale(cfg.Locale.Default),
		i18n.WithLogger(a.logger),
	)
	// memory id 只在本次进程内有效，对应浏览器的 sessionStorage
	a.session = session.NewService(storage.NewMemory(), a.logger)
	if opts.memoryID > 0 {
		a.memoryID = opts.memoryID
	}

	a.logger.Debug("[cli] ready",
		"baseURL", cfg.Client.BaseURL,
		"storage", cfg.Storage.Driver,
		"locale", a.i18n.Locale(),
	)
	return nil
}

func (a *app) close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

// currentMemoryID prefers --memory-id over the session id.
func (a *app) currentMemoryID(ctx context.Context) int {
	if a.memoryID > 0 {
		return a.memoryID
	}
	return a.session.MemoryID(ctx)
}

// loadTables overlays the catalogs in dir on the built-in tables.
func loadTables(dir string) (map[string]locale.Table, error) {
	if dir == "" {
		return locale.Seed(), nil
	}
	extra, err := i18n.LoadTables(os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("loading locale catalogs: %w", err)
	}
	return locale.Merge(locale.Seed(), extra), nil
}

// openStore returns the durable store for the locale selection and a func
// releasing it.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), noop, nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		store := storage.NewRedis(rdb, cfg.RedisPrefix, 0)
		return store, store.Close, nil
	default:
		store, err := storage.OpenFile(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening state file: %w", err)
		}
		return store, noop, nil
	}
}
