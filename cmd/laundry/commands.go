package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/napryag/laundry_pickup/pkg/config"
	"github.com/napryag/laundry_pickup/pkg/domain/booking"
	"github.com/napryag/laundry_pickup/pkg/domain/booking/session"
	"github.com/napryag/laundry_pickup/pkg/domain/bot/sender"
	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/domain/i18n"
	"github.com/napryag/laundry_pickup/pkg/repository/store"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"github.com/napryag/laundry_pickup/pkg/web"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	number     string
)

var rootCmd = &cobra.Command{
	Use:   "laundry",
	Short: "Laundry pickup website",
	Long: `Serves the marketing pages and the seven step pickup booking wizard.
Completed bookings are handed to WhatsApp as a pre-filled message.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "zerolog level (trace, debug, info, warn, error)")
	messageCmd.Flags().StringVar(&number, "number", "", "WhatsApp number, defaults to business_number from the config")

	rootCmd.AddCommand(serveCmd, migrateCmd, messageCmd, notifyCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply the catalog schema migrations",
	Long:      "Applies the embedded migrations to catalog.postgre_addr (or DB_DSN). down reverts one step.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(store.Up), string(store.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := store.Up
		if len(args) == 1 {
			dir = store.Direction(args[0])
		}
		return runMigrate(cmd.Context(), dir)
	},
}

var messageCmd = &cobra.Command{
	Use:   "message <draft.json>",
	Short: "Print the WhatsApp message and link for a booking draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := number
		if n == "" {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return errs.New("failed to load config").Wrap(err)
			}
			n = cfg.BusinessNumber
		}
		f, err := os.Open(args[0])
		if err != nil {
			return errs.New("failed to open draft").Arg("path", args[0]).Wrap(err)
		}
		defer f.Close()
		return runMessage(cmd.OutOrStdout(), f, n)
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <text>",
	Short: "Send a message to the staff Telegram channel",
	Long:  "Reads TG_TOKEN and TG_CHANNEL_ID from the environment or .env and posts text once, with retries.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pc sender.ProcessorConfig
		if err := pc.LoadFromEnv(); err != nil {
			return err
		}
		proc, err := sender.Connect(pc, newLogger())
		if err != nil {
			return err
		}
		id, err := proc.Send(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent message %d\n", id)
		return nil
	},
}

func newLogger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger().Level(lvl)
}

func runServe(ctx context.Context) error {
	logger := newLogger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errs.New("failed to load config").Wrap(err)
	}

	// Context that ends on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	checks := map[string]web.Pinger{}
	if cfg.Catalog.Source == "postgres" {
		repo, err := store.NewRepo(ctx, cfg.Catalog.PostgreAddr)
		if err != nil {
			return err
		}
		defer repo.Close()
		if cat, err = store.LoadCatalog(ctx, repo, cat); err != nil {
			return err
		}
		checks["postgres"] = repo
		logger.Info().Int("services", len(cat.Services)).Msg("catalog loaded from postgres")
	}

	var sessions session.Store
	switch cfg.Session.Store {
	case "redis":
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		}, cfg.Session.TTL)
		if err != nil {
			return err
		}
		defer rs.Close()
		sessions = rs
		checks["redis"] = rs
	default:
		ms := session.NewMemoryStore(cfg.Session.TTL)
		go ms.Run(ctx, time.Minute)
		sessions = ms
	}

	var (
		notifier web.Notifier
		proc     *sender.Processor
	)
	if cfg.TelegramEnabled() {
		proc, err = sender.Connect(sender.ProcessorConfig{Token: cfg.BotToken, ChannelID: cfg.ChannelID}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("staff notifications disabled")
			proc = nil
		} else {
			notifier = proc
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := web.New(cfg.HTTPAddr, logger, web.Deps{
		Catalog:        cat,
		Locales:        i18n.Default(),
		Sessions:       sessions,
		Notifier:       notifier,
		Checks:         checks,
		BusinessNumber: cfg.BusinessNumber,
		Location:       cfg.Location(),
		RateLimit:      web.RateLimit{PerMinute: cfg.RateLimit.PerMinute, Burst: cfg.RateLimit.Burst},
		CORSOrigins:    cfg.CORSOrigins,
		SessionTTL:     cfg.Session.TTL,
	})
	if err != nil {
		return errs.New("failed to init server").Wrap(err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	case err := <-serverErr:
		return errs.New("http server failed").Wrap(err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.New("failed to shut down").Wrap(err)
	}
	if proc != nil {
		proc.Wait()
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMigrate(ctx context.Context, dir store.Direction) error {
	logger := newLogger()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errs.New("failed to load config").Wrap(err)
	}
	if cfg.Catalog.PostgreAddr == "" {
		return errs.Invalid("catalog.postgre_addr or DB_DSN is required")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := store.Migrate(ctx, cfg.Catalog.PostgreAddr, dir); err != nil {
		return err
	}
	logger.Info().Str("direction", string(dir)).Msg("migrations applied")
	return nil
}

// runMessage reads a JSON draft from r and writes its message and deep link.
func runMessage(w io.Writer, r io.Reader, businessNumber string) error {
	d := booking.NewDraft()
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return errs.Invalid("failed to decode draft").Wrap(err)
	}
	msg, err := booking.FormatMessage(d, catalog.Default())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n\n%s\n", msg, booking.DeepLink(businessNumber, msg))
	return err
}
