package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/audit"
	"github.com/reliefops/relief/pkg/config"
	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/datakey"
	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/logging"
	"github.com/reliefops/relief/pkg/metrics"
	"github.com/reliefops/relief/pkg/server"
	"github.com/reliefops/relief/pkg/server/endpoints"
	gormstore "github.com/reliefops/relief/pkg/server/store/gorm"
	"github.com/reliefops/relief/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the relief application server",
	Long: `Run the relief application server

The server requires RELIEF_SESSION_KEY. RELIEF_DATA_KEY is required when the
accounts file holds encrypted principal passwords.

When DATABASE_URL is set, database migrations are run on startup. Use
--no-migrate to skip them.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", "", "server listen port (overrides configuration)")
	serverCmd.Flags().StringP("bind-address", "b", "", "server bind address (overrides configuration)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cmd *cobra.Command) error {
	logger := logging.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("bind-address"); host != "" {
		cfg.BindAddress = host
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("bad port %q", port)
		}
		cfg.Port = p
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sessionKey, err := sessionKeyFromEnv()
	if err != nil {
		return err
	}
	cipher, err := dataKeyFromEnv()
	if err != nil {
		return err
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate && db.URL() != "" {
		logger.Info().Msg("running database migrations")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	reg, err := credentials.LoadRegistry(cfg.AccountsFile, cipher)
	if err != nil {
		return err
	}

	storeCfg := db.Config{
		Host:     cfg.StoreHost,
		Port:     cfg.StorePort,
		Database: cfg.StoreDatabase,
		SSLMode:  cfg.StoreSSLMode,
	}
	conn, logins, closeConn := storeConnectors(storeCfg, cfg.PoolConnections)
	defer func() { _ = closeConn() }()

	accounts := credentials.NewRouter(reg, logins, session.Principal{
		User:     cfg.AnonymousUser,
		Password: cfg.AnonymousPassword,
	})

	codec, err := session.NewCodec(sessionKey, cfg.SessionLifetime())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	go func() {
		if err := accounts.Watch(ctx, cfg.AccountsFile, cipher); err != nil {
			logger.Error().Err(err).Msg("accounts file is not watched")
		}
	}()

	s := server.NewServer(
		server.Stores{
			Records:   gormstore.NewRecordsStore(conn),
			Workflows: gormstore.NewWorkflowStore(conn),
			Reports:   gormstore.NewReportsStore(conn),
			Health:    gormstore.NewHealthStore(conn),
		},
		accounts,
		codec,
		metrics.New(),
		cfg.BindAddress,
		strconv.Itoa(cfg.Port),
	)
	s.Audit = newAuditor(cfg, conn)
	endpoints.RegisterAll(s)

	return serve(ctx, s, logger)
}

// storeConnectors returns the connector serving requests and the one
// verifying logins. Logins dial a fresh connection per attempt even when
// requests share pooled connections.
func storeConnectors(storeCfg db.Config, pooled bool) (requests, logins db.Connector, closeFn func() error) {
	logins = db.NewPostgresConnector(storeCfg)
	if !pooled {
		return db.NewPostgresConnector(storeCfg), logins, func() error { return nil }
	}
	pool := db.NewPooledConnector(storeCfg)
	return pool, logins, pool.Close
}

// newAuditor saves entries through conn when an audit principal is
// configured.
func newAuditor(cfg *config.ReliefConfig, conn db.Connector) *audit.Auditor {
	var sink audit.Sink
	if cfg.AuditUser != "" {
		sink = audit.NewStoreSink(conn, session.Principal{User: cfg.AuditUser, Password: cfg.AuditPassword})
	}
	return audit.FromConfig(cfg, sink)
}

// serve runs s until ctx is done and then drains in-flight requests.
func serve(ctx context.Context, s *server.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.Addr()).Msg("running server")
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func sessionKeyFromEnv() ([]byte, error) {
	encoded, ok := os.LookupEnv("RELIEF_SESSION_KEY")
	if !ok || encoded == "" {
		return nil, errors.New("RELIEF_SESSION_KEY environment variable is required")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("bad RELIEF_SESSION_KEY: %w", err)
	}
	return key, nil
}

// dataKeyFromEnv returns nil when RELIEF_DATA_KEY is unset.
func dataKeyFromEnv() (datakey.Cipher, error) {
	encoded := os.Getenv("RELIEF_DATA_KEY")
	if encoded == "" {
		return nil, nil
	}
	cipher, err := datakey.FromBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("bad RELIEF_DATA_KEY: %w", err)
	}
	return cipher, nil
}
