package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meghalaya-hospital/registry-admin/internal/config"
	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
	"github.com/meghalaya-hospital/registry-admin/internal/platform/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "registry-admin",
		Short:        "Hospital patient registry admin CLI",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(patientCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(abhaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles the wiring every command needs: config, logger, the persisted
// session, and the registry client with the session injected as its token
// source.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *session.Store
	client *registry.Client
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	path := cfg.SessionFile
	if path == "" {
		path, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	store := session.Open(path, logger)

	httpc := &http.Client{Timeout: cfg.Timeout()}
	client := registry.NewClient(cfg.APIBaseURL, httpc, store, logger)

	return &env{cfg: cfg, log: logger, store: store, client: client}, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	}
	return logger
}

// requireSession gates protected commands before any network call is made.
func requireSession(e *env) error {
	if !e.store.Authenticated() {
		return errors.New(`unauthorized: no active session, run "registry-admin auth login"`)
	}
	return nil
}
