// Package commands implements the profilectl command tree.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dtroode/profilekeeper/internal/backend"
	"github.com/dtroode/profilekeeper/internal/config"
	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/service"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Opener connects to the configured profile store.
type Opener func(ctx context.Context, cfg *config.Config) (*backend.Backend, error)

type options struct {
	open      Opener
	output    string
	backend   string
	namespace string
	verbose   bool
}

// NewRootCommand builds the profilectl command tree on top of open.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &options{open: open}

	root := &cobra.Command{
		Use:   "profilectl",
		Short: "Manage stored profiles",
		Long: `profilectl lists, shows, saves and deletes profiles in the configured store.

The store is selected by the same environment variables as the server
(STORE_BACKEND, STORE_NAMESPACE, REDIS_ADDR, DATABASE_DSN, MINIO_*, SQLITE_PATH).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case OutputTable, OutputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputTable, "output format: table or json")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "store backend (overrides STORE_BACKEND)")
	root.PersistentFlags().StringVar(&opts.namespace, "namespace", "", "store namespace (overrides STORE_NAMESPACE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log store operations to stderr")

	root.AddCommand(
		newListCommand(opts),
		newGetCommand(opts),
		newSaveCommand(opts),
		newDeleteCommand(opts),
	)

	return root
}

// withService opens the store, runs fn against a profile service and closes the store.
func (o *options) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Profile) error) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	if o.namespace != "" {
		cfg.Store.Namespace = o.namespace
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := o.open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer store.Close()

	return fn(ctx, service.NewProfile(store.Store, cfg.Store.OpTimeout, o.logger(cmd, cfg)))
}

func (o *options) logger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	if !o.verbose {
		return logger.NewWithWriter(io.Discard, cfg.LogLevel)
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), -4)
}
