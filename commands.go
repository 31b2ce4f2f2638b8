package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/proposal-review/advisor/internal/agent/briefing"
	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/session"
	"github.com/proposal-review/advisor/internal/api"
	"github.com/proposal-review/advisor/internal/console"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "Proposal review assistant grounded on the candidate dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newBriefingCmd(opts),
		newBudgetCmd(opts),
	)
	return root
}

// withApp loads config, initialises logging and builds the app for one command.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(opts.envFile)
	if err != nil {
		return err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logx.Warn().Err(err).Msg("Error closing app")
		}
	}()
	return fn(ctx, a)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset and assistant sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, runServe)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	adapter, err := a.newAssistant(ctx)
	if err != nil {
		return err
	}
	sessions := session.NewRegistry(adapter, a.dataset, a.cfg.Session)
	defer sessions.Close()

	srv := &http.Server{
		Addr:    a.cfg.HTTP.Addr,
		Handler: api.NewAppHandler(api.AppDeps{Dataset: a.dataset, Sessions: sessions}),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logx.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var closed bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				adapter, err := a.newAssistant(ctx)
				if err != nil {
					return err
				}
				s := session.New("terminal", adapter, a.dataset, a.cfg.Session, !closed)
				defer s.Close()

				err = console.New(s, a.dataset, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&closed, "closed", false, "start with the chat surface closed so /auto prompts are held until /open")
	return cmd
}

func newBriefingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "briefing",
		Short: "Print the dataset context sent with every question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), briefing.Serialize(a.dataset.Records()))
				return err
			})
		},
	}
}

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the total budget and its funding split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if set != "" {
					v, err := strconv.ParseFloat(set, 64)
					if err != nil {
						return fmt.Errorf("invalid budget %q: %w", set, err)
					}
					a.dataset.SetTotalBudget(v)
				}
				total := a.dataset.TotalBudget()
				shares := dataset.SharesOf(total)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "total\t%s\nenterprise (%.1f%%)\t%s\ngovernment (%.1f%%)\t%s\n",
					strconv.FormatFloat(total, 'f', -1, 64),
					dataset.EnterprisePercent, strconv.FormatFloat(shares.Enterprise, 'f', -1, 64),
					dataset.GovernmentPercent, strconv.FormatFloat(shares.Government, 'f', -1, 64))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "new total budget")
	return cmd
}
