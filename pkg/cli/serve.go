package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sadhugit/rancher-release-bot/pkg/cli/config"
	controller "github.com/sadhugit/rancher-release-bot/pkg/controller/http"
	"github.com/sadhugit/rancher-release-bot/pkg/controller/slackcmd"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
	ghfeed "github.com/sadhugit/rancher-release-bot/pkg/infra/github"
	"github.com/sadhugit/rancher-release-bot/pkg/infra/slackbot"
	"github.com/sadhugit/rancher-release-bot/pkg/infra/sqlite"
	"github.com/sadhugit/rancher-release-bot/pkg/infra/ticket"
	"github.com/sadhugit/rancher-release-bot/pkg/usecase"
	"github.com/sadhugit/rancher-release-bot/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		githubCfg     config.GitHub
		geminiCfg     config.Gemini
		slackCfg      config.Slack
		dbCfg         config.Database
		jiraCfg       config.Jira
		serviceNowCfg config.ServiceNow
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, jiraCfg.Flags()...)
	flags = append(flags, serviceNowCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the release monitor and HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting rancher-release-bot server",
				slog.String("addr", serverCfg.Addr),
				slog.String("repo", githubCfg.Owner+"/"+githubCfg.Repo),
				slog.Duration("check_interval", githubCfg.CheckInterval),
			)

			store, err := sqlite.New(dbCfg.Path)
			if err != nil {
				return goerr.Wrap(err, "failed to open release store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Error("Failed to close release store", slog.Any("error", err))
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to create Gemini client")
			}

			feed := ghfeed.NewClient(githubCfg.Owner, githubCfg.Repo, githubCfg.Token)
			chat := slackbot.New(slackCfg.BotToken)

			ticketSystems := []interfaces.TicketSystem{
				ticket.NewJira(jiraCfg.URL, jiraCfg.Email, jiraCfg.APIToken, jiraCfg.ProjectKey),
				ticket.NewServiceNow(serviceNowCfg.Instance, serviceNowCfg.Username, serviceNowCfg.Password),
			}

			// Create use cases
			detectorUC := usecase.NewDetector(feed, store)
			analyzerUC, err := usecase.NewAnalyzer(llmClient, store)
			if err != nil {
				return goerr.Wrap(err, "failed to create analyzer")
			}
			notifierUC := usecase.NewNotifier(chat, store, usecase.Channels{
				Critical: slackCfg.ChannelCritical,
				Releases: slackCfg.ChannelReleases,
				Team:     slackCfg.ChannelTeam,
			})
			escalatorUC := usecase.NewEscalator(ticketSystems)
			pipelineUC := usecase.NewPipeline(detectorUC, analyzerUC, store, notifierUC, escalatorUC)

			slackHandler := slackcmd.New(analyzerUC, notifierUC, store, slackCfg.SigningSecret)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				pipelineUC,
				store,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithSlackCommandHandler(slackHandler),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Run the pipeline once at startup, then on every tick
			pollCtx, stopPolling := context.WithCancel(ctx)
			defer stopPolling()

			async.Dispatch(pollCtx, pipelineUC.Run)
			go func() {
				ticker := time.NewTicker(githubCfg.CheckInterval)
				defer ticker.Stop()
				for {
					select {
					case <-pollCtx.Done():
						return
					case <-ticker.C:
						if err := pipelineUC.Run(pollCtx); err != nil {
							logger.Error("Scheduled release check failed", slog.Any("error", err))
						}
					}
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}
			stopPolling()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
