package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kohigashi/asakai/pkg/cli/config"
	httpctrl "github.com/kohigashi/asakai/pkg/controller/http"
	"github.com/kohigashi/asakai/pkg/usecase"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.App
	var repoCfg config.Repository
	var slackCfg config.Slack
	var notionCfg config.Notion
	var gcsCfg config.CloudStorage
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ASAKAI_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, notionCfg.Flags()...)
	flags = append(flags, gcsCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !slackCfg.IsConfigured() {
				return goerr.New("slack-bot-token and slack-signing-secret are required")
			}

			summaryOpts, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app config")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			ucOpts := []usecase.Option{
				usecase.WithSlackService(slackSvc),
				usecase.WithSummaryOptions(summaryOpts),
			}

			notionSvc, err := notionCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize notion service")
			}
			if notionSvc != nil {
				ucOpts = append(ucOpts, usecase.WithNotion(notionSvc))
				logging.Default().Info("Notion storage enabled")
			}

			gcsClient, gcsCloser, err := gcsCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize cloud storage client")
			}
			if gcsClient != nil {
				defer gcsCloser()
				ucOpts = append(ucOpts, usecase.WithGCS(gcsClient))
				logging.Default().Info("Cloud Storage archiving enabled")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize gemini client")
			}
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLM(llmClient))
				logging.Default().Info("LLM features enabled")
			}

			uc := usecase.New(repo, ucOpts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, slackCfg.SigningSecret()),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				logging.Default().Info("Shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
