package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kohigashi/asakai/pkg/cli/config"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/service/summary"
	"github.com/kohigashi/asakai/pkg/usecase"
	"github.com/kohigashi/asakai/pkg/utils/logging"
	"github.com/kohigashi/asakai/pkg/utils/safe"
)

func cmdHistory() *cli.Command {
	var conversationID string
	var tenantID string
	var limit int
	var appCfg config.App
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "conversation-id",
			Usage:       "Conversation (channel) ID to show history for",
			Required:    true,
			Destination: &conversationID,
		},
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Tenant (workspace) ID the conversation belongs to",
			Required:    true,
			Destination: &tenantID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Show only the most recent N summaries (0 shows all)",
			Destination: &limit,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "history",
		Usage: "Print archived standup summaries for a conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			uc := usecase.New(repo, usecase.WithSummaryOptions(summaryOpts))
			summaries, err := uc.Standup.GetStandupHistory(ctx, types.ConversationID(conversationID), types.TenantID(tenantID))
			if err != nil {
				return goerr.Wrap(err, "failed to load standup history")
			}

			if len(summaries) == 0 {
				fmt.Println("No standup history for this conversation.")
				return nil
			}
			if limit > 0 && len(summaries) > limit {
				summaries = summaries[len(summaries)-limit:]
			}

			builder := summary.NewBuilder(summaryOpts)
			heading := color.New(color.FgCyan, color.Bold)
			meta := color.New(color.FgHiBlack)

			for i, s := range summaries {
				if i > 0 {
					fmt.Println()
				}
				heading.Printf("Standup %s\n", s.Date.Format("2006-01-02 15:04"))
				meta.Printf("id=%s participants=%d responses=%d\n\n", s.ID, len(s.Participants), len(s.Responses))
				safe.Write(ctx, os.Stdout, []byte(builder.BuildFromSummary(&s)+"\n"))
			}
			return nil
		},
	}
}
