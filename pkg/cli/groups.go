package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kohigashi/asakai/pkg/cli/config"
	"github.com/kohigashi/asakai/pkg/domain/types"
	"github.com/kohigashi/asakai/pkg/usecase"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

func cmdGroups() *cli.Command {
	var tenantID string
	var deleteConversation string
	var repoCfg config.Repository
	var notionCfg config.Notion
	var gcsCfg config.CloudStorage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Tenant (workspace) ID to operate on",
			Required:    true,
			Destination: &tenantID,
		},
		&cli.StringFlag{
			Name:        "delete",
			Usage:       "Deregister the group of the given conversation ID instead of listing",
			Destination: &deleteConversation,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, notionCfg.Flags()...)
	flags = append(flags, gcsCfg.Flags()...)

	return &cli.Command{
		Name:  "groups",
		Usage: "List or deregister standup groups in a tenant",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// Groups bound to a notion or gcs adapter only hydrate when the
			// matching service is configured.
			ucOpts := []usecase.Option{}
			notionSvc, err := notionCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize notion service")
			}
			if notionSvc != nil {
				ucOpts = append(ucOpts, usecase.WithNotion(notionSvc))
			}
			gcsClient, gcsCloser, err := gcsCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize cloud storage client")
			}
			if gcsClient != nil {
				defer gcsCloser()
				ucOpts = append(ucOpts, usecase.WithGCS(gcsClient))
			}

			uc := usecase.New(repo, ucOpts...)
			tenant := types.TenantID(tenantID)

			if deleteConversation != "" {
				conv := types.ConversationID(deleteConversation)
				if err := uc.Standup.DeregisterGroup(ctx, conv, tenant); err != nil {
					return goerr.Wrap(err, "failed to deregister group",
						goerr.V("conversation_id", conv))
				}
				fmt.Printf("Deregistered the standup group of %s.\n", conv)
				return nil
			}

			groups, err := uc.Standup.ListGroups(ctx, tenant)
			if err != nil {
				return goerr.Wrap(err, "failed to list groups")
			}
			if len(groups) == 0 {
				fmt.Println("No standup groups are registered in this tenant.")
				return nil
			}

			heading := color.New(color.FgCyan, color.Bold)
			for _, g := range groups {
				status := "idle"
				if g.IsActive() {
					status = "active"
				}
				heading.Printf("%s\n", g.ConversationID())
				fmt.Printf("  members=%d status=%s storage=%s\n",
					len(g.Users()), status, g.Storage().Kind())
			}
			return nil
		},
	}
}
