package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/aeworks/ops-api/internal/app"
	"github.com/aeworks/ops-api/internal/costing"
	"github.com/aeworks/ops-api/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the local store with the master document",
	Long: `Download the master document, merge every dataset into the local
store, upload the merged state when it differs and ingest the feedback inbox.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.Sync.Sync(ctx, domain.TriggerManual, token)
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			return resultError(res)
		})
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Overwrite the master document with the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.Sync.PushToCloud(ctx, token)
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			return resultError(res)
		})
	},
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Ingest customer feedback files from the inbox folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.Sync.SyncInbox(ctx, domain.TriggerManual, token)
			if err := printJSON(cmd, res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("inbox ingestion failed: %s", res.Message)
			}
			return nil
		})
	},
}

var costCmd = &cobra.Command{
	Use:   "cost <project-code>",
	Short: "Print the cost breakdown of a stored project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, err := a.Costing.CostProject(ctx, args[0])
			if err != nil {
				return err
			}
			return printCost(cmd, result)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Replace datasets with the records in a YAML file",
	Long: `Load a YAML file whose top-level keys are dataset names and whose
values are lists of records, and save each listed dataset.

  framingMaterials:
    - group: RHS
      name: RHS 50x50x3
      rate: 180
      surfaceAreaFactor: 0.2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasets, err := readSeed(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			names := make([]string, 0, len(datasets))
			for name := range datasets {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				stored, err := a.Datasets.Save(ctx, name, datasets[name])
				if err != nil {
					return fmt.Errorf("failed to seed %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %d records\n", name, len(stored))
			}
			return nil
		})
	},
}

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Show the cloud connection state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printJSON(cmd, a.System.Meta(ctx).View())
		})
	},
}

var (
	connectEmail   string
	connectIDToken string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Store a cloud access token for background syncs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return fmt.Errorf("--token is required")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			meta, err := a.System.Connect(ctx, domain.ConnectRequest{AccessToken: token, IDToken: connectIDToken, Email: connectEmail})
			if err != nil {
				return err
			}
			return printJSON(cmd, meta.View())
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored cloud token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			meta, err := a.System.Disconnect(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, meta.View())
		})
	},
}

var (
	runsKind  string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			runs, err := a.Runs.ListRecent(ctx, runsKind, runsLimit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tKIND\tSOURCE\tOK\tINBOX\tMESSAGE")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n",
					domain.FormatTimestamp(r.StartedAt), r.Kind, r.Source, r.Success, r.InboxCount, r.Message)
			}
			return w.Flush()
		})
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectEmail, "email", "", "account email")
	connectCmd.Flags().StringVar(&connectIDToken, "id-token", "", "OpenID token carrying the account email")

	runsCmd.Flags().StringVar(&runsKind, "kind", "", "filter by kind (sync, push, inbox)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs")
}

func resultError(res domain.SyncResult) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s", res.Message)
}

// readSeed decodes a dataset → records YAML file.
func readSeed(path string) (map[string][]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var raw map[string][]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	out := make(map[string][]domain.Record, len(raw))
	for name, items := range raw {
		if !domain.IsSyncedDataset(name) {
			return nil, fmt.Errorf("unknown dataset in seed file: %s", name)
		}
		records := make([]domain.Record, 0, len(items))
		for _, item := range items {
			records = append(records, domain.Record(item))
		}
		out[name] = records
	}
	return out, nil
}

func printCost(cmd *cobra.Command, c *costing.ProjectCost) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Project\t%s\t\n", c.ProjectCode)
	for _, job := range c.Jobs {
		fmt.Fprintf(w, "  %s\t%s\t\n", job.JobName, costing.FormatAmount(job.Total))
	}
	fmt.Fprintf(w, "Jobs total\t%s\t\n", costing.FormatAmount(c.JobsTotal))
	fmt.Fprintf(w, "Design\t%s\t\n", costing.FormatAmount(c.DesignCost))
	fmt.Fprintf(w, "Total cost\t%s\t\n", costing.FormatAmount(c.TotalCost))
	fmt.Fprintf(w, "Sale price\t%s\t\n", costing.FormatAmount(c.SalePrice))
	fmt.Fprintf(w, "Profit\t%s\t\n", costing.FormatAmount(c.Profit))
	return w.Flush()
}
