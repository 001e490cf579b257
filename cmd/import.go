package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapline/prospect-cli/pkg/notion"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Push a qualified leads CSV into the Notion outreach database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" {
			return eris.New("import: notion.token is required (PROSPECT_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return eris.New("import: notion.lead_db is required (PROSPECT_NOTION_LEAD_DB)")
		}

		client := notion.NewClient(cfg.Notion.Token)
		created, err := notion.ImportLeadsCSV(cmd.Context(), client, cfg.Notion.LeadDB, importCSVPath)
		if err != nil {
			return err
		}

		zap.L().Info("imported leads to notion",
			zap.String("csv", importCSVPath),
			zap.Int("created", created),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "leads CSV to import")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
