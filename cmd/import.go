package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/sheet"
)

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import audited properties and documents from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		wb, err := sheet.Import(args[0])
		if err != nil {
			return eris.Wrap(err, "import workbook")
		}
		for _, r := range wb.Rejected {
			zap.L().Warn("row rejected", zap.String("sheet", r.Sheet), zap.Int("row", r.Row), zap.Error(r.Err))
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		props, docs, err := env.importWorkbook(ctx, wb.Properties, wb.Documents)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("workbook", args[0]),
			zap.Int64("properties", props),
			zap.Int64("documents", docs),
			zap.Int("rejected", len(wb.Rejected)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
