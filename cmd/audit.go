package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/compliance"
)

var (
	auditPurchaseDate string
	auditNationality  string
	auditApply        bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <property-id>",
	Short: "Run the compliance audit of a stored property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		purchase, err := parseDate(auditPurchaseDate)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, res, err := env.auditProperty(ctx, args[0], purchase, auditNationality)
		if err != nil {
			return err
		}
		if auditApply {
			compliance.ApplyFlags(p, res)
			if err := env.Store.SaveProperty(ctx, p); err != nil {
				return err
			}
			zap.L().Info("compliance flags applied",
				zap.String("property_id", p.ID),
				zap.String("status", string(res.Status)),
				zap.Int("flags", len(res.Flags)),
			)
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditPurchaseDate, "purchase-date", "", "purchase date (YYYY-MM-DD) for the undeveloped-land deadline")
	auditCmd.Flags().StringVar(&auditNationality, "nationality", "", "buyer nationality as an ISO country code")
	auditCmd.Flags().BoolVar(&auditApply, "apply", false, "store the resulting compliance flags on the property")
	rootCmd.AddCommand(auditCmd)
}
