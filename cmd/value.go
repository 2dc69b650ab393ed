package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var valueSave bool

var valueCmd = &cobra.Command{
	Use:   "value <property-id>",
	Short: "Compute the forensic valuation of a stored property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.valueProperty(ctx, args[0])
		if err != nil {
			return err
		}
		if valueSave {
			if err := env.saveValuation(ctx, res); err != nil {
				return err
			}
			zap.L().Info("valuation saved",
				zap.String("property_id", res.PropertyID),
				zap.Float64("forensic_value", res.ForensicValue),
				zap.String("risk_grade", string(res.RiskGrade)),
			)
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	valueCmd.Flags().BoolVar(&valueSave, "save", false, "persist the valuation snapshot onto the property")
	rootCmd.AddCommand(valueCmd)
}
