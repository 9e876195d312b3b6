package main

import (
	"encoding/json"

	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <pago-id>",
		Short: "Sync one payment with the checkout provider and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			database, err := db.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			a, err := newApp(cfg, database)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.payments.Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
