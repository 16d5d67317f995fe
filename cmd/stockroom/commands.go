package main

import (
	"fmt"
	"strconv"

	"stockroom/internal/backup"
	"stockroom/internal/cli"
	"stockroom/internal/config"
	"stockroom/internal/models"
	"stockroom/internal/store"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          *app
	)

	rootCmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Inventory record store with an interactive menu",
		Long: `stockroom keeps inventory items in a fixed-size binary record file.

Run without a subcommand to start the interactive menu. The subcommands
perform one operation each and are meant for scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or "+config.DefaultConfigPath+")")

	// subcommands reach the app through this getter; it is set in PersistentPreRunE
	get := func() *app { return a }

	rootCmd.AddCommand(
		newListCmd(get),
		newFindCmd(get),
		newAddCmd(get),
		newUpdateCmd(get),
		newStockCmd(get, models.DirectionIn),
		newStockCmd(get, models.DirectionOut),
		newDeleteCmd(get),
		newExportCmd(get),
		newBackupCmd(get),
		newSeedCmd(get),
	)
	return rootCmd
}

func newListCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all items with their status and the total inventory value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := get().items.List(cmd.Context())
			if err != nil {
				return err
			}
			cli.RenderInventory(cmd.OutOrStdout(), inv)
			return nil
		},
	}
}

func newFindCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find CODE",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := get().items.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cli.RenderItem(cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func newAddCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add CODE NAME PRICE QUANTITY REORDER_LEVEL",
		Short: "Add a new item",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			qty, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			reorder, err := parseReorderLevel(args[4])
			if err != nil {
				return err
			}
			item := models.Item{Code: args[0], Name: args[1], Price: price, Quantity: qty, ReorderLevel: reorder}
			if err := get().items.Add(cmd.Context(), item); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item added successfully!")
			return nil
		},
	}
}

func newUpdateCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update CODE PRICE REORDER_LEVEL",
		Short: "Change the price and reorder level of an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			reorder, err := parseReorderLevel(args[2])
			if err != nil {
				return err
			}
			if err := get().items.Update(cmd.Context(), args[0], price, reorder); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item updated.")
			return nil
		},
	}
}

func newStockCmd(get func() *app, dir models.Direction) *cobra.Command {
	short := "Receive stock for an item"
	if dir == models.DirectionOut {
		short = "Issue stock for an item"
	}
	return &cobra.Command{
		Use:   dir.String() + " CODE AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			a := get()
			var item models.Item
			if dir == models.DirectionIn {
				item, err = a.items.StockIn(cmd.Context(), args[0], amount)
			} else {
				item, err = a.items.StockOut(cmd.Context(), args[0], amount)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stock updated. %s now has %.2f on hand.\n", item.Code, item.Quantity)
			return nil
		},
	}
}

func newDeleteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CODE",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get().items.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item deleted.")
			return nil
		},
	}
}

func newExportCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the inventory value report as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := get().exportReport(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
}

func newBackupCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the data file into the backup directory now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			svc := backup.NewBackupService(a.cfg.Store.Path, a.cfg.Backup, a.logger)
			path, err := svc.PerformBackup()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No inventory data found.")
				return nil
			}
			svc.CleanupOldBackups()
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}

func newSeedCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Add the items listed in a YAML file that are not stored yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := config.LoadItems(args[0])
			if err != nil {
				return err
			}
			added, err := get().items.Seed(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d item(s) added.\n", added, len(items))
			return nil
		},
	}
}

func parseAmount(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", store.ErrInvalidValue, s)
	}
	return float32(v), nil
}

func parseReorderLevel(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", store.ErrInvalidValue, s)
	}
	return int32(v), nil
}
