package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mrp/config"
	"mrp/data"
	"mrp/store"
)

var (
	cfgFile string
	dataDir string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mrp-data-loader",
	Short: "Load plants, products, materials and orders from CSV files",
	Long: `Loads CSV files into the MRP database in a single transaction.

Without --dir the bundled sample data set is loaded. Recognised files:
plants.csv, materials.csv, products.csv, product_materials.csv,
plant_products.csv, plant_materials.csv, storage_products.csv,
storage_materials.csv, orders.csv and order_products.csv.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		cfg.SetupLogging()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st *store.Store) error {
			err := st.EnsureSchema(cmd.Context())
			if err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}

			var fsys fs.FS = data.FS
			if dataDir != "" {
				fsys = os.DirFS(dataDir)
			}

			summary, err := data.Load(cmd.Context(), st, fsys)
			if err != nil {
				return err
			}

			for table, n := range summary {
				logrus.WithFields(logrus.Fields{"table": table, "rows": n}).Info("inserted")
			}

			return nil
		})
	},
}

var bomCmd = &cobra.Command{
	Use:   "bom PRODUCT",
	Short: "Print the bill of materials of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st *store.Store) error {
			return st.Session(cmd.Context(), func(s *store.Session) error {
				p, err := s.ProductByName(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("product %q: %w", args[0], err)
				}

				pms, err := s.ProductMaterials(cmd.Context(), p.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MATERIAL\tQUANTITY\tUNIT")
				for _, pm := range pms {
					fmt.Fprintf(w, "%s\t%s\t%s\n", pm.MaterialName, pm.Quantity.StringFixed(2), pm.Unit)
				}
				return w.Flush()
			})
		})
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock PLANT",
	Short: "Print the materials held at a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st *store.Store) error {
			return st.Session(cmd.Context(), func(s *store.Session) error {
				p, err := s.PlantByName(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("plant %q: %w", args[0], err)
				}

				pms, err := s.PlantMaterials(cmd.Context(), p.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MATERIAL\tQUANTITY")
				for _, pm := range pms {
					fmt.Fprintf(w, "%s\t%s\n", pm.MaterialName, pm.Quantity.StringFixed(2))
				}
				return w.Flush()
			})
		})
	},
}

func withStore(ctx context.Context, fn func(*store.Store) error) error {
	st, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}

	defer st.Close()

	return fn(st)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file, ignored when missing")
	rootCmd.Flags().StringVar(&dataDir, "dir", "", "directory with CSV files (default: bundled sample data)")

	rootCmd.AddCommand(bomCmd, stockCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("data loader failed")
		os.Exit(1)
	}
}
