package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"logistics-engine/internal/adapters/notify"
	"logistics-engine/internal/adapters/repositories"
	"logistics-engine/internal/adapters/worldfile"
	"logistics-engine/internal/config"
	"logistics-engine/internal/platform/db"
	"logistics-engine/internal/services"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	driver string
	dsn    string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the logistics engine database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultDSN := config.Get("DB_PATH", "data/app.db")
	if config.Get("DB_DRIVER", "sqlite") == "postgres" {
		defaultDSN = config.Get("DATABASE_URL", "")
	}
	root.PersistentFlags().StringVar(&driver, "driver", config.Get("DB_DRIVER", "sqlite"), "database driver (sqlite or postgres)")
	root.PersistentFlags().StringVar(&dsn, "dsn", defaultDSN, "sqlite path or postgres URL")

	root.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the database schema",
			Args:  cobra.NoArgs,
			RunE:  runInit,
		},
		&cobra.Command{
			Use:   "import [world.yaml]",
			Short: "Create the schema and load a world file",
			Args:  cobra.ExactArgs(1),
			RunE:  runImport,
		},
		&cobra.Command{
			Use:   "route [source] [target]",
			Short: "Print the cheapest route between two locations",
			Args:  cobra.ExactArgs(2),
			RunE:  runRoute,
		},
		&cobra.Command{
			Use:   "advance [user] [day]",
			Short: "Resolve spikes and isolation alerts for a user's day",
			Args:  cobra.ExactArgs(2),
			RunE:  runAdvance,
		},
	)
	return root
}

func openDB() (*sql.DB, db.Dialect, error) {
	if dsn == "" {
		return nil, "", fmt.Errorf("--dsn is required for driver %q", driver)
	}
	return db.Open(driver, dsn)
}

func runInit(cmd *cobra.Command, args []string) error {
	conn, _, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	snap, err := worldfile.Load(args[0])
	if err != nil {
		return err
	}

	conn, dialect, err := openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	log.Printf("Importing world path=%s...", args[0])
	if err := repositories.NewSQLStore(conn, dialect).ImportSnapshot(cmd.Context(), snap); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Printf("Import complete locations=%d routes=%d spikes=%d orders=%d",
		len(snap.Locations), len(snap.Routes), len(snap.Spikes), len(snap.Orders))
	return nil
}

func loadEngine(ctx context.Context) (*services.Engine, func(), error) {
	conn, dialect, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	st := repositories.NewSQLStore(conn, dialect)
	engine, err := services.NewEngine(ctx, services.Dependencies{
		World:     st,
		Spikes:    st,
		Orders:    st,
		Inventory: st,
		Vendors:   st,
		Alerts:    st,
		Notifier:  notify.NopNotifier{},
		Demand:    st,
		Balances:  st,
		Clock:     st,
	})
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return engine, func() { _ = conn.Close() }, nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	source, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("source must be an integer: %w", err)
	}
	target, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("target must be an integer: %w", err)
	}

	engine, closeDB, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	path, err := engine.Router.FindBestRoute(cmd.Context(), source, target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path == nil {
		fmt.Fprintf(out, "no route from %d to %d\n", source, target)
		return nil
	}
	fmt.Fprintf(out, "route %d -> %d cost=%.2f days=%d hops=%d\n",
		source, target, path.TotalCost, path.TransitDays(), path.Hops())
	for _, leg := range path.Routes {
		fmt.Fprintf(out, "  #%d %d -> %d %s cost=%.2f\n",
			leg.ID, leg.SourceID, leg.TargetID, leg.Mode, engine.Router.CalculateCost(leg))
	}
	return nil
}

func runAdvance(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("user must be an integer: %w", err)
	}
	day, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("day must be an integer: %w", err)
	}

	engine, closeDB, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := engine.Days.Advance(cmd.Context(), userID, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "day %d: applied=%v rolled_back=%v alerts_raised=%d alerts_resolved=%d\n",
		report.Day, report.Spikes.Applied, report.Spikes.RolledBack,
		len(report.Isolation.Raised), len(report.Isolation.Resolved))
	return nil
}
