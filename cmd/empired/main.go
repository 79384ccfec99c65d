package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	staticcatalog "github.com/stellaredge/empire-engine/internal/adapters/catalog"
	"github.com/stellaredge/empire-engine/internal/adapters/metrics"
	"github.com/stellaredge/empire-engine/internal/adapters/persistence"
	"github.com/stellaredge/empire-engine/internal/application/common"
	appledger "github.com/stellaredge/empire-engine/internal/application/ledger"
	"github.com/stellaredge/empire-engine/internal/application/orders"
	"github.com/stellaredge/empire-engine/internal/application/tick"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
	"github.com/stellaredge/empire-engine/internal/infrastructure/config"
	"github.com/stellaredge/empire-engine/internal/infrastructure/database"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "empired",
		Short: "Empire engine daemon - the economic simulation core",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(newDaemonCommand())
	rootCmd.AddCommand(newSweepCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the engine with the periodic tick sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)

			eng, db, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if cfg.Metrics.Enabled {
				go serveMetrics(cfg.Metrics.Addr)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runTickLoop(ctx, cfg, eng)
		},
	}
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a single tick sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)

			eng, db, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			resp, err := eng.Send(context.Background(), &tick.SweepDueOrdersCommand{})
			if err != nil {
				return err
			}
			sweep := resp.(*tick.SweepDueOrdersResponse)
			fmt.Printf("Sweep complete: %d buildings activated, %d queue items completed\n",
				sweep.BuildingsActivated, sweep.ItemsCompleted)
			return nil
		},
	}
}

// buildEngine wires the repositories, the catalog and every handler
// into a mediator
func buildEngine(cfg *config.Config) (common.Mediator, *gorm.DB, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	empireRepo := persistence.NewGormEmpireRepository(db)
	baseRepo := persistence.NewGormBaseRepository(db)
	buildingRepo := persistence.NewGormBuildingRepository(db)
	queueRepo := persistence.NewGormQueueRepository(db)
	techRepo := persistence.NewGormTechLevelRepository(db)
	stockpileRepo := persistence.NewGormStockpileRepository(db)
	transactionRepo := persistence.NewGormTransactionRepository(db)

	lookup := staticcatalog.NewDefaultCatalog()
	clock := shared.NewRealClock()
	creditLedger := appledger.NewService(empireRepo, transactionRepo, clock)
	baseLock := orders.NewBaseLock()

	m := common.NewMediator()
	registrations := []error{
		common.RegisterHandler[*orders.StartOrderCommand](m,
			orders.NewStartOrderHandler(empireRepo, baseRepo, buildingRepo, queueRepo, techRepo, lookup, creditLedger, baseLock, clock)),
		common.RegisterHandler[*orders.CancelOrderCommand](m,
			orders.NewCancelOrderHandler(queueRepo, buildingRepo, creditLedger, baseLock, clock)),
		common.RegisterHandler[*orders.GetCapacitiesQuery](m,
			orders.NewGetCapacitiesHandler(baseRepo, buildingRepo, lookup, clock)),
		common.RegisterHandler[*orders.GetStatsQuery](m,
			orders.NewGetStatsHandler(baseRepo, buildingRepo, lookup, clock)),
		common.RegisterHandler[*orders.ListQueueQuery](m,
			orders.NewListQueueHandler(empireRepo, queueRepo, buildingRepo, clock)),
		common.RegisterHandler[*tick.SweepDueOrdersCommand](m,
			tick.NewSweepDueOrdersHandler(buildingRepo, queueRepo, techRepo, stockpileRepo, clock)),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	return m, db, nil
}

// runTickLoop drives the sweep on the configured interval. The rate
// limiter bounds sweep frequency even if the interval is misconfigured
// aggressively low.
func runTickLoop(ctx context.Context, cfg *config.Config, eng common.Mediator) error {
	log.Printf("Tick loop started, interval %s", cfg.Tick.Interval)

	limiter := rate.NewLimiter(rate.Limit(cfg.Tick.MaxPerSecond), 1)
	ticker := time.NewTicker(cfg.Tick.Interval)
	defer ticker.Stop()

	ctx = common.WithLogger(ctx, &common.StdLogger{})

	for {
		select {
		case <-ctx.Done():
			log.Println("Tick loop stopped")
			return nil
		case <-ticker.C:
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			resp, err := eng.Send(ctx, &tick.SweepDueOrdersCommand{})
			if err != nil {
				log.Printf("Sweep failed: %v", err)
				continue
			}
			sweep := resp.(*tick.SweepDueOrdersResponse)
			if sweep.BuildingsActivated > 0 || sweep.ItemsCompleted > 0 {
				log.Printf("Sweep: %d buildings activated, %d queue items completed",
					sweep.BuildingsActivated, sweep.ItemsCompleted)
			}
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	log.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}
