package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/core/roster"
	"github.com/rjoseph-dev/crewsched/infra/logger"
	"github.com/rjoseph-dev/crewsched/infra/store"
)

var kpiDepot string

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Print per-role fatigue statistics for the roster",
	RunE:  kpi,
}

func init() {
	kpiCmd.Flags().StringVarP(&kpiDepot, "depot", "d", "", "restrict to one depot")
	rootCmd.AddCommand(kpiCmd)
}

func kpi(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	logg := logger.New("kpi-command")
	defer func() {
		if err := st.Close(); err != nil {
			logg.Errorf("store close: %v", err)
		}
	}()

	var duties fatigue.DutySource = st
	if cfg.Cache.Enabled {
		duties = store.NewCachedDutySource(st, cfg.Cache)
	}
	estimator := fatigue.NewEstimator(duties, cfg.Fatigue, logger.New("fatigue"))

	report, err := roster.FatigueReport(ctx, st, estimator, cfg.Fatigue, model.DepotID(kpiDepot))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
