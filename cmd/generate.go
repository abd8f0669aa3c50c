package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rjoseph-dev/crewsched/app"
	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/infra/logger"
)

var (
	generateType   string
	generateCommit bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one schedule generation and print the plan as JSON",
	RunE:  generate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateType, "type", "t", "daily", "schedule type: daily, weekly or monthly")
	generateCmd.Flags().BoolVar(&generateCommit, "commit", false, "persist accepted entries as trips")
	rootCmd.AddCommand(generateCmd)
}

func generate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("generate-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Generator.Generate(ctx, model.ScheduleType(generateType))
	if err != nil {
		return err
	}
	if generateCommit && len(res.Schedules) > 0 {
		trips, err := svc.Store.CommitSchedules(ctx, res.Schedules)
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		logg.Infof("committed %d trips", len(trips))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
