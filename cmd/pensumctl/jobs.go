package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/cron"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/spf13/cobra"
)

var jobsLimit int

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run background jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent job runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		var logs []model.CronJobLog
		if err := e.store.DB().WithContext(ctx).Order("started_at DESC").Limit(jobsLimit).Find(&logs).Error; err != nil {
			return fmt.Errorf("failed to load job logs: %w", err)
		}
		if len(logs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No job runs recorded")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tSTARTED\tDURATION\tRESULT")
		for _, l := range logs {
			result := l.Message
			if l.Status == model.JobStatusFailed {
				result = l.ErrorMsg
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				l.ID, l.JobName, l.Status,
				l.StartedAt.Format("2006-01-02 15:04:05"),
				time.Duration(l.Duration)*time.Millisecond,
				result,
			)
		}
		return tw.Flush()
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <job-name>",
	Short: "Run a job now and record it like a scheduled run",
	Long: fmt.Sprintf(`Run a job now and record it like a scheduled run.

Jobs: %s, %s`, cron.JobPruneOrphanAssets, cron.JobCleanupOldData),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		var objects storage.ObjectStore
		if e.cfg.Spaces.Enabled() {
			if objects, err = storage.NewSpacesClient(e.cfg.Spaces); err != nil {
				return err
			}
		}

		manager := cron.NewCronManager(e.store.DB(), objects, e.cfg.Cron.OrphanGraceTime, e.logger)
		entry, err := manager.RunByName(args[0])
		if err != nil {
			return err
		}
		if entry.Status == model.JobStatusFailed {
			return fmt.Errorf("%s failed: %s", entry.JobName, entry.ErrorMsg)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", entry.JobName, entry.Message)
		return nil
	},
}

func init() {
	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 20, "Number of runs to show")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRunCmd)
}
