package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
)

var (
	hoursStart string
	hoursEnd   string
)

var slaCmd = &cobra.Command{
	Use:   "sla",
	Short: "Inspect the SLA policy",
}

var slaHoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Print the business hours between two instants",
	Long: `Print the working hours the SLA calendar counts between --start and --end.
Both accept RFC3339 timestamps or dates (YYYY-MM-DD, midnight in the policy timezone).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := config.LoadPolicy(cfg.Policy.Path)
		if err != nil {
			return err
		}
		evaluator, err := policy.Evaluator()
		if err != nil {
			return err
		}
		loc, err := policy.Location()
		if err != nil {
			return err
		}
		start, err := parseInstant(hoursStart, loc)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		end, err := parseInstant(hoursEnd, loc)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", evaluator.Calendar.WorkingHoursBetween(start, end))
		return nil
	},
}

var slaThresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the per-priority SLA thresholds in business hours",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := config.LoadPolicy(cfg.Policy.Path)
		if err != nil {
			return err
		}
		priorities := make([]domain.IssuePriority, 0, len(policy.Thresholds))
		for p := range policy.Thresholds {
			priorities = append(priorities, p)
		}
		sort.Slice(priorities, func(i, j int) bool { return priorities[i] < priorities[j] })

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s %15s %12s\n", "PRIORITY", "FIRST_RESPONSE", "RESOLUTION")
		for _, p := range priorities {
			t := policy.Thresholds[p]
			fmt.Fprintf(out, "%-10s %15.1f %12.1f\n", p, t.FirstResponseHours, t.ResolutionHours)
		}
		return nil
	},
}

func init() {
	slaHoursCmd.Flags().StringVar(&hoursStart, "start", "", "start instant")
	slaHoursCmd.Flags().StringVar(&hoursEnd, "end", "", "end instant")
	_ = slaHoursCmd.MarkFlagRequired("start")
	_ = slaHoursCmd.MarkFlagRequired("end")

	slaCmd.AddCommand(slaHoursCmd)
	slaCmd.AddCommand(slaThresholdsCmd)
}

func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}
