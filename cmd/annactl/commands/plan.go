package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/changeengine"
)

type planIDParams struct {
	ID string `json:"id"`
}

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and confirm pending change plans",
	}
	cmd.AddCommand(newPlanShowCommand(), newPlanConfirmCommand())
	return cmd
}

func newPlanShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a pending plan awaiting confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan changeengine.Plan
			if err := call("plan_show", planIDParams{ID: args[0]}, &plan); err != nil {
				return err
			}
			printResult(plan, func() { printPlan(plan) })
			return nil
		},
	}
}

func newPlanConfirmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <plan-id>",
		Short: "Confirm and execute a pending plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec changeengine.Record
			if err := call("plan_confirm", planIDParams{ID: args[0]}, &rec); err != nil {
				return err
			}
			printResult(rec, func() { printRecord(rec) })
			return nil
		},
	}
}

func printPlan(plan changeengine.Plan) {
	fmt.Printf("plan %s  (%s, confidence %.2f)\n", plan.ID, plan.SafetyLevel, plan.Confidence)
	fmt.Println(plan.Description)
	for i, s := range plan.Steps {
		fmt.Printf("  %d. %s  domain=%s risk=%s\n", i+1, s.Action, s.Domain, s.RiskLevel)
	}
}

func printRecord(rec changeengine.Record) {
	fmt.Printf("change %s  plan=%s  status=%s  can_undo=%v undone=%v\n",
		rec.ChangeID, rec.PlanID, rec.Status, rec.CanUndo, rec.Undone)
	for i, so := range rec.Steps {
		line := fmt.Sprintf("  %d. %s  exit=%d", i+1, so.Step.Action, so.ExitCode)
		if so.PolicyBlocked {
			line += "  POLICY_BLOCKED"
		}
		if so.Err != "" {
			line += "  err=" + so.Err
		}
		fmt.Println(line)
	}
}
