package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/changeengine"
)

func newChangeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change",
		Short: "List applied changes and roll them back",
	}
	cmd.AddCommand(newChangeListCommand(), newChangeUndoCommand())
	return cmd
}

func newChangeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recorded changes, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var recs []changeengine.Record
			if err := call("change_list", nil, &recs); err != nil {
				return err
			}
			printResult(recs, func() {
				for _, rec := range recs {
					fmt.Printf("%s  %s  plan=%s  status=%s  can_undo=%v undone=%v\n",
						rec.AppliedAt.Format("2006-01-02T15:04:05Z07:00"),
						rec.ChangeID, rec.PlanID, rec.Status, rec.CanUndo, rec.Undone)
				}
			})
			return nil
		},
	}
}

func newChangeUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <change-id>",
		Short: "Roll back a previously applied change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec changeengine.Record
			if err := call("change_undo", planIDParams{ID: args[0]}, &rec); err != nil {
				return err
			}
			printResult(rec, func() { printRecord(rec) })
			return nil
		},
	}
}
