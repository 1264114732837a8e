package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type statusResult struct {
	State          string   `json:"state"`
	UptimeSeconds  float64  `json:"uptime_seconds"`
	Warnings       []string `json:"warnings"`
	ActiveRequests int      `json:"active_requests"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report daemon lifecycle state, uptime, and active requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res statusResult
			if err := call("status", nil, &res); err != nil {
				return err
			}
			printResult(res, func() {
				fmt.Printf("state:           %s\n", res.State)
				fmt.Printf("uptime:          %.0fs\n", res.UptimeSeconds)
				fmt.Printf("active requests: %d\n", res.ActiveRequests)
				for _, w := range res.Warnings {
					fmt.Printf("warning:         %s\n", w)
				}
			})
			return nil
		},
	}
}
