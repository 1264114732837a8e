package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type driftResult struct {
	Added   []string `json:"Added"`
	Removed []string `json:"Removed"`
}

func newDriftCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Compare recorded package facts against the live package manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res driftResult
			if err := call("drift", nil, &res); err != nil {
				return err
			}
			printResult(res, func() {
				for _, name := range res.Added {
					fmt.Printf("+ %s\n", name)
				}
				for _, name := range res.Removed {
					fmt.Printf("- %s\n", name)
				}
				if len(res.Added) == 0 && len(res.Removed) == 0 {
					fmt.Println("no drift detected")
				}
			})
			return nil
		},
	}
}
