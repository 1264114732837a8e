package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type showParams struct {
	Key string `json:"key"`
}

type showResult struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Value  string `json:"value,omitempty"`
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show a single Fact Store entry by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res showResult
			if err := call("show", showParams{Key: args[0]}, &res); err != nil {
				return err
			}
			printResult(res, func() {
				fmt.Printf("%s  %s", res.Key, res.Status)
				if res.Value != "" {
					fmt.Printf("  %s", res.Value)
				}
				fmt.Println()
			})
			return nil
		},
	}
}
