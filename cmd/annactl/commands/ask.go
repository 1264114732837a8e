package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type askParams struct {
	Utterance string `json:"utterance"`
	Debug     bool   `json:"debug"`
}

type askEvent struct {
	Seq       int            `json:"Seq"`
	Actor     string         `json:"Actor"`
	Kind      string         `json:"Kind"`
	ElapsedMS int64          `json:"ElapsedMS"`
	Payload   map[string]any `json:"Payload"`
}

type askResult struct {
	RequestID        string      `json:"request_id"`
	Status           string      `json:"status"`
	Answer           string      `json:"answer"`
	Confidence       string      `json:"confidence"`
	Reliability      int         `json:"reliability"`
	ReliabilityClass string      `json:"reliability_class"`
	Fingerprint      string      `json:"fingerprint"`
	Transcript       []askEvent  `json:"transcript"`
}

func newAskCommand() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "ask <utterance>",
		Short: "Ask annad a question about the system",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res askResult
			params := askParams{Utterance: strings.Join(args, " "), Debug: debug}
			if err := call("ask", params, &res); err != nil {
				return err
			}
			printResult(res, func() {
				fmt.Printf("[%s] %s\n", res.Status, res.Answer)
				fmt.Printf("confidence: %s  reliability: %d (%s)  fingerprint: %s\n",
					res.Confidence, res.Reliability, res.ReliabilityClass, res.Fingerprint)
				if debug {
					for _, ev := range res.Transcript {
						fmt.Printf("  %4dms %-10s %-14s %v\n", ev.ElapsedMS, ev.Actor, ev.Kind, ev.Payload)
					}
				}
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "include the full internal transcript")
	return cmd
}
