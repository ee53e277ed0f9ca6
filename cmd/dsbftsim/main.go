// Command dsbftsim is the scenario launcher for the Dolev-Strong broadcast
// simulator. It is a thin driver: it parses flags into a protocol.Config,
// runs the harness, and prints the result. No protocol logic lives here.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/dsbftsim/simulator/dsbft"
	"github.com/dsbftsim/simulator/protocol"
)

var (
	totalParties int
	faultBound   int
	byzantineCSV string
	senderID     int
	initialValue string
	seed         int64
	pCorrupt     float64
	pInject      float64
	logLevel     string
)

func main() {
	root := &cobra.Command{
		Use:   "dsbftsim",
		Short: "Simulate the Dolev-Strong Byzantine broadcast protocol",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Construct a scenario, run it to completion, and print the result",
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&totalParties, "total", 4, "total number of parties")
	runCmd.Flags().IntVar(&faultBound, "f", 1, "fault bound f")
	runCmd.Flags().StringVar(&byzantineCSV, "byzantine", "", "comma-separated byzantine party ids")
	runCmd.Flags().IntVar(&senderID, "sender", 0, "sender party id")
	runCmd.Flags().StringVar(&initialValue, "initial", "buy", "the sender's proposed value")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "seed for the adversary's pseudo-random source")
	runCmd.Flags().Float64Var(&pCorrupt, "p-corrupt", protocol.DefaultProbability, "probability a byzantine relay is corrupted (unset = spec default, 0 = never)")
	runCmd.Flags().Float64Var(&pInject, "p-inject", protocol.DefaultProbability, "probability a byzantine party injects a message (unset = spec default, 0 = never)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "trace verbosity: debug, info, warn, error")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	if err := logging.SetLogLevel("dsbft", logLevel); err != nil {
		return err
	}

	byzantineIDs, err := parseIDs(byzantineCSV)
	if err != nil {
		return err
	}

	cfg := protocol.Config{
		TotalParties: totalParties,
		F:            faultBound,
		ByzantineIDs: byzantineIDs,
		SenderID:     dsbft.PartyID(senderID),
		InitialValue: initialValue,
		PCorrupt:     pCorrupt,
		PInject:      pInject,
		Seed:         seed,
	}

	harness, err := protocol.NewHarness(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result := harness.Run()
	printResult(result)
	return nil
}

func parseIDs(csv string) ([]dsbft.PartyID, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]dsbft.PartyID, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid party id %q: %w", part, err)
		}
		ids = append(ids, dsbft.PartyID(n))
	}
	return ids, nil
}

func printResult(result protocol.Result) {
	fmt.Println("=== Dolev-Strong consensus results ===")
	fmt.Printf("agreement: %v\n", result.Agreement)
	fmt.Printf("distinct decisions: %v\n", result.DistinctDecisions())
	for id, decision := range result.Decisions {
		kind := "honest"
		if _, ok := result.ByzantineIDs[id]; ok {
			kind = "byzantine"
		}
		fmt.Printf("  party %s (%s): decided %q, extracted %v\n", id, kind, decision, result.Extracted[id])
	}
}
