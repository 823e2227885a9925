package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [validate|sample]",
	Short: "Scenario content tooling (validate a file, print the built-in sample)",
	RunE:  runScenario,
}

func runScenario(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("available: validate <file.json>, sample")
		return nil
	}
	switch args[0] {
	case "validate":
		if len(args) < 2 {
			return fmt.Errorf("usage: scenario validate <file.json>")
		}
		sc, err := scenario.LoadFile(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("ok: %q, %d assets, %d edges, %d rules, %d events, %ds\n",
			sc.Name, len(sc.Assets), len(sc.Edges), len(sc.Rules), len(sc.Events), sc.DurationSec)
		return nil
	case "sample":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scenario.Sample())
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}
