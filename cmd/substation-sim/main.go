// Package main is the substation-sim entry point (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/Peptide90/SubstationMimicSim-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
