// DeckCalc estimates decking material for a deck plan.
//
// Usage:
//
//	deckcalc estimate -plan deck.json [-pdf report.pdf] [-xlsx report.xlsx] [-labels labels.pdf]
//	deckcalc estimate -dxf deck.dxf -dxf-scale 1000 -stairs stairs.csv -mode pro -cut-plan
//	deckcalc compare -plan deck.json -dirs 0,45,90
//	deckcalc serve -addr :8080
//
// Build:
//
//	go build -o deckcalc ./cmd/deckcalc
//
// DECKCALC_CONFIG overrides the config file location and DECKCALC_ADDR the
// server listen address.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const usage = `usage: deckcalc <command> [flags]

commands:
  estimate   compute quantities for a plan and print them as JSON
  compare    compare decking directions and modes for a plan
  serve      run the JSON HTTP API
`

func main() {
	log.SetPrefix("[DECKCALC] ")
	log.SetFlags(0)

	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	switch args[0] {
	case "estimate":
		return runEstimate(args[1:], stdout)
	case "compare":
		return runCompare(args[1:], stdout)
	case "serve":
		return runServe(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}
