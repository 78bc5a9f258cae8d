// smctl is an interactive control program for a slotmap.Table.
//
// Usage:
//
//	smctl [--capacity N] [--seed fixture.jsonc]   Start an interactive REPL
//	smctl bench --capacity N --count N            Run a throughput benchmark and exit
//
// REPL commands:
//
//	put <key> count <n>              Insert or overwrite a COUNT entry
//	put <key> blob <text>            Insert or overwrite a BLOB entry
//	put <key> group                  Insert or overwrite an empty GROUP entry
//	get <key>                        Retrieve and print an entry
//	del <key>                        Delete an entry
//	incr <key> <delta>               Add delta to a COUNT entry
//	group-add <group-key> <member>   Add member to a GROUP's membership set
//	group-remove <group-key> <member> Remove member from a GROUP
//	group-members <key>              List a GROUP's current members
//	scan                             List every occupied slot
//	len                              Report the number of occupied slots
//	seed <fixture.jsonc>             Load entries from a JSONC fixture file
//	export <file.yaml>               Write a point-in-time snapshot to file
//	help                             Show this help
//	exit / quit / q                  Exit
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 && args[0] == "bench" {
		return runBench(args[1:])
	}

	return runREPL(args)
}

func runREPL(args []string) error {
	fs := flag.NewFlagSet("smctl", flag.ContinueOnError)

	capacity := fs.Uint32P("capacity", "c", 4096, "table capacity, a power of two")
	seed := fs.StringP("seed", "s", "", "JSONC fixture file to seed the table from before entering the REPL")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: smctl [--capacity N] [--seed fixture.jsonc]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	table, err := slotmap.New(*capacity)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	if *seed != "" {
		n, err := seedFromFile(table, *seed)
		if err != nil {
			return fmt.Errorf("seeding from %s: %w", *seed, err)
		}

		fmt.Printf("seeded %d entries from %s\n", n, *seed)
	}

	repl := &REPL{table: table}

	return repl.Run()
}
