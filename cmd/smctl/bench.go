package main

import (
	"crypto/rand"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)

	capacity := fs.Uint32P("capacity", "c", 1<<16, "table capacity, a power of two")
	count := fs.IntP("count", "n", 100_000, "number of keys to insert and look up")
	keyLen := fs.IntP("key-len", "k", 16, "random key length in bytes")

	fs.Usage = func() {
		fmt.Println("Usage: smctl bench [--capacity N] [--count N] [--key-len N]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	table, err := slotmap.New(*capacity)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	keys := make([][]byte, *count)
	for i := range keys {
		keys[i] = make([]byte, *keyLen)
		if _, err := rand.Read(keys[i]); err != nil {
			return fmt.Errorf("generating random key: %w", err)
		}
	}

	fmt.Printf("benchmarking %d operations against a capacity-%d table...\n", *count, *capacity)

	insertStart := time.Now()

	inserted := 0

	for i, k := range keys {
		if _, err := table.Insert(k, slotmap.NewCount(uint64(i))); err != nil {
			break
		}

		inserted++
	}

	insertElapsed := time.Since(insertStart)

	lookupStart := time.Now()

	hits := 0

	for _, k := range keys[:inserted] {
		if _, ok := table.Lookup(k); ok {
			hits++
		}
	}

	lookupElapsed := time.Since(lookupStart)

	fmt.Printf("\nresults:\n")
	fmt.Printf("  insert: %d ops in %v (%.0f ops/sec)\n",
		inserted, insertElapsed.Round(time.Millisecond), float64(inserted)/insertElapsed.Seconds())
	fmt.Printf("  lookup: %d ops in %v (%.0f ops/sec), %d hits\n",
		inserted, lookupElapsed.Round(time.Millisecond), float64(inserted)/lookupElapsed.Seconds(), hits)

	if inserted < *count {
		fmt.Printf("  note: table reached ErrTableFull after %d of %d requested inserts\n", inserted, *count)
	}

	return nil
}
