package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// REPL is the interactive command loop driving a single table for the
// lifetime of the process. There is no persistence between runs: a fresh
// smctl invocation always starts from an empty (or freshly seeded) table.
type REPL struct {
	table *slotmap.Table
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".smctl_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("smctl - slotmap CLI (capacity=%d)\n", r.table.Capacity())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("smctl> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil

		case "help", "?":
			printHelp()

		case "put":
			r.cmdPut(args)

		case "get":
			r.cmdGet(args)

		case "del", "delete":
			r.cmdDel(args)

		case "incr":
			r.cmdIncr(args)

		case "group-add":
			r.cmdGroupAdd(args)

		case "group-remove":
			r.cmdGroupRemove(args)

		case "group-members":
			r.cmdGroupMembers(args)

		case "scan", "ls", "list":
			r.cmdScan()

		case "len", "count":
			fmt.Printf("occupied: %d / %d\n", r.table.Load(), r.table.Capacity())

		case "seed":
			r.cmdSeed(args)

		case "export":
			r.cmdExport(args)

		case "clear", "cls":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"put", "get", "del", "delete", "incr",
		"group-add", "group-remove", "group-members",
		"scan", "ls", "list", "len", "count",
		"seed", "export", "clear", "cls",
		"help", "exit", "quit", "q",
	}

	var out []string

	lower := strings.ToLower(line)
	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}

	return out
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  put <key> count <n>               Insert or overwrite a COUNT entry")
	fmt.Println("  put <key> blob <text>              Insert or overwrite a BLOB entry")
	fmt.Println("  put <key> group                    Insert or overwrite an empty GROUP entry")
	fmt.Println("  get <key>                          Retrieve and print an entry")
	fmt.Println("  del <key>                          Delete an entry")
	fmt.Println("  incr <key> <delta>                 Add delta to a COUNT entry")
	fmt.Println("  group-add <group-key> <member>     Add member to a GROUP")
	fmt.Println("  group-remove <group-key> <member>  Remove member from a GROUP")
	fmt.Println("  group-members <key>                List a GROUP's current members")
	fmt.Println("  scan                               List every occupied slot")
	fmt.Println("  len                                Report occupancy")
	fmt.Println("  seed <fixture.jsonc>                Load entries from a JSONC fixture")
	fmt.Println("  export <file.yaml>                  Write a point-in-time snapshot")
	fmt.Println("  help                                Show this help")
	fmt.Println("  exit / quit / q                     Exit")
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: put <key> count|blob|group [value]")
		return
	}

	key := []byte(args[0])

	var (
		v   slotmap.Value
		err error
	)

	switch strings.ToLower(args[1]) {
	case "count":
		var n uint64
		if len(args) >= 3 {
			n, err = strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				fmt.Printf("error: invalid count: %v\n", err)
				return
			}
		}

		v = slotmap.NewCount(n)

	case "blob":
		text := ""
		if len(args) >= 3 {
			text = strings.Join(args[2:], " ")
		}

		v, err = slotmap.NewBlob([]byte(text))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}

	case "group":
		v = slotmap.NewGroup()

	default:
		fmt.Printf("unknown kind %q (want count, blob, or group)\n", args[1])
		return
	}

	_, err = r.table.Insert(key, v)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("OK: put %q\n", string(key))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <key>")
		return
	}

	h, ok := r.table.Lookup([]byte(args[0]))
	if !ok {
		fmt.Println("(not found)")
		return
	}

	err := h.Read(func(v *slotmap.Value, key []byte) {
		fmt.Printf("key:  %s\n", string(key))
		fmt.Printf("kind: %s\n", v.Kind())
		printValueBody(v)
	})
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (r *REPL) cmdDel(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: del <key>")
		return
	}

	if r.table.Remove([]byte(args[0])) {
		fmt.Printf("OK: deleted %q\n", args[0])
	} else {
		fmt.Printf("OK: %q did not exist\n", args[0])
	}
}

func (r *REPL) cmdIncr(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: incr <key> <delta>")
		return
	}

	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Printf("error: invalid delta: %v\n", err)
		return
	}

	h, ok := r.table.Lookup([]byte(args[0]))
	if !ok {
		fmt.Println("(not found)")
		return
	}

	var (
		result  uint64
		incrErr error
	)

	err = h.Write(func(v *slotmap.Value, _ []byte) {
		result, incrErr = v.Increment(delta)
	})
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	if incrErr != nil {
		fmt.Printf("error: %v\n", incrErr)
		return
	}

	fmt.Printf("OK: %s = %d\n", args[0], result)
}

func (r *REPL) cmdGroupAdd(args []string)    { r.groupLink(args, true) }
func (r *REPL) cmdGroupRemove(args []string) { r.groupLink(args, false) }

func (r *REPL) groupLink(args []string, add bool) {
	if len(args) < 2 {
		fmt.Println("Usage: group-add|group-remove <group-key> <member-key>")
		return
	}

	g, ok := r.table.Lookup([]byte(args[0]))
	if !ok {
		fmt.Printf("(group %q not found)\n", args[0])
		return
	}

	m, ok := r.table.Lookup([]byte(args[1]))
	if !ok {
		fmt.Printf("(member %q not found)\n", args[1])
		return
	}

	var err error
	if add {
		err = r.table.GroupAdd(g, m)
	} else {
		err = r.table.GroupRemove(g, m)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println("OK")
}

func (r *REPL) cmdGroupMembers(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: group-members <key>")
		return
	}

	h, ok := r.table.Lookup([]byte(args[0]))
	if !ok {
		fmt.Println("(not found)")
		return
	}

	err := h.Read(func(v *slotmap.Value, _ []byte) {
		seq, err := v.Members()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}

		n := 0

		for member := range seq {
			readErr := member.Read(func(_ *slotmap.Value, key []byte) {
				n++
				fmt.Printf("%3d. %s\n", n, string(key))
			})
			if errors.Is(readErr, slotmap.ErrInvalidated) {
				n++
				fmt.Printf("%3d. (invalidated)\n", n)
			}
		}

		if n == 0 {
			fmt.Println("(empty)")
		}
	})
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (r *REPL) cmdScan() {
	n := 0

	r.table.Iterate(func(h *slotmap.Handle) bool {
		_ = h.Read(func(v *slotmap.Value, key []byte) {
			n++
			fmt.Printf("%4d. %-20s %-6s ", n, string(key), v.Kind())
			printValueSummary(v)
		})

		return true
	})

	if n == 0 {
		fmt.Println("(empty)")
	}
}

func printValueBody(v *slotmap.Value) {
	switch v.Kind() {
	case slotmap.KindCount:
		n, _ := v.Count()
		fmt.Printf("value: %d\n", n)

	case slotmap.KindBlob:
		b, _ := v.Blob()
		fmt.Printf("value: %q (%d bytes)\n", string(b), len(b))

	case slotmap.KindGroup:
		seq, _ := v.Members()
		n := 0
		for range seq {
			n++
		}
		fmt.Printf("members: %d\n", n)
	}
}

func printValueSummary(v *slotmap.Value) {
	switch v.Kind() {
	case slotmap.KindCount:
		n, _ := v.Count()
		fmt.Printf("%d\n", n)

	case slotmap.KindBlob:
		b, _ := v.Blob()
		fmt.Printf("%d bytes\n", len(b))

	case slotmap.KindGroup:
		seq, _ := v.Members()
		n := 0
		for range seq {
			n++
		}
		fmt.Printf("%d members\n", n)
	}
}
