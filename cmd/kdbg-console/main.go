// Command kdbg-console is a minimal reference client for the
// file-based rendezvous protocol: a readline REPL that sends commands
// into a running debuggee's command file and prints what comes back on
// its state and output files. It has no knowledge of the target
// language's source - it only understands the four rendezvous files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	shellquote "github.com/kballard/go-shellquote"
	isatty "github.com/mattn/go-isatty"

	"github.com/kdbg/kdbg/dap"
	"github.com/kdbg/kdbg/runtime"
)

func main() {
	cfg := runtime.ConfigFromEnv()
	if len(os.Args) > 1 {
		cfg.BreakpointsPath = os.Args[1]
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg runtime.Config) error {
	client := dap.NewClient(cfg)

	l, err := readline.NewEx(&readline.Config{
		Prompt: "(kdbg) ",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	if isatty.IsTerminal(os.Stdout.Fd()) {
		printBanner()
	}

	var prevCommand string
	for {
		line, err := l.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if prevCommand == "" {
				continue
			}
			line = prevCommand
		} else {
			prevCommand = line
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		cmd, rest := args[0], args[1:]

		if err := dispatch(client, cmd, rest); err != nil {
			fmt.Fprintf(os.Stderr, "command failed: %s\n", err)
		}
	}
}

func dispatch(client *dap.Client, cmd string, args []string) error {
	switch cmd {
	case "continue", "c":
		return sendAndShow(client, "continue")
	case "next", "n":
		return sendAndShow(client, "next")
	case "step", "s":
		return sendAndShow(client, "step")
	case "vars", "v":
		return sendAndShow(client, "vars")
	case "print", "p":
		if len(args) != 1 {
			return errors.New("print requires exactly 1 arg")
		}
		return sendAndShow(client, "print "+args[0])
	case "break", "b":
		return handleBreak(client, args)
	case "breakpoints", "bp":
		return handleBreakpoints(client)
	case "clear":
		return handleClear(client, args)
	case "status":
		return handleStatus(client)
	case "help", "h":
		printHelp()
		return nil
	case "quit", "exit", "q":
		return sendAndShow(client, "quit")
	default:
		return fmt.Errorf("unrecognized command %q, type help for a list", cmd)
	}
}

// sendAndShow writes cmd to the command file and, for commands that
// produce output (vars, print), waits briefly for the debuggee to
// answer on the output file. continue/next/step/quit don't: their
// effect shows up on the next state-file read instead.
func sendAndShow(client *dap.Client, cmd string) error {
	if err := client.WriteCommand(cmd); err != nil {
		return err
	}

	if !strings.HasPrefix(cmd, "vars") && !strings.HasPrefix(cmd, "print ") {
		return printState(client)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		out, err := client.ReadOutput()
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Print(out)
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return errors.New("timed out waiting for debuggee output")
}

func printState(client *dap.Client) error {
	st, err := client.ReadState()
	if err != nil {
		return err
	}
	if st.Running {
		fmt.Println("running")
		return nil
	}
	fmt.Printf("stopped at %s:%d in %s\n", st.File, st.Line, st.Function)
	return nil
}

func handleStatus(client *dap.Client) error {
	return printState(client)
}

func handleBreak(client *dap.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("break requires a file:line argument")
	}
	file, lineStr, ok := strings.Cut(args[0], ":")
	if !ok {
		return errors.New("break argument must be file:line")
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return fmt.Errorf("invalid line number %q", lineStr)
	}

	entries, err := readCurrentBreakpoints(client)
	if err != nil {
		return err
	}
	entries = append(entries, runtime.ParsedBreakpoint{File: file, Line: line, Enabled: true})
	return client.WriteBreakpoints(entries)
}

func handleClear(client *dap.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("clear requires a file:line argument")
	}
	file, lineStr, ok := strings.Cut(args[0], ":")
	if !ok {
		return errors.New("clear argument must be file:line")
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return fmt.Errorf("invalid line number %q", lineStr)
	}

	entries, err := readCurrentBreakpoints(client)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.File == file && e.Line == line {
			continue
		}
		kept = append(kept, e)
	}
	return client.WriteBreakpoints(kept)
}

func handleBreakpoints(client *dap.Client) error {
	entries, err := readCurrentBreakpoints(client)
	if err != nil {
		return err
	}
	for _, e := range entries {
		state := "enabled"
		if !e.Enabled {
			state = "disabled"
		}
		fmt.Printf("%s:%d (%s)\n", e.File, e.Line, state)
	}
	return nil
}

func readCurrentBreakpoints(client *dap.Client) ([]runtime.ParsedBreakpoint, error) {
	data, err := os.ReadFile(client.BreakpointsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return runtime.ParseBreakpointFile(data)
}

func printBanner() {
	fmt.Println("kdbg console - type help for a list of commands")
}

func printHelp() {
	fmt.Println(`Running the program:
    continue, c               run until breakpoint or program termination
    next, n                   step over to next source line
    step, s                   single step through program
    status                    print running/stopped state

Manipulating breakpoints:
    break, b <file:line>      sets a breakpoint
    breakpoints, bp           prints out active breakpoints
    clear <file:line>         deletes breakpoint

Viewing program variables:
    vars, v                   print all variables in scope
    print, p <expr>           print a variable or field path

Other commands:
    help, h                   prints this help message
    quit, exit, q             exits the debuggee`)
}
