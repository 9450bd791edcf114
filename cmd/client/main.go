package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	serverURL := fs.String("server", "http://localhost:5001", "chat server base URL")
	name := fs.String("name", "", "participant name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("missing required flag -name")
	}

	api := NewAPIClient(*serverURL, *name)
	program := tea.NewProgram(newRootModel(api), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(rootModel); ok && m.state == stateJoining && m.lastErr != "" {
		return fmt.Errorf("join failed: %s", m.lastErr)
	}
	return nil
}
