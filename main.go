package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"event-catalog-cli/service"
	"event-catalog-cli/store"
	"event-catalog-cli/tui"
)

const appName = "event-catalog-cli"

var (
	version = "dev"
	commit  = "none"
)

func printUsage(out *os.File) {
	fmt.Fprintf(out, "Usage: %s [--version] [#/event/<id>]\n\n", appName)
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintln(out, "  EVENTOS_DATA        events file path or URL (default data/events.json)")
	fmt.Fprintln(out, "  EVENTOS_SHARE_BASE  web base URL prefixed to shared deep links")
}

func printVersion() {
	fmt.Printf("%s %s", appName, version)
	if commit != "none" && commit != "" {
		fmt.Printf(" (%s)", commit)
	}
	fmt.Println()
}

// handleArgs returns the startup deep-link fragment and whether to run.
func handleArgs(args []string) (string, bool) {
	fragment := ""
	for _, arg := range args {
		switch {
		case arg == "-h" || arg == "--help" || arg == "help":
			printUsage(os.Stdout)
			return "", false
		case arg == "-v" || arg == "--version" || arg == "version":
			printVersion()
			return "", false
		case strings.HasPrefix(arg, "#"):
			fragment = arg
		default:
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", arg)
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}
	return fragment, true
}

func main() {
	fragment, run := handleArgs(os.Args[1:])
	if !run {
		return
	}

	st, err := store.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := tui.Options{
		Repo:      service.NewRepository(os.Getenv("EVENTOS_DATA"), nil),
		Store:     st,
		Fragment:  fragment,
		ShareBase: os.Getenv("EVENTOS_SHARE_BASE"),
	}

	if _, err := tea.NewProgram(tui.New(opts), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
