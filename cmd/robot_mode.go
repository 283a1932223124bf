package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func hasJSONPreference(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "--json" || strings.HasPrefix(arg, "--json=")
	})
}

func hasHelpRequest(args []string) bool {
	return slices.Contains(args, "-h") || slices.Contains(args, "--help")
}

// shouldAutoJSON reports whether output should switch to JSON because
// stdout is not a terminal. Help and shell completion stay text.
func shouldAutoJSON(args []string, stdoutIsTTY bool) bool {
	if stdoutIsTTY || len(args) == 0 || hasJSONPreference(args) || hasHelpRequest(args) {
		return false
	}
	cmd := firstCommand(args)
	return cmd != "completion" && cmd != "help"
}

// withJSONFlag adds --json ahead of any "--" so it is still parsed as a flag.
func withJSONFlag(args []string) []string {
	at := slices.Index(args, "--")
	if at < 0 {
		at = len(args)
	}
	return slices.Insert(slices.Clone(args), at, "--json")
}

// firstCommand returns the first positional argument, skipping flag values.
func firstCommand(args []string) string {
	for i := 0; i < len(args); i++ {
		switch tok := args[i]; {
		case tok == "--":
			return ""
		case !strings.HasPrefix(tok, "-"):
			return tok
		case takesValue(tok):
			i++
		}
	}
	return ""
}

type quickStartJSON struct {
	Name     string   `json:"name"`
	Usage    string   `json:"usage"`
	Examples []string `json:"examples"`
}

var quickStart = quickStartJSON{
	Name:  "bonuscli",
	Usage: "bonuscli [flags] | [offers|parse|import|match|categorize|categories|tui|serve] [flags]",
	Examples: []string{
		"bonuscli import --file bonus.json --user alice",
		"bonuscli offers --category zuivel --limit 10",
		`bonuscli match "halfvolle melk" pindakaas`,
	},
}

func printQuickStart(w io.Writer, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(quickStart)
	}
	_, err := fmt.Fprintf(w, "%s\nusage: %s\nexamples:\n  %s\nflags: %s\n",
		quickStart.Name,
		quickStart.Usage,
		strings.Join(quickStart.Examples, "\n  "),
		"--user --db --driver --feed --json --category --query --week --sort --limit --deals",
	)
	return err
}
