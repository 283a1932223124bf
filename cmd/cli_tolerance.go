package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// maxTypoDistance bounds how far a misspelled flag or command may be from
// the name it is corrected to.
const maxTypoDistance = 2

type flagSpec struct {
	name          string
	requiresValue bool
}

var knownFlags = indexFlags(
	flagSpec{"config", true},
	flagSpec{"db", true},
	flagSpec{"driver", true},
	flagSpec{"user", true},
	flagSpec{"log-level", true},
	flagSpec{"feed", true},
	flagSpec{"feed-url", true},
	flagSpec{"json", false},
	flagSpec{"category", true},
	flagSpec{"query", true},
	flagSpec{"week", true},
	flagSpec{"sort", true},
	flagSpec{"limit", true},
	flagSpec{"deals", false},
	flagSpec{"file", true},
	flagSpec{"url", true},
	flagSpec{"addr", true},
	flagSpec{"watch", false},
	flagSpec{"help", false},
)

var knownFlagNames = sortedKeys(knownFlags)

var knownCommands = []string{
	"offers", "parse", "import", "match", "categorize", "categories",
	"tui", "serve", "completion", "help",
}

// flagAliases maps Dutch and alternative spellings onto canonical flags.
var flagAliases = map[string]string{
	"gebruiker":  "user",
	"userid":     "user",
	"user-id":    "user",
	"database":   "db",
	"backend":    "driver",
	"categorie":  "category",
	"search":     "query",
	"zoek":       "query",
	"max":        "limit",
	"bonus":      "deals",
	"listen":     "addr",
	"address":    "addr",
	"verbosity":  "log-level",
	"loglevel":   "log-level",
	"input":      "file",
	"source-url": "feed-url",
}

// knownShorthands maps single-character shorthands to whether they take a value.
var knownShorthands = map[byte]bool{
	'u': true, // --user
	'c': true, // --category
	'q': true, // --query
	'w': true, // --week
	'n': true, // --limit
	'f': true, // --file
}

func indexFlags(specs ...flagSpec) map[string]flagSpec {
	out := make(map[string]flagSpec, len(specs))
	for _, s := range specs {
		out[s.name] = s
	}
	return out
}

// takesValue reports whether tok is a flag that consumes the next argument.
func takesValue(tok string) bool {
	switch {
	case strings.HasPrefix(tok, "--"):
		name, rest := splitFlag(tok[2:])
		spec, ok := knownFlags[name]
		return ok && spec.requiresValue && rest == ""
	case len(tok) == 2 && tok[0] == '-':
		return knownShorthands[tok[1]]
	}
	return false
}

// argNormalizer rewrites near-miss arguments into what cobra expects:
// `-user`, `user=alice` and `--usr` all become `--user`, and a misspelled
// command is corrected. Every rewrite is reported as a note.
type argNormalizer struct {
	out   []string
	notes []string

	command     string
	nestedTaken bool
}

func normalizeCLIArgs(args []string) ([]string, []string) {
	n := &argNormalizer{out: make([]string, 0, len(args))}
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			n.out = append(n.out, args[i:]...)
			break
		}

		rewritten := n.rewrite(tok)
		n.out = append(n.out, rewritten)
		if i+1 < len(args) && takesValue(rewritten) {
			i++
			n.out = append(n.out, args[i])
		}
	}
	return n.out, n.notes
}

func (n *argNormalizer) rewrite(tok string) string {
	switch {
	case strings.HasPrefix(tok, "--"):
		return n.rewriteFlag(tok, tok[2:], false)
	case strings.HasPrefix(tok, "-"):
		if len(tok) <= 2 {
			return tok
		}
		return n.rewriteFlag(tok, tok[1:], true)
	case strings.Contains(tok, "="):
		if name, rest := splitFlag(tok); resolvable(name) {
			return n.rewriteFlag(tok, name+rest, true)
		}
	}

	if n.acceptsCommand() {
		if cmd, ok := resolveCommand(tok); ok {
			n.takeCommand(cmd)
			return n.note(tok, cmd, "command ")
		}
	}
	if bareFlagRewriteAllowed(n.command) && resolvable(tok) {
		return n.rewriteFlag(tok, tok, true)
	}
	return tok
}

// rewriteFlag canonicalizes body (a flag name with an optional =value).
// Unknown names are passed through for cobra to reject.
func (n *argNormalizer) rewriteFlag(tok, body string, alwaysNote bool) string {
	name, rest := splitFlag(body)
	canonical, ok := resolveFlagName(name)
	if !ok {
		return tok
	}
	next := "--" + canonical + rest
	if next == tok && !alwaysNote {
		return tok
	}
	return n.note(tok, next, "")
}

func (n *argNormalizer) note(from, to, kind string) string {
	if from != to {
		n.notes = append(n.notes, fmt.Sprintf("interpreted %s`%s` as `%s`; use `%s` next time.", kind, from, to, to))
	}
	return to
}

func (n *argNormalizer) acceptsCommand() bool {
	return n.command == "" || (allowsNestedCommandArg(n.command) && !n.nestedTaken)
}

func (n *argNormalizer) takeCommand(cmd string) {
	if n.command == "" {
		n.command = cmd
		return
	}
	n.nestedTaken = true
}

func resolvable(name string) bool {
	_, ok := resolveFlagName(name)
	return ok
}

// bareFlagRewriteAllowed reports whether bare words after command may be
// turned into flags, e.g. `json` -> `--json`. match and categorize take
// product names, which must stay as typed.
func bareFlagRewriteAllowed(command string) bool {
	switch command {
	case "", "offers", "parse", "import", "categories", "tui", "serve":
		return true
	}
	return false
}

// allowsNestedCommandArg reports whether command takes another command
// name as its argument.
func allowsNestedCommandArg(command string) bool {
	return command == "help" || command == "completion"
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	if _, ok := knownFlags[name]; ok {
		return name, true
	}
	return closestMatch(name, knownFlagNames, maxTypoDistance)
}

func resolveCommand(raw string) (string, bool) {
	return closestMatch(strings.ToLower(strings.TrimSpace(raw)), knownCommands, maxTypoDistance)
}

func explainCLIError(err error) string {
	return formatCLIErrorText(classifyCLIError(err))
}

func splitFlag(value string) (string, string) {
	if name, val, ok := strings.Cut(value, "="); ok {
		return name, "=" + val
	}
	return value, ""
}

// extractUnknownValue pulls the offending token out of cobra messages such
// as `unknown command "imprt" for "bonuscli"` or `unknown flag: --usr`.
func extractUnknownValue(msg, marker string) string {
	_, after, ok := strings.Cut(msg, marker)
	if !ok {
		return ""
	}
	after = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(after), ":"))
	for _, quote := range []string{`"`, "`"} {
		if rest, found := strings.CutPrefix(after, quote); found {
			if value, _, closed := strings.Cut(rest, quote); closed {
				return value
			}
		}
	}
	if fields := strings.Fields(after); len(fields) > 0 {
		return strings.Trim(fields[0], "\"`")
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// closestMatch returns the candidate nearest to target, if it is within
// maxDistance edits. Ties go to the earlier candidate.
func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, candidate := range candidates {
		if d := levenshtein(target, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, bestDist <= maxDistance
}

// levenshtein is the rune-wise edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
