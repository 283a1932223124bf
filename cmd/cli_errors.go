package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Process exit codes. Scripts branch on these, so they never change.
const (
	ExitSuccess     = 0
	ExitNotFound    = 1 // no offers stored, or none match the filters
	ExitInvalidArgs = 2
	ExitUpstream    = 3 // the feed or the offer store failed
	ExitInternal    = 4
)

const (
	codeInvalidArgs = "INVALID_ARGS"
	codeNotFound    = "NOT_FOUND"
	codeUpstream    = "UPSTREAM_ERROR"
	codeInternal    = "INTERNAL_ERROR"
)

var exitCodes = map[string]int{
	codeInvalidArgs: ExitInvalidArgs,
	codeNotFound:    ExitNotFound,
	codeUpstream:    ExitUpstream,
	codeInternal:    ExitInternal,
}

// cliError is an error with a stable machine-readable code and hints for
// the next command to try.
type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func newCLIError(code, message string, suggestions ...string) *cliError {
	return &cliError{
		Code:        code,
		Message:     message,
		Suggestions: suggestions,
		ExitCode:    exitCodes[code],
	}
}

func invalidArgsError(message string, suggestions ...string) error {
	return newCLIError(codeInvalidArgs, message, suggestions...)
}

func notFoundError(message string, suggestions ...string) error {
	return newCLIError(codeNotFound, message, suggestions...)
}

func upstreamError(action string, err error) error {
	return newCLIError(codeUpstream, fmt.Sprintf("%s: %v", action, err), "Retry in a moment.")
}

// errorRule classifies an untyped error, usually one from cobra or pflag,
// by substrings of its message.
type errorRule struct {
	code    string
	needles []string
	hints   func(msg string) []string
}

func staticHints(hints ...string) func(string) []string {
	return func(string) []string { return hints }
}

// errorRules are tried in order; the first rule with a matching needle wins.
var errorRules = []errorRule{
	{codeInvalidArgs, []string{"unknown command"}, unknownCommandHints},
	{codeInvalidArgs, []string{"unknown flag", "unknown shorthand flag"}, unknownFlagHints},
	{
		codeInvalidArgs,
		[]string{
			"requires an argument for flag", "flag needs an argument", "required flag(s)",
			"requires at least", "accepts 0 arg", "invalid argument",
		},
		staticHints("bonuscli --help", `bonuscli match "halfvolle melk"`),
	},
	{codeNotFound, []string{"no bonus offers", "no offers match"}, staticHints()},
	{
		codeUpstream,
		[]string{
			"unexpected status", "executing request", "decoding feed",
			"loading feed", "saving offers", "loading offers",
		},
		staticHints("Retry in a moment."),
	},
}

func unknownCommandHints(msg string) []string {
	hints := []string{"bonuscli offers --user alice", `bonuscli match "halfvolle melk"`}
	if bad := extractUnknownValue(msg, "unknown command"); bad != "" {
		if cmd, ok := closestMatch(strings.ToLower(bad), knownCommands, maxTypoDistance); ok {
			hints = append([]string{fmt.Sprintf("Did you mean `%s`?", cmd)}, hints...)
		}
	}
	return hints
}

func unknownFlagHints(msg string) []string {
	hints := []string{"bonuscli offers --category zuivel", "bonuscli import --file bonus.json"}
	if bad := extractUnknownValue(msg, "unknown flag"); bad != "" {
		if flag, ok := resolveFlagName(strings.TrimLeft(bad, "-")); ok {
			hints = append([]string{fmt.Sprintf("Try `--%s`.", flag)}, hints...)
		}
	}
	return hints
}

// classifyCLIError turns any error into a cliError. Typed errors pass
// through unchanged.
func classifyCLIError(err error) *cliError {
	if err == nil {
		return nil
	}
	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}

	msg := strings.TrimSpace(err.Error())
	lower := strings.ToLower(msg)
	for _, rule := range errorRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return newCLIError(rule.code, msg, rule.hints(msg)...)
			}
		}
	}
	return newCLIError(codeInternal, msg, "Run `bonuscli --help` for usage details.")
}

type jsonErrorPayload struct {
	Error jsonErrorBody `json:"error"`
}

type jsonErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	ExitCode    int      `json:"exitCode"`
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	if err == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(jsonErrorPayload{Error: jsonErrorBody(*err)})
}

func formatCLIErrorText(err *cliError) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s", strings.ToLower(err.Code), err.Message)
	if len(err.Suggestions) > 0 {
		b.WriteString("\nsuggestions:")
		for _, s := range err.Suggestions {
			b.WriteString("\n  " + s)
		}
	}
	return b.String()
}
