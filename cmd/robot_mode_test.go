package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/service"
)

func TestShouldAutoJSON(t *testing.T) {
	assert.True(t, shouldAutoJSON([]string{"offers", "--user", "alice"}, false))
	assert.False(t, shouldAutoJSON([]string{"offers", "--user", "alice", "--json"}, false))
	assert.False(t, shouldAutoJSON([]string{"completion", "zsh"}, false))
	assert.False(t, shouldAutoJSON([]string{"--help"}, false))
	assert.False(t, shouldAutoJSON([]string{"offers", "--user", "alice"}, true))
}

func TestWithJSONFlag(t *testing.T) {
	assert.Equal(t, []string{"offers", "--json"}, withJSONFlag([]string{"offers"}))
	assert.Equal(t,
		[]string{"categorize", "--json", "--", "-kaas"},
		withJSONFlag([]string{"categorize", "--", "-kaas"}),
	)
}

func TestFirstCommand_SkipsFlagValues(t *testing.T) {
	assert.Equal(t, "match", firstCommand([]string{"--user", "alice", "match", "melk"}))
	assert.Equal(t, "import", firstCommand([]string{"-u", "alice", "import"}))
	assert.Equal(t, "", firstCommand([]string{"--json"}))
}

func TestPrintQuickStart_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := printQuickStart(&buf, true)
	require.NoError(t, err)

	var payload quickStartJSON
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	assert.Equal(t, "bonuscli", payload.Name)
	assert.NotEmpty(t, payload.Usage)
	assert.Len(t, payload.Examples, 3)
}

func TestPrintCLIErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	err := printCLIErrorJSON(&buf, classifyCLIError(invalidArgsError("bad flag", "bonuscli --user alice")))
	require.NoError(t, err)

	var payload map[string]any
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	errorObject, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ARGS", errorObject["code"])
	assert.Equal(t, "bad flag", errorObject["message"])
	assert.EqualValues(t, ExitInvalidArgs, errorObject["exitCode"])
}

func TestClassifyCLIError(t *testing.T) {
	tests := []struct {
		err  error
		code string
		exit int
	}{
		{errors.New(`required flag(s) "file" not set`), "INVALID_ARGS", ExitInvalidArgs},
		{errors.New("requires at least 1 arg(s), only received 0"), "INVALID_ARGS", ExitInvalidArgs},
		{errors.New("no bonus offers stored for alice"), "NOT_FOUND", ExitNotFound},
		{errors.New("loading feed: unexpected status 502 from https://x"), "UPSTREAM_ERROR", ExitUpstream},
		{errors.New("boom"), "INTERNAL_ERROR", ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := classifyCLIError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.exit, got.ExitCode)
		})
	}
}

func TestServiceError(t *testing.T) {
	noSource := classifyCLIError(serviceError("auto-import", fmt.Errorf("x: %w", feed.ErrNoSource)))
	assert.Equal(t, ExitInvalidArgs, noSource.ExitCode)

	noUser := classifyCLIError(serviceError("loading offers", service.ErrEmptyUser))
	assert.Equal(t, ExitInvalidArgs, noUser.ExitCode)

	storage := classifyCLIError(serviceError("loading offers", errors.New("disk I/O error")))
	assert.Equal(t, ExitUpstream, storage.ExitCode)
	assert.Contains(t, storage.Message, "loading offers: disk I/O error")
}
