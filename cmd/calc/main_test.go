package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCalc(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseCLIFlagsDefaults(t *testing.T) {
	var stderr bytes.Buffer
	config, err := parseCLIFlags(nil, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.logLevel)
	assert.Equal(t, "", config.logFile)
	assert.False(t, config.showChart)
	assert.NoError(t, validateCLIConfig(config))
}

func TestValidateCLIConfig(t *testing.T) {
	assert.Error(t, validateCLIConfig(&CLIConfig{logLevel: "chatty"}))
	assert.NoError(t, validateCLIConfig(&CLIConfig{logLevel: "DEBUG"}))
}

func TestRunSession(t *testing.T) {
	code, out, errOut := runCalc(t, "1\n2\n3\ny\n8\n")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Result: 5.00")
	assert.Contains(t, out, "Previous result: 5.00")
	assert.Contains(t, out, "Exiting... Goodbye!")
	assert.Empty(t, errOut, "nothing logged at the default level")
}

func TestRunEndOfInput(t *testing.T) {
	code, out, _ := runCalc(t, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Select option: ")
}

func TestRunBadFlags(t *testing.T) {
	code, out, errOut := runCalc(t, "8\n", "-log-level", "loud")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "invalid log level")

	code, _, _ = runCalc(t, "8\n", "-bogus")
	assert.Equal(t, 1, code)

	code, _, errOut = runCalc(t, "8\n", "extra")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unexpected arguments")
}

func TestRunChart(t *testing.T) {
	code, out, _ := runCalc(t, "", "-chart")

	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, `digraph "calculator" {`))
	assert.Contains(t, out, `"readingSelector" -> "ansOffer" [label="selected [ansEligible]"];`)
	assert.Contains(t, out, `"terminated" [label="terminated" shape=doublecircle];`)
	assert.NotContains(t, out, "Select option")
}

func TestRunLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.log")

	code, _, errOut := runCalc(t, "abc\n8\n", "-log-level", "info", "-log-file", path)
	require.Equal(t, 0, code)
	assert.Empty(t, errOut)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Input rejected")
	assert.Contains(t, string(data), "Calculator session ended")
}
