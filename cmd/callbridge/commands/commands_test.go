package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	verbose = false
	flagConfig = ""

	rootCmd.SetArgs(args)
	err = rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	stdout, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, "callbridge") {
		t.Errorf("expected 'callbridge' in output, got: %s", stdout)
	}
}

func TestServeRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := runCmd(t, "serve"); err == nil {
		t.Error("expected serve to fail without an API key")
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCmd(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}
