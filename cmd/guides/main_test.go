package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func project(t *testing.T) (src, out string) {
	t.Helper()
	for _, k := range []string{"GUIDES_SOURCE_DIR", "GUIDES_OUTPUT_DIR", "GUIDES_FORMATS", "GUIDES_ROOT", "GUIDES_TAGS", "GUIDES_CONFIG", "GUIDES_STRICT", "GUIDES_WORKERS", "GUIDES_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	src, out = t.TempDir(), t.TempDir()
	writeFile(t, src, "index.rst", "Home\n====\n\n.. toctree::\n\n   guide\n")
	writeFile(t, src, "guide.rst", "Guide\n=====\n\nBack to :doc:`index`.\n")
	return src, out
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), append([]string{"guides"}, args...))
	return stdout.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestBuild_WritesOutputs(t *testing.T) {
	src, out := project(t)
	stdout, err := run(t, "build", "--source", src, "--out", out, "--format", "html,text", "--no-color")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, p := range []string{"html/index.html", "html/guide.html", "text/guide.txt", "toc.json"} {
		if _, err := os.Stat(filepath.Join(out, p)); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	if !strings.Contains(stdout, "built 2 documents (0 reused)") {
		t.Errorf("unexpected summary: %q", stdout)
	}
	if !strings.Contains(stdout, "0 warnings, 0 errors") {
		t.Errorf("expected clean build, got %q", stdout)
	}
}

func TestBuild_ProjectFile(t *testing.T) {
	src, out := project(t)
	writeFile(t, src, "guides.toml", "formats = [\"rst\"]\n")
	if _, err := run(t, "build", "--source", src, "--out", out); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "rst", "index.rst")); err != nil {
		t.Errorf("expected rst output from project formats: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "html")); !os.IsNotExist(err) {
		t.Errorf("expected no html output, got %v", err)
	}
}

func TestBuild_FlagsOverrideProjectFile(t *testing.T) {
	src, out := project(t)
	writeFile(t, src, "guides.yaml", "formats: [rst]\n")
	if _, err := run(t, "build", "-s", src, "-o", out, "-f", "latex"); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, p := range []string{"latex/index.tex", "latex/_book.tex"} {
		if _, err := os.Stat(filepath.Join(out, p)); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
}

func TestBuild_Diagnostics(t *testing.T) {
	src, out := project(t)
	writeFile(t, src, "broken.rst", "Broken\n======\n\nSee `nowhere`_.\n")

	stdout, err := run(t, "build", "--source", src, "--out", out)
	if err != nil {
		t.Fatalf("expected warnings not to fail the build, got %v", err)
	}
	if !strings.Contains(stdout, `broken.rst:4: warning: undefined label: "nowhere"`) {
		t.Errorf("expected diagnostic line, got %q", stdout)
	}

	_, err = run(t, "build", "--source", src, "--out", out, "--strict")
	if exitCode(err) != 1 {
		t.Errorf("expected exit code 1 in strict mode, got %v", err)
	}
}

func TestBuild_InvalidConfiguration(t *testing.T) {
	src, out := project(t)
	_, err := run(t, "build", "--source", src, "--out", out, "--format", "pdf")
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown output format "pdf"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"html, text", "latex", ""})
	if diff := cmp.Diff([]string{"html", "text", "latex"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
