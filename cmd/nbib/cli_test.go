package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	nbibBinary     string
	nbibBinaryOnce sync.Once
	nbibBinaryErr  error
)

// moduleRoot returns the repository root from this file's location.
func moduleRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate test file")
	}
	return filepath.Dir(filepath.Dir(filepath.Dir(filename)))
}

// getNbibBinary builds the nbib binary once and returns its path.
func getNbibBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping CLI test in short mode")
	}
	root := moduleRoot(t)
	nbibBinaryOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "nbib-test-*")
		if err != nil {
			nbibBinaryErr = err
			return
		}
		nbibBinary = filepath.Join(tmpDir, "nbib")

		cmd := exec.Command("go", "build", "-o", nbibBinary, "./cmd/nbib")
		cmd.Dir = root
		if output, err := cmd.CombinedOutput(); err != nil {
			nbibBinaryErr = errors.New(err.Error() + ": " + string(output))
		}
	})
	if nbibBinaryErr != nil {
		t.Fatalf("failed to build nbib: %v", nbibBinaryErr)
	}
	return nbibBinary
}

// runNbib executes nbib in dir with an isolated global config and returns
// stdout and the exit code.
func runNbib(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getNbibBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "xdg"),
		"NBIB_ROOT=",
		"NBIB_ON_ERROR=",
		"NBIB_FORMAT=",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	default:
		t.Fatalf("running nbib: %v\nstderr: %s", err, stderr.String())
		return "", -1
	}
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(moduleRoot(t), "testdata", "medline", name)
}

func TestCLI_Convert(t *testing.T) {
	out, code := runNbib(t, t.TempDir(), "convert", fixture(t, "pubmed.nbib"))
	if code != ExitSuccess {
		t.Fatalf("convert exit = %d\n%s", code, out)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("convert output is not a JSON array: %v\n%s", err, out)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0]["DOI"] != "10.1016/j.leukres.2019.01.001" {
		t.Errorf("DOI = %v", items[0]["DOI"])
	}
	authors, _ := items[0]["author"].([]any)
	if len(authors) != 2 {
		t.Errorf("authors = %v, want 2 after reduction", items[0]["author"])
	}
}

func TestCLI_ConvertMalformed(t *testing.T) {
	dir := t.TempDir()

	out, code := runNbib(t, dir, "convert", fixture(t, "malformed.nbib"))
	if code != ExitDataError {
		t.Errorf("convert exit = %d, want %d\n%s", code, ExitDataError, out)
	}
	if !strings.Contains(out, `"error"`) {
		t.Errorf("expected JSON error, got %s", out)
	}

	out, code = runNbib(t, dir, "convert", "--keep-going", "--compact", fixture(t, "malformed.nbib"))
	if code != ExitSuccess {
		t.Fatalf("convert --keep-going exit = %d\n%s", code, out)
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestCLI_ConvertBibTeX(t *testing.T) {
	out, code := runNbib(t, t.TempDir(), "convert", "--format", "bibtex", fixture(t, "pubmed.nbib"))
	if code != ExitSuccess {
		t.Fatalf("convert exit = %d\n%s", code, out)
	}
	if strings.Count(out, "@article{") != 2 {
		t.Errorf("expected 2 BibTeX articles:\n%s", out)
	}
}

func TestCLI_LibraryWorkflow(t *testing.T) {
	dir := t.TempDir()

	if out, code := runNbib(t, dir, "import", fixture(t, "pubmed.nbib")); code != ExitConfigError {
		t.Errorf("import outside a library exit = %d, want %d\n%s", code, ExitConfigError, out)
	}

	if out, code := runNbib(t, dir, "init"); code != ExitSuccess {
		t.Fatalf("init exit = %d\n%s", code, out)
	}

	out, code := runNbib(t, dir, "import", fixture(t, "pubmed.nbib"))
	if code != ExitSuccess {
		t.Fatalf("import exit = %d\n%s", code, out)
	}
	var result ImportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}

	// Same export again adds nothing
	out, _ = runNbib(t, dir, "import", fixture(t, "pubmed.nbib"))
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 0 || result.Skipped != 2 {
		t.Errorf("re-import = %+v, want 0 imported 2 skipped", result)
	}

	out, _ = runNbib(t, dir, "search", "ibrutinib")
	var hits []map[string]any
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("search hits = %d, want 1", len(hits))
	}

	out, code = runNbib(t, dir, "get", "32000000")
	if code != ExitSuccess || !strings.Contains(out, "A second record.") {
		t.Errorf("get by PMID exit = %d\n%s", code, out)
	}

	// Without the index, get reads items.jsonl
	if err := os.Remove(filepath.Join(dir, ".nbib", "cache", "items.db")); err != nil {
		t.Fatal(err)
	}
	out, code = runNbib(t, dir, "get", "32000000")
	if code != ExitSuccess || !strings.Contains(out, "A second record.") {
		t.Errorf("get without index exit = %d\n%s", code, out)
	}
	if out, code := runNbib(t, dir, "get", "99999999"); code != ExitError {
		t.Errorf("get unknown without index exit = %d, want %d\n%s", code, ExitError, out)
	}
	if out, code := runNbib(t, dir, "rebuild"); code != ExitSuccess {
		t.Fatalf("rebuild exit = %d\n%s", code, out)
	}

	out, _ = runNbib(t, dir, "export", "--bibtex")
	if strings.Count(out, "@article{") != 2 {
		t.Errorf("export --bibtex:\n%s", out)
	}

	if out, code := runNbib(t, dir, "config", "on-error", "retry"); code != ExitConfigError {
		t.Errorf("config invalid value exit = %d\n%s", code, out)
	}
}
