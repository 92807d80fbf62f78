package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSeeds = `Lisbon:
  - url: https://images.example.org/lisbon/tram.jpg
    title: Tram 28
  - url: https://images.example.org/lisbon/belem.jpg
  - url: https://images.example.org/lisbon/alfama.jpg
`

// setupWorkspace creates a temp working directory with a config, seed file and catalog
func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("UNSPLASH_ACCESS_KEY", "")
	t.Setenv("PLACEIMAGES_SEARCH_ACCESS_KEY", "")

	files := map[string]string{
		"curated.yaml": testSeeds,
		"config.yaml": `curated:
  seeds_path: curated.yaml
output:
  runs_dir: runs
pipeline:
  inter_batch_delay: 0s
`,
		"cities.jsonl": `{"name": "Lisbon", "country": "Portugal"}
{"name": "Qwertown", "country": "Nowhereland"}
{"name": "Faro", "country": "Portugal"}
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchRejectsInvalidBatchSize(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "fetch", "--locations", "cities.jsonl", "--batch-size", "0")
	if err == nil || !strings.Contains(err.Error(), "batch-size") {
		t.Errorf("Expected batch size error, got %v", err)
	}
}

func TestFetchMissingLocations(t *testing.T) {
	setupWorkspace(t)

	if _, err := execute(t, "fetch", "--locations", "missing.jsonl"); err == nil {
		t.Error("Expected error for missing location file")
	}
}

func TestFetchWithoutCredentialUsesFallback(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := execute(t, "fetch", "--locations", "cities.jsonl", "--batch-size", "2", "--csv", "pending.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, out)
	}

	// Lisbon resolves to 3 curated images, the others to 4 placeholders each
	for _, want := range []string{"Total Locations:    3", "Successful:         3", "Total Images:       11", "Every location has imagery."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	runs, _ := filepath.Glob(filepath.Join(dir, "runs", "*.yaml"))
	if len(runs) != 1 {
		t.Fatalf("Expected one run record, got %v", runs)
	}

	pending, err := os.ReadFile(filepath.Join(dir, "pending.csv"))
	if err != nil {
		t.Fatalf("Expected CSV to be written: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(string(pending)), "\n"); lines != 0 {
		t.Errorf("Expected only the CSV header, got:\n%s", pending)
	}

	report, err := execute(t, "report", runs[0], "--format", "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(report, "Source:    cities.jsonl") {
		t.Errorf("Expected report to name the source, got:\n%s", report)
	}
}

func TestFetchNoFallback(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, "fetch", "--locations", "cities.jsonl", "--no-fallback", "--no-archive")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Needs Curation (3)") {
		t.Errorf("Expected every location to need curation, got:\n%s", out)
	}
}

func TestCuratedCommands(t *testing.T) {
	setupWorkspace(t)

	out, err := execute(t, "curated", "list")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "lisbon" {
		t.Errorf("Expected lisbon, got %q", out)
	}

	out, err = execute(t, "curated", "check", "Lisbon")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Lisbon (lisbon): curated") || !strings.Contains(out, "Tram 28") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = execute(t, "curated", "check", "Qwertown")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "generic placeholders") || strings.Count(out, "placehold.co") != 4 {
		t.Errorf("Unexpected output:\n%s", out)
	}
}
