package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hyperjump/ragd/internal/config"
	"github.com/hyperjump/ragd/internal/models"
	"go.uber.org/zap"
)

const testCatalog = `ProductID,ProductName,Description
A,Pool monitor,Db timeout connection pool exhausted database
B,Button kit,UI button misaligned
`

func init() {
	color.NoColor = true
}

// writeWorkspace writes a catalog and a config that points at it and at generatorURL.
func writeWorkspace(t *testing.T, generatorURL string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "catalog.csv"), []byte(testCatalog), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf(`
storage:
  database_path: ./data/embeddings.db
catalog:
  source: ./catalog.csv
embedding:
  dimensions: 128
generation:
  base_url: %q
  model: test-model
`, generatorURL)
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func fakeGenerator(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	jsonFlag, debugFlag = false, false
	askFlags.k, askFlags.template, askFlags.model = 0, "", ""
	retrieveFlags.k = 0
	searchFlags.limit, searchFlags.keyword, searchFlags.semantic = 10, true, true
	searchFlags.fuzzy, searchFlags.minScore = false, 0
	statusServer = "http://localhost:5000"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBootstrap_AnswersAndReusesSnapshots(t *testing.T) {
	gen := fakeGenerator(t, "Check the connection pool.")
	cfg, err := config.Load(writeWorkspace(t, gen.URL))
	if err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if app.Stats.Embedded != 2 || app.Stats.Reused != 0 {
		t.Errorf("first build stats = %+v, want 2 embedded", app.Stats)
	}
	if app.Index.Size() != 2 {
		t.Errorf("index size = %d, want 2", app.Index.Size())
	}
	answer, err := app.Service.Answer(context.Background(), models.AnswerRequest{Query: "database connection timeout", K: 1})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Response != "Check the connection pool." {
		t.Errorf("Response = %q", answer.Response)
	}
	if len(answer.Hits) != 1 || answer.Hits[0].Item.ID != "A" {
		t.Errorf("hits = %+v, want A", answer.Hits)
	}
	if answer.Model != "test-model" {
		t.Errorf("Model = %q", answer.Model)
	}
	results, err := app.Keyword.Search(context.Background(), "button", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].ID != "B" {
		t.Errorf("keyword results = %+v, want B first", results)
	}
	app.Close()

	again, err := Bootstrap(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
	defer again.Close()
	if again.Stats.Reused != 2 || again.Stats.Embedded != 0 {
		t.Errorf("second build stats = %+v, want 2 reused", again.Stats)
	}
}

func TestBootstrap_MissingCatalog(t *testing.T) {
	cfg, err := config.Load(writeWorkspace(t, "http://127.0.0.1:1"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Catalog.Source = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := Bootstrap(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestBootstrap_UnknownTemplate(t *testing.T) {
	cfg, err := config.Load(writeWorkspace(t, "http://127.0.0.1:1"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Prompt.Template = "verbose"
	_, err = Bootstrap(context.Background(), cfg, nil)
	if models.KindOf(err) != models.KindInvalidArgument {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
}

func TestAskCommand_JSON(t *testing.T) {
	gen := fakeGenerator(t, "Restart the pool.")
	path := writeWorkspace(t, gen.URL)

	out, err := runCLI(t, "--config", path, "--json", "ask", "-k", "1", "database", "connection", "timeout")
	if err != nil {
		t.Fatalf("ask: %v\n%s", err, out)
	}
	var answer models.Answer
	if err := json.Unmarshal([]byte(out), &answer); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if answer.Response != "Restart the pool." {
		t.Errorf("Response = %q", answer.Response)
	}
	if len(answer.Hits) != 1 || answer.Hits[0].Item.ID != "A" {
		t.Errorf("hits = %+v", answer.Hits)
	}
}

func TestAskCommand_BackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	path := writeWorkspace(t, srv.URL)

	_, err := runCLI(t, "--config", path, "ask", "database")
	if err == nil {
		t.Fatal("expected error")
	}
	if models.KindOf(err) != models.KindBackendStatus {
		t.Errorf("kind = %s, want %s", models.KindOf(err), models.KindBackendStatus)
	}
}

func TestRetrieveCommand_Text(t *testing.T) {
	path := writeWorkspace(t, "http://127.0.0.1:1")
	out, err := runCLI(t, "--config", path, "retrieve", "-k", "2", "button", "misaligned")
	if err != nil {
		t.Fatalf("retrieve: %v\n%s", err, out)
	}
	if !strings.Contains(out, `Found 2 results for "button misaligned"`) {
		t.Errorf("missing heading:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 2 || !strings.HasSuffix(strings.TrimSpace(lines[1]), "B") {
		t.Errorf("expected B ranked first:\n%s", out)
	}
}

func TestSearchCommand_KeywordOnly(t *testing.T) {
	path := writeWorkspace(t, "http://127.0.0.1:1")
	out, err := runCLI(t, "--config", path, "--json", "search", "--semantic=false", "button")
	if err != nil {
		t.Fatalf("search: %v\n%s", err, out)
	}
	var resp struct {
		Results []struct {
			Rank int `json:"rank"`
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(resp.Results) != 1 || resp.Results[0].Item.ID != "B" || resp.Results[0].Rank != 1 {
		t.Errorf("results = %+v, want only B", resp.Results)
	}
}

func TestIndexCommand(t *testing.T) {
	path := writeWorkspace(t, "http://127.0.0.1:1")
	out, err := runCLI(t, "--config", path, "--json", "index")
	if err != nil {
		t.Fatalf("index: %v\n%s", err, out)
	}
	var stats map[string]int
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if stats["records"] != 2 || stats["embedded"] != 2 || stats["snapshots"] != 2 {
		t.Errorf("stats = %v", stats)
	}

	out, err = runCLI(t, "--config", path, "--json", "index")
	if err != nil {
		t.Fatal(err)
	}
	stats = nil
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatal(err)
	}
	if stats["reused"] != 2 || stats["embedded"] != 0 {
		t.Errorf("second run stats = %v, want 2 reused", stats)
	}
}

func TestStatusCommand_Local(t *testing.T) {
	path := writeWorkspace(t, "http://127.0.0.1:1")
	if _, err := runCLI(t, "--config", path, "index"); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "--config", path, "status", "--server", "")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	for _, want := range []string{"snapshots:", "config_path:", "# config", "generation_model:", "test-model"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusCommand_Server(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"catalog_items":2,"vector_index_type":"memory"}`))
	}))
	defer srv.Close()
	path := writeWorkspace(t, "http://127.0.0.1:1")

	out, err := runCLI(t, "--config", path, "--json", "status", "--server", srv.URL)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status map[string]interface{}
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatal(err)
	}
	if status["catalog_items"] != float64(2) {
		t.Errorf("status = %v", status)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "ragd version ") {
		t.Errorf("out = %q", out)
	}
}

func TestLoadConfig_FallsBackToDefaults(t *testing.T) {
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		t.Skip("an installed config exists at the default path")
	}
	t.Chdir(t.TempDir())
	cfg, path, err := loadConfig(DefaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for defaults", path)
	}
	if cfg.Search.DefaultK != 2 {
		t.Errorf("DefaultK = %d", cfg.Search.DefaultK)
	}
}

func TestLoadConfig_PrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 6001\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	cfg, path, err := loadConfig(DefaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 6001 {
		t.Errorf("Port = %d, want 6001", cfg.Server.Port)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("path = %q", path)
	}
}
