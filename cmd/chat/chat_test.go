package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/zhouzirui/ai-code-helper/client/internal/handler"
	"github.com/zhouzirui/ai-code-helper/client/internal/handler/stream"
)

func newMockBackend(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(handler.NewRouter(stream.New(stream.WithLogger(logger))))
	t.Cleanup(srv.Close)
	return srv
}

// setupEnv points the CLI at baseURL with state kept under a temp dir.
func setupEnv(t *testing.T, baseURL string) string {
	t.Helper()
	statePath := filepath.Join(t.TempDir(), "state.json")
	t.Setenv("CHAT_BASE_URL", baseURL)
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", statePath)
	t.Setenv("LOCALE_DEFAULT", "")
	t.Setenv("LOCALE_DIR", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("NO_COLOR", "1")
	return statePath
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCmdFlags(t *testing.T) {
	cmd := newRootCmd(nil, io.Discard, io.Discard)
	if cmd.Use != "chat" {
		t.Fatalf("unexpected use: %s", cmd.Use)
	}
	for _, name := range []string{"base-url", "memory-id", "locale-dir", "debug"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("missing --%s flag", name)
		}
	}
	for _, name := range []string{"send", "locale", "id"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("missing %s subcommand", name)
		}
	}
}

func TestSendStreamsAnswer(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	out, err := execute(t, "", "send", "Hello", "world")
	if err != nil {
		t.Fatalf("send err: %v", err)
	}
	if out != "Hello world\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSendReportsStatusError(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	if _, err := execute(t, "", "send", "something", "evil"); err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestSendUsesMemoryIDFlag(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.Query().Get("memoryId")
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()
	setupEnv(t, "http://127.0.0.1:1")

	if _, err := execute(t, "", "--base-url", srv.URL, "--memory-id", "99", "send", "hi"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if got := <-seen; got != "99" {
		t.Fatalf("unexpected memoryId: %s", got)
	}
}

func TestLocalePersistsAcrossRuns(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	if out, err := execute(t, "", "locale"); err != nil || out != "en\n" {
		t.Fatalf("default locale: %q %v", out, err)
	}
	if out, err := execute(t, "", "locale", "zh"); err != nil || out != "zh\n" {
		t.Fatalf("set locale: %q %v", out, err)
	}
	if out, err := execute(t, "", "locale"); err != nil || out != "zh\n" {
		t.Fatalf("locale not persisted: %q %v", out, err)
	}
}

func TestLocaleRejectsUnknownCode(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	if _, err := execute(t, "", "locale", "fr"); err == nil {
		t.Fatal("expected error for unknown locale")
	}
	if out, _ := execute(t, "", "locale"); out != "en\n" {
		t.Fatalf("unknown locale changed selection: %q", out)
	}
}

func TestIDPrintsChatAndMemoryID(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	out, err := execute(t, "", "id")
	if err != nil {
		t.Fatalf("id err: %v", err)
	}
	if !regexp.MustCompile(`chatId\s+\d+_[0-9a-z]{9}\nmemoryId\s+\d+\n`).MatchString(out) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestREPLStreamsAndSwitchesLocale(t *testing.T) {
	setupEnv(t, newMockBackend(t).URL)

	out, err := execute(t, "what is a goroutine\n/lang zh\n/exit\n")
	if err != nil {
		t.Fatalf("repl err: %v", err)
	}
	for _, want := range []string{"AI Code Helper", "AI is thinking...", "what is a goroutine", "语言: zh"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestREPLShowsLocalizedErrorWhenTurnFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()
	setupEnv(t, srv.URL)

	out, err := execute(t, "hello\n")
	if err != nil {
		t.Fatalf("repl err: %v", err)
	}
	if !strings.Contains(out, "Error occurred, please try again") {
		t.Fatalf("missing localized error:\n%s", out)
	}
}

func TestLoadTablesOverlaysCatalogDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fr.toml"), "title = \"Assistant de code\"\n")

	tables, err := loadTables(dir)
	if err != nil {
		t.Fatalf("loadTables err: %v", err)
	}
	if tables["fr"]["title"] != "Assistant de code" {
		t.Fatalf("catalog not loaded: %v", tables["fr"])
	}
	if tables["en"]["title"] != "AI Code Helper" {
		t.Fatalf("seed tables lost: %v", tables["en"])
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
