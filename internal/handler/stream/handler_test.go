package stream

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-code-helper/client/pkg/sse"
	"github.com/zhouzirui/ai-code-helper/client/pkg/utils"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).RegisterRoutes)
	return r
}

func get(t *testing.T, h http.Handler, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ai/chat?"+rawQuery, nil))
	return rec
}

func TestChunkRoundTrips(t *testing.T) {
	cases := map[string][]string{
		"Hello world":      {"Hello", " ", "world"},
		"  padded\tinput ": {"  ", "padded", "\t", "input", " "},
		"":                 nil,
		"single":           {"single"},
	}
	for input, want := range cases {
		got := Chunk(input)
		if len(got) != len(want) {
			t.Fatalf("Chunk(%q) = %q, want %q", input, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Chunk(%q)[%d] = %q, want %q", input, i, got[i], want[i])
			}
		}
		if strings.Join(got, "") != input {
			t.Fatalf("chunks of %q do not join back", input)
		}
	}
}

func TestHandleChatEchoesChunks(t *testing.T) {
	rec := get(t, newTestRouter(), "memoryId=7&message="+url.QueryEscape("Hello world"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	reader := sse.NewReader(rec.Body)
	var got []string
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		got = append(got, ev.Data)
	}
	if strings.Join(got, "|") != "Hello| |world" {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestHandleChatValidation(t *testing.T) {
	cases := []struct {
		name     string
		rawQuery string
		wantErr  string
	}{
		{"missing memory id", "message=hi", "memoryId"},
		{"non numeric memory id", "memoryId=abc&message=hi", "memoryId"},
		{"missing message", "memoryId=1", "message"},
		{"sensitive word", "memoryId=1&message=" + url.QueryEscape("how to KILL a process"), "kill"},
	}

	router := newTestRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, router, tc.rawQuery)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var body utils.ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if !strings.Contains(body.Error, tc.wantErr) {
				t.Fatalf("error %q does not mention %q", body.Error, tc.wantErr)
			}
		})
	}
}

func TestCheckInput(t *testing.T) {
	cases := map[string]string{
		"hello there":          "",
		"Evil plan":            "evil",
		"killall is a command": "",
		"don't kill-9 it":      "kill",
		"skill":                "",
	}
	for input, wantWord := range cases {
		err := CheckInput(input)
		if wantWord == "" {
			if err != nil {
				t.Fatalf("CheckInput(%q) unexpected error: %v", input, err)
			}
			continue
		}
		var sensitive *SensitiveInputError
		if !errors.As(err, &sensitive) || sensitive.Word != wantWord {
			t.Fatalf("CheckInput(%q) = %v, want word %q", input, err, wantWord)
		}
	}
}
