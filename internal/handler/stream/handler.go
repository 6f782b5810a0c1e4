package stream

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/ai-code-helper/client/pkg/sse"
	"github.com/zhouzirui/ai-code-helper/client/pkg/utils"
)

// Handler serves the development chat endpoint: it validates the turn and
// streams the message back as SSE chunks, then closes the stream.
type Handler struct {
	logger     *slog.Logger
	chunkDelay time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithChunkDelay pauses between chunks so clients can watch the stream fill.
func WithChunkDelay(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.chunkDelay = d
		}
	}
}

// New creates a new stream handler
func New(opts ...Option) *Handler {
	h := &Handler{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册聊天流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ai/chat", h.HandleChat)
}

// HandleChat answers GET /api/ai/chat?memoryId=<int>&message=<text>.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	memoryID, err := strconv.Atoi(query.Get("memoryId"))
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "memoryId query parameter must be an integer")
		return
	}
	message := query.Get("message")
	if message == "" {
		utils.RespondError(w, r, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if err := CheckInput(message); err != nil {
		var sensitive *SensitiveInputError
		if errors.As(err, &sensitive) {
			h.logger.Info("[stream] rejected input", "word", sensitive.Word, "memoryId", memoryID)
		}
		utils.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sse.SetupHeaders(w)
	w.WriteHeader(http.StatusOK)

	// RequestID 中间件会沿用客户端传入的 X-Request-Id
	log := h.logger.With("memoryId", memoryID, "requestId", middleware.GetReqID(r.Context()))

	ctx := r.Context()
	chunks := Chunk(message)
	for i, chunk := range chunks {
		if i > 0 && h.chunkDelay > 0 {
			timer := time.NewTimer(h.chunkDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Debug("[stream] client went away", "sent", i)
				return
			case <-timer.C:
			}
		}
		if err := sse.WriteData(w, flusher, chunk); err != nil {
			log.Warn("[stream] write failed", "error", err, "sent", i)
			return
		}
	}

	log.Debug("[stream] completed response", "chunks", len(chunks))
}

var wordOrSpace = regexp.MustCompile(`\s+|\S+`)

// Chunk splits text into alternating word and whitespace runs. Joining the
// result gives back the input.
func Chunk(text string) []string {
	return wordOrSpace.FindAllString(text, -1)
}
