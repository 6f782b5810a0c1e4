package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/ai-code-helper/client/pkg/sse"
)

// DefaultEndpoint is the chat stream path on the backend.
const DefaultEndpoint = "/api/ai/chat"

var (
	// ErrStreamClosed reports that the server ended the stream. The event
	// stream has no end-of-answer marker, so this is also how a finished
	// answer arrives.
	ErrStreamClosed = errors.New("chat stream closed by server")
	// ErrIdleTimeout reports that no bytes arrived within the idle timeout.
	ErrIdleTimeout = errors.New("chat stream idle timeout")
	// ErrTurnConsumed is yielded when a Chunks sequence is ranged twice.
	ErrTurnConsumed = errors.New("chat turn already consumed")

	errClosedByCaller = errors.New("chat stream closed by caller")
)

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("chat endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client opens chat turns against the streaming endpoint.
type Client struct {
	baseURL     *url.URL
	endpoint    string
	httpClient  *http.Client
	logger      *slog.Logger
	idleTimeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The client must not set a total
// request timeout: streams stay open for the whole answer.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithLogger sets the logger for stream diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIdleTimeout ends a turn with ErrIdleTimeout when the server sends
// nothing for d. Zero disables the timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// NewClient returns a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the stream address for one turn. The message is percent-encoded
// with spaces as %20.
func (c *Client) URL(memoryID int, message string) string {
	u := c.baseURL.JoinPath(c.endpoint)
	u.RawQuery = "memoryId=" + strconv.Itoa(memoryID) + "&message=" + encodeQueryComponent(message)
	return u.String()
}

func encodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// conn is one open HTTP response being parsed as an event stream.
type conn struct {
	ctx       context.Context
	cancel    context.CancelCauseFunc
	body      io.ReadCloser
	reader    *sse.Reader
	idle      *time.Timer
	requestID string
}

func (c *Client) connect(parent context.Context, memoryID int, message string) (*conn, error) {
	ctx, cancel := context.WithCancelCause(parent)
	cn := &conn{ctx: ctx, cancel: cancel, requestID: uuid.NewString()}
	if c.idleTimeout > 0 {
		cn.idle = time.AfterFunc(c.idleTimeout, func() { cancel(ErrIdleTimeout) })
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(memoryID, message), nil)
	if err != nil {
		cn.close()
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-Id", cn.requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = cn.cause(fmt.Errorf("open chat stream: %w", err))
		cn.close()
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		cn.close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "text/event-stream" && mediaType != "text/plain" {
		c.logger.Warn("[chat] unexpected stream content type", "contentType", resp.Header.Get("Content-Type"), "requestId", cn.requestID)
	}

	var body io.Reader = resp.Body
	if cn.idle != nil {
		cn.idle.Reset(c.idleTimeout)
		body = &idleReader{r: resp.Body, timer: cn.idle, timeout: c.idleTimeout}
	}
	cn.body = resp.Body
	cn.reader = sse.NewReader(body)
	return cn, nil
}

// next returns the next event or the error that ended the stream.
func (cn *conn) next() (sse.Event, error) {
	ev, err := cn.reader.Next()
	if err == nil {
		return ev, nil
	}
	if errors.Is(err, io.EOF) && cn.ctx.Err() == nil {
		return sse.Event{}, ErrStreamClosed
	}
	return sse.Event{}, cn.cause(fmt.Errorf("read chat stream: %w", err))
}

// cause prefers the reason the context was cancelled over the transport
// error it produced.
func (cn *conn) cause(err error) error {
	if cause := context.Cause(cn.ctx); cause != nil {
		return cause
	}
	return err
}

func (cn *conn) close() {
	if cn.idle != nil {
		cn.idle.Stop()
	}
	cn.cancel(errClosedByCaller)
	if cn.body != nil {
		cn.body.Close()
	}
}

// idleReader pushes the idle deadline back whenever bytes arrive.
type idleReader struct {
	r       io.Reader
	timer   *time.Timer
	timeout time.Duration
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}
