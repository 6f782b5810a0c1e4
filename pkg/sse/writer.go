package sse

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SetupHeaders 设置Server-Sent Events响应头
func SetupHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteData 发送一个默认类型的事件，payload 按原样发送
func WriteData(w io.Writer, flusher http.Flusher, payload string) error {
	return WriteEvent(w, flusher, "", payload)
}

// WriteEvent 发送带事件类型的SSE消息。payload 中的换行会拆成多行 data 字段，
// 每行都会带上 "data: " 前缀，以保证行首空白不被客户端吞掉。
func WriteEvent(w io.Writer, flusher http.Flusher, event, payload string) error {
	var b strings.Builder
	if event != "" {
		if strings.ContainsAny(event, "\r\n") {
			return fmt.Errorf("invalid sse event name %q", event)
		}
		b.WriteString("event: ")
		b.WriteString(event)
		b.WriteByte('\n')
	}

	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	payload = strings.ReplaceAll(payload, "\r", "\n")
	for _, line := range strings.Split(payload, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write sse event: %w", err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// WriteComment 发送注释行，常用作心跳
func WriteComment(w io.Writer, flusher http.Flusher, comment string) error {
	comment = strings.NewReplacer("\r", " ", "\n", " ").Replace(comment)
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return fmt.Errorf("write sse comment: %w", err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
