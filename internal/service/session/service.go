package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/zhouzirui/ai-code-helper/client/internal/storage"
)

const (
	chatIDSuffixLen = 9
	memoryIDDigits  = 8
	base36          = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateChatID returns "<unix-ms>_<random base36>". Identifiers are
// collision-unlikely, not cryptographically unique.
func GenerateChatID() string {
	return chatIDAt(time.Now())
}

func chatIDAt(now time.Time) string {
	suffix := make([]byte, chatIDSuffixLen)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// Service hands out the memory id that ties chat turns to one server-side
// conversation for the lifetime of a session store.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	pinned bool
	id     int
}

// NewService returns a Service persisting into store, normally a
// storage.Memory scoped to the running process.
func NewService(store storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// MemoryID returns the stored memory id, creating one from the clock on first
// use. Storage failures are logged; the id handed out is then kept in process
// so repeated calls still agree.
func (s *Service) MemoryID(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinned {
		return s.id
	}

	if s.store != nil {
		raw, err := s.store.Get(ctx, storage.KeyMemoryID)
		switch {
		case err == nil:
			if id, convErr := strconv.Atoi(raw); convErr == nil {
				return id
			}
			s.logger.Warn("[session] replacing malformed memory id", "value", raw)
		case !errors.Is(err, storage.ErrNotFound):
			s.logger.Warn("[session] failed to read memory id", "error", err)
		}
	}

	raw := deriveMemoryID(s.now())
	id, _ := strconv.Atoi(raw)

	if s.store == nil {
		s.pin(id)
		return id
	}
	if err := s.store.Set(ctx, storage.KeyMemoryID, raw); err != nil {
		s.logger.Warn("[session] failed to persist memory id", "error", err)
		s.pin(id)
	}
	return id
}

func (s *Service) pin(id int) {
	s.pinned = true
	s.id = id
}

// deriveMemoryID keeps the last eight digits of the millisecond clock.
func deriveMemoryID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > memoryIDDigits {
		ms = ms[len(ms)-memoryIDDigits:]
	}
	return ms
}
