package i18n

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/zhouzirui/ai-code-helper/client/internal/model/locale"
	"github.com/zhouzirui/ai-code-helper/client/internal/storage"
)

// Service holds the string tables and the current locale selection.
type Service struct {
	store  storage.Store
	logger *slog.Logger
	tables map[string]locale.Table
	bundle *goi18n.Bundle
	tags   map[string]language.Tag

	mu      sync.RWMutex
	current string
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultLocale sets the selection used when nothing valid is persisted.
// Unknown codes are ignored.
func WithDefaultLocale(code string) Option {
	return func(s *Service) {
		if _, ok := s.tables[code]; ok {
			s.current = code
		}
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds the store over tables and restores the persisted
// selection from store when it names a known locale. A nil tables map uses
// the seeded tables.
func NewService(ctx context.Context, store storage.Store, tables map[string]locale.Table, opts ...Option) *Service {
	if tables == nil {
		tables = locale.Seed()
	}

	s := &Service{
		store:  store,
		logger: slog.Default(),
		tables: locale.Merge(tables, nil),
		tags:   make(map[string]language.Tag, len(tables)),
	}
	if _, ok := s.tables[locale.Default]; ok {
		s.current = locale.Default
	} else if codes := s.Locales(); len(codes) > 0 {
		s.current = codes[0]
	}

	for _, opt := range opts {
		opt(s)
	}

	s.buildBundle()
	s.restore(ctx)
	return s
}

func (s *Service) buildBundle() {
	s.bundle = goi18n.NewBundle(language.English)
	for code, table := range s.tables {
		tag, err := language.Parse(code)
		if err != nil {
			s.logger.Warn("[i18n] locale code is not a language tag, templating disabled", "locale", code, "error", err)
			continue
		}
		messages := make([]*goi18n.Message, 0, len(table))
		for key, text := range table {
			messages = append(messages, &goi18n.Message{ID: key, Other: text})
		}
		if err := s.bundle.AddMessages(tag, messages...); err != nil {
			s.logger.Warn("[i18n] failed to register messages", "locale", code, "error", err)
			continue
		}
		s.tags[code] = tag
	}
}

func (s *Service) restore(ctx context.Context) {
	if s.store == nil {
		return
	}

	saved, err := s.store.Get(ctx, storage.KeyLocale)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("[i18n] failed to read persisted locale", "error", err)
		}
		return
	}

	if _, ok := s.tables[saved]; !ok {
		s.logger.Debug("[i18n] ignoring unknown persisted locale", "locale", saved)
		return
	}
	s.current = saved
}

// Lookup returns the text for key in the current locale, or key itself when
// the table has no entry.
func (s *Service) Lookup(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if text, ok := s.tables[s.current][key]; ok {
		return text
	}
	return key
}

// Localize renders key in the current locale with data substituted into
// {{.Field}} placeholders. It never falls back to another locale's text:
// a missing key yields the key itself.
func (s *Service) Localize(key string, data map[string]any) string {
	s.mu.RLock()
	current := s.current
	text, found := s.tables[current][key]
	tag, tagged := s.tags[current]
	s.mu.RUnlock()

	if !found {
		return key
	}
	if !tagged {
		return text
	}

	localizer := goi18n.NewLocalizer(s.bundle, tag.String())
	rendered, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		s.logger.Debug("[i18n] template rendering failed", "locale", current, "key", key, "error", err)
		return text
	}
	return rendered
}

// SetLocale selects code and persists it. Unknown codes are ignored.
func (s *Service) SetLocale(ctx context.Context, code string) {
	if _, ok := s.tables[code]; !ok {
		return
	}

	s.mu.Lock()
	s.current = code
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, storage.KeyLocale, code); err != nil {
		s.logger.Warn("[i18n] failed to persist locale", "locale", code, "error", err)
	}
}

// Locale returns the current selection.
func (s *Service) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Locales returns the known locale codes in sorted order.
func (s *Service) Locales() []string {
	codes := make([]string, 0, len(s.tables))
	for code := range s.tables {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
