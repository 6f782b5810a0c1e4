package locale

// Table maps message keys to display text for one locale.
type Table map[string]string

// Default is the locale selected when nothing has been persisted.
const Default = "en"

// Keys rendered by the chat UI. Every seeded table carries all of them.
const (
	KeyTitle       = "title"
	KeySubtitle    = "subtitle"
	KeyPlaceholder = "placeholder"
	KeySend        = "send"
	KeyThinking    = "thinking"
	KeyError       = "error"
	KeyWelcome     = "welcome"
	KeyLanguage    = "language"
)

// Seed returns the built-in string tables keyed by locale code.
func Seed() map[string]Table {
	return map[string]Table{
		"en": {
			KeyTitle:       "AI Code Helper",
			KeySubtitle:    "Your Programming Learning & Interview Assistant",
			KeyPlaceholder: "Ask me anything about programming...",
			KeySend:        "Send",
			KeyThinking:    "AI is thinking...",
			KeyError:       "Error occurred, please try again",
			KeyWelcome:     "Hello! I'm your AI programming assistant. Feel free to ask me any questions about programming learning or job interviews!",
			KeyLanguage:    "Language",
		},
		"zh": {
			KeyTitle:       "AI 编程小助手",
			KeySubtitle:    "编程学习与求职面试助手",
			KeyPlaceholder: "向我提问编程相关的任何问题...",
			KeySend:        "发送",
			KeyThinking:    "AI 正在思考...",
			KeyError:       "发生错误，请重试",
			KeyWelcome:     "你好！我是你的 AI 编程助手。请随时向我提问编程学习或求职面试相关的问题！",
			KeyLanguage:    "语言",
		},
	}
}

// Clone returns a copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Merge overlays extra onto base and returns the result. Neither input is
// modified.
func Merge(base, extra map[string]Table) map[string]Table {
	out := make(map[string]Table, len(base)+len(extra))
	for code, table := range base {
		out[code] = table.Clone()
	}
	for code, table := range extra {
		dst, ok := out[code]
		if !ok {
			dst = make(Table, len(table))
			out[code] = dst
		}
		for k, v := range table {
			dst[k] = v
		}
	}
	return out
}
