package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/ai-code-helper/client/internal/model/locale"
)

var catalogFormats = map[string]goi18n.UnmarshalFunc{
	"toml": toml.Unmarshal,
	"yaml": yaml.Unmarshal,
	"yml":  yaml.Unmarshal,
	"json": json.Unmarshal,
}

// LoadTables reads every message catalog in dir. File names follow the
// go-i18n convention, "messages.zh.toml" or "zh.yaml"; the locale segment
// becomes the table code. Files with other extensions are skipped.
func LoadTables(fsys fs.FS, dir string) (map[string]locale.Table, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locale dir %s: %w", dir, err)
	}

	bundle := goi18n.NewBundle(language.English)
	for format, fn := range catalogFormats {
		bundle.RegisterUnmarshalFunc(format, fn)
	}

	tables := make(map[string]locale.Table)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.TrimPrefix(path.Ext(name), ".")
		if _, ok := catalogFormats[ext]; !ok {
			continue
		}

		filePath := path.Join(dir, name)
		buf, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filePath, err)
		}

		mf, err := bundle.ParseMessageFileBytes(buf, filePath)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}

		code := localeFromFileName(name)
		table, ok := tables[code]
		if !ok {
			table = make(locale.Table, len(mf.Messages))
			tables[code] = table
		}
		for _, msg := range mf.Messages {
			table[msg.ID] = msg.Other
		}
	}
	return tables, nil
}

// localeFromFileName returns the segment before the extension, keeping the
// code exactly as the file names it ("zh", "zh-CN").
func localeFromFileName(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}
