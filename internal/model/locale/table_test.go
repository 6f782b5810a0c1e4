package locale

import "testing"

func TestSeedTablesCarryEveryKey(t *testing.T) {
	keys := []string{KeyTitle, KeySubtitle, KeyPlaceholder, KeySend, KeyThinking, KeyError, KeyWelcome, KeyLanguage}
	tables := Seed()

	if _, ok := tables[Default]; !ok {
		t.Fatalf("default locale %q missing from seed", Default)
	}

	for code, table := range tables {
		for _, key := range keys {
			if table[key] == "" {
				t.Fatalf("locale %s missing key %s", code, key)
			}
		}
	}
}

func TestMergeOverlaysWithoutMutatingInputs(t *testing.T) {
	base := map[string]Table{"en": {"title": "A", "send": "Send"}}
	extra := map[string]Table{
		"en": {"title": "B"},
		"fr": {"title": "C"},
	}

	merged := Merge(base, extra)

	if merged["en"]["title"] != "B" || merged["en"]["send"] != "Send" {
		t.Fatalf("unexpected en table: %v", merged["en"])
	}
	if merged["fr"]["title"] != "C" {
		t.Fatalf("unexpected fr table: %v", merged["fr"])
	}
	if base["en"]["title"] != "A" {
		t.Fatalf("base mutated: %v", base["en"])
	}

	merged["fr"]["title"] = "changed"
	if extra["fr"]["title"] != "C" {
		t.Fatalf("extra shares storage with result: %v", extra["fr"])
	}
}
