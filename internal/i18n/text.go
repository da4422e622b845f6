// Package i18n holds the multilingual text values stored on services and courses.
package i18n

import (
	"encoding/json"
	"sort"
	"strings"
)

const DefaultLang = "ua"

var Supported = []string{"ua", "en", "pl", "ru"}

// Text maps a language code to its translation.
type Text map[string]string

// UnmarshalJSON accepts either a plain string (stored under DefaultLang)
// or an object keyed by language code.
func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text{DefaultLang: s}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*t = Text(m)
	return nil
}

// Get returns the value for lang, falling back to ua, en and then the
// first non-empty value in key order.
func (t Text) Get(lang string) string {
	for _, l := range []string{Lang(lang), DefaultLang, "en"} {
		if v := strings.TrimSpace(t[l]); v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

func (t Text) IsEmpty() bool {
	return t.Get(DefaultLang) == ""
}

// Lang normalises a requested language code. Accept-Language style
// values ("en-US,en;q=0.9") are reduced to their primary tag.
func Lang(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(raw, ",;"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexAny(raw, "-_"); i >= 0 {
		raw = raw[:i]
	}

	switch raw {
	case "uk":
		return "ua"
	}
	for _, s := range Supported {
		if s == raw {
			return s
		}
	}
	return DefaultLang
}
