package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalStringOrObject(t *testing.T) {
	var plain Text
	require.NoError(t, json.Unmarshal([]byte(`"Манікюр"`), &plain))
	assert.Equal(t, Text{"ua": "Манікюр"}, plain)

	var obj Text
	require.NoError(t, json.Unmarshal([]byte(`{"en":"Manicure","pl":"Manicure PL"}`), &obj))
	assert.Equal(t, "Manicure PL", obj.Get("pl"))

	var bad Text
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestText_GetFallback(t *testing.T) {
	tests := []struct {
		name string
		text Text
		lang string
		want string
	}{
		{"exact", Text{"ua": "А", "en": "A"}, "en", "A"},
		{"falls back to ua", Text{"ua": "А", "en": "A"}, "ru", "А"},
		{"falls back to en", Text{"en": "A", "pl": "P"}, "ru", "A"},
		{"first sorted key", Text{"pl": "P", "de": "D"}, "ru", "D"},
		{"blank values skipped", Text{"ua": "  ", "en": "A"}, "ua", "A"},
		{"empty", Text{}, "ua", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.text.Get(tt.lang))
		})
	}
}

func TestLang(t *testing.T) {
	assert.Equal(t, "en", Lang("en-US,en;q=0.9"))
	assert.Equal(t, "ua", Lang("uk-UA"))
	assert.Equal(t, "pl", Lang("PL"))
	assert.Equal(t, "ua", Lang("de"))
	assert.Equal(t, "ua", Lang(""))
}
