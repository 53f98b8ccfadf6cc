package module

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Translator renders module strings from a language pack.
type Translator struct {
	pack map[string]string
}

// NewTranslator returns a Translator over pack; a nil pack uses originals.
func NewTranslator(pack map[string]string) Translator {
	return Translator{pack: pack}
}

// Translate returns the pack string for key, or original when the pack has
// none, with each %% replaced by the next param from left to right.
func (t Translator) Translate(original, key string, params ...string) string {
	s := original
	if v, ok := t.pack[key]; ok {
		s = v
	}
	for _, p := range params {
		s = strings.Replace(s, "%%", p, 1)
	}
	return s
}

// LoadLanguagePack reads a YAML mapping of key to translated string.
func LoadLanguagePack(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading language pack %s: %w", path, err)
	}
	pack := make(map[string]string)
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing language pack %s: %w", path, err)
	}
	return pack, nil
}
