package i18n

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLanguage = "en"

//go:embed locales/*.yaml
var builtin embed.FS

// Translator resolves a message key for the active language.
type Translator interface {
	T(key string) string
	Language() string
}

// Catalog holds messages for every loaded language.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog loads the embedded catalogs and, when dir is not empty, every
// <language>.yaml found in dir on top of them.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	entries, err := builtin.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded locales: %w", err)
	}
	for _, e := range entries {
		data, err := builtin.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded locale %s: %w", e.Name(), err)
		}
		if err := c.Load(languageOf(e.Name()), data); err != nil {
			return nil, err
		}
	}

	if dir == "" {
		return c, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list locales in %s: %w", dir, err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", f, err)
		}
		if err := c.Load(languageOf(f), data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load merges a YAML key/value document into language.
func (c *Catalog) Load(language string, data []byte) error {
	var msgs map[string]string
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("failed to parse %s messages: %w", language, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.messages[language] == nil {
		c.messages[language] = make(map[string]string, len(msgs))
	}
	for k, v := range msgs {
		c.messages[language][k] = v
	}
	return nil
}

func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	langs := make([]string, 0, len(c.messages))
	for l := range c.messages {
		langs = append(langs, l)
	}
	return langs
}

// For returns a translator bound to language. Unknown keys fall back to the
// default language, then to the key itself.
func (c *Catalog) For(language string) Translator {
	if language == "" {
		language = DefaultLanguage
	}
	return &translator{catalog: c, language: language}
}

func (c *Catalog) lookup(language, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msg, ok := c.messages[language][key]
	return msg, ok
}

type translator struct {
	catalog  *Catalog
	language string
}

func (t *translator) Language() string {
	return t.language
}

func (t *translator) T(key string) string {
	if msg, ok := t.catalog.lookup(t.language, key); ok {
		return msg
	}
	if msg, ok := t.catalog.lookup(DefaultLanguage, key); ok {
		return msg
	}
	return key
}

// Interpolate replaces {{NAME}} placeholders in msg.
func Interpolate(msg string, vars map[string]string) string {
	for k, v := range vars {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

func languageOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
