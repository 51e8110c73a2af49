// Package i18n resolves localized message strings.
//
// Bundles are embedded YAML maps, one file per language. An optional
// external locale directory can override the embedded set and is
// reloaded live when its files change.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	yaml "go.yaml.in/yaml/v3"

	logx "dexsignal/pkg/logx"
)

//go:embed locales/*.yaml
var localesFS embed.FS

const fallbackLang = "en"

type Translator struct {
	mu      sync.RWMutex
	bundles map[string]map[string]string

	log logx.Logger

	missMu sync.Mutex
	missed map[string]struct{} // lang:key pairs already warned about
}

// New loads the embedded locale bundles.
func New(log logx.Logger) (*Translator, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	t := &Translator{log: log, missed: map[string]struct{}{}}
	bundles, err := loadFS(localesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: embedded locales: %w", err)
	}
	t.bundles = bundles
	return t, nil
}

// Languages returns the loaded language codes.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.bundles))
	for lang := range t.bundles {
		out = append(out, lang)
	}
	return out
}

// T resolves key in lang, falling back to English and finally to an
// empty string. Missing keys are logged once per (lang, key).
func (t *Translator) T(lang, key string) string {
	lang = normalizeLang(lang)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.bundles[lang]; ok {
		if v, ok := b[key]; ok {
			return v
		}
	}
	if lang != fallbackLang {
		if b, ok := t.bundles[fallbackLang]; ok {
			if v, ok := b[key]; ok {
				t.warnMissing(lang, key)
				return v
			}
		}
	}
	t.warnMissing(lang, key)
	return ""
}

// Tf resolves key and substitutes {name} placeholders from params.
func (t *Translator) Tf(lang, key string, params map[string]string) string {
	s := t.T(lang, key)
	for k, v := range params {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func (t *Translator) warnMissing(lang, key string) {
	id := lang + ":" + key
	t.missMu.Lock()
	_, seen := t.missed[id]
	if !seen {
		t.missed[id] = struct{}{}
	}
	t.missMu.Unlock()
	if !seen {
		t.log.Warn("missing translation", logx.String("lang", lang), logx.String("key", key))
	}
}

// LoadDir replaces the bundle set with YAML files from dir. Languages
// absent from dir keep their embedded bundles.
func (t *Translator) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !isLocaleFile(e.Name()) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(b, &m); err != nil {
			return fmt.Errorf("i18n: %s: %w", e.Name(), err)
		}
		lang := langFromFile(e.Name())
		t.mu.Lock()
		t.bundles[lang] = m
		t.mu.Unlock()
		loaded++
	}
	t.log.Info("locales loaded", logx.String("dir", dir), logx.Int("files", loaded))
	return nil
}

// Watch reloads dir whenever a locale file changes, until ctx is done.
// Reload failures are logged and the previous bundles stay in effect.
func (t *Translator) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if !isLocaleFile(filepath.Base(ev.Name)) {
					continue
				}
				if err := t.LoadDir(dir); err != nil {
					t.log.Warn("locale reload failed", logx.String("dir", dir), logx.Err(err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				t.log.Warn("locale watcher error", logx.Err(err))
			}
		}
	}()
	return nil
}

func loadFS(fsys fs.FS, root string) (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}
	bundles := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isLocaleFile(e.Name()) {
			continue
		}
		b, err := fs.ReadFile(fsys, root+"/"+e.Name())
		if err != nil {
			return nil, err
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		bundles[langFromFile(e.Name())] = m
	}
	return bundles, nil
}

func isLocaleFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func langFromFile(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return fallbackLang
	}
	return lang
}
