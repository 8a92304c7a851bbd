package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

const DefaultLanguage = "en"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidTheme        = errors.New("theme must be light or dark")
)

// MatchLanguage resolves a user-supplied tag ("fr-CA", "es_419", "DE")
// against the supported base languages. ok is false when nothing matches.
func MatchLanguage(raw string, supported []string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	if err != nil {
		return "", false
	}

	tags := make([]language.Tag, 0, len(supported))
	bases := make([]string, 0, len(supported))
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		bases = append(bases, s)
	}
	if len(tags) == 0 {
		return "", false
	}

	// The matcher falls back to the first supported tag with Low confidence
	// for unrelated languages; only a match on the base language counts.
	_, idx, conf := language.NewMatcher(tags).Match(tag)
	if conf == language.No {
		return "", false
	}
	want, _ := tag.Base()
	got, _ := tags[idx].Base()
	if want != got {
		return "", false
	}
	return bases[idx], true
}

// Preferences stores the language and theme settings.
type Preferences struct {
	base
	supported func() []string
}

// NewPreferences builds the repository. supported returns the languages
// the UI is translated into.
func NewPreferences(st store.Store, log logger.Logger, supported func() []string) *Preferences {
	if supported == nil {
		supported = func() []string { return []string{DefaultLanguage} }
	}
	return &Preferences{base: newBase(st, log), supported: supported}
}

func (p *Preferences) Get(ctx context.Context) (domain.Preferences, error) {
	lang, err := load(ctx, p.base, store.KeyLanguage, languageSchema, func() string { return DefaultLanguage })
	if err != nil {
		return domain.Preferences{Language: DefaultLanguage, Theme: domain.ThemeLight}, err
	}
	if matched, ok := MatchLanguage(lang, p.supported()); ok {
		lang = matched
	} else {
		lang = DefaultLanguage
	}

	theme, err := load(ctx, p.base, store.KeyTheme, themeSchema, func() domain.Theme { return domain.ThemeLight })
	return domain.Preferences{Language: lang, Theme: theme}, err
}

// SetLanguage normalises raw and stores it.
func (p *Preferences) SetLanguage(ctx context.Context, raw string) (string, error) {
	lang, ok := MatchLanguage(raw, p.supported())
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, raw)
	}
	if err := p.store.Set(ctx, store.KeyLanguage, lang); err != nil {
		return "", fmt.Errorf("save language: %w", err)
	}
	return lang, nil
}

func (p *Preferences) SetTheme(ctx context.Context, raw string) (domain.Theme, error) {
	theme := domain.Theme(strings.ToLower(strings.TrimSpace(raw)))
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
	if err := p.store.Set(ctx, store.KeyTheme, theme); err != nil {
		return "", fmt.Errorf("save theme: %w", err)
	}
	return theme, nil
}
