// Package i18n selects the interface language and looks up localized strings.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/jeandeaual/go-locale"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no supported language is requested.
const DefaultLanguage = "ko"

// ErrUnsupportedLanguage is returned for language codes without a message file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var supported = []string{"ko", "en", "es", "ja", "de", "fr"}

var displayNames = map[string]string{
	"ko": "한국어",
	"en": "English",
	"es": "Español",
	"ja": "日本語",
	"de": "Deutsch",
	"fr": "Français",
}

// Supported lists the supported language codes, default first.
func Supported() []string {
	return append([]string(nil), supported...)
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	for _, candidate := range supported {
		if candidate == code {
			return true
		}
	}
	return false
}

// DisplayName returns the native name of a language. Unknown codes get the default language's name.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return displayNames[DefaultLanguage]
}

// PreferredLanguage returns the first locale whose two-letter prefix is supported.
func PreferredLanguage(locales []string) string {
	for _, tag := range locales {
		if len(tag) < 2 {
			continue
		}
		code := strings.ToLower(tag[:2])
		if IsSupported(code) {
			return code
		}
	}
	return DefaultLanguage
}

// DetectLanguage picks the preferred supported language from the system locales.
func DetectLanguage() string {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("detect locale: %v", err)
		return DefaultLanguage
	}
	return PreferredLanguage(locales)
}

// Translator looks up messages for one language, falling back to the default language.
type Translator struct {
	language  string
	localizer *goi18n.Localizer
}

// New loads every active.<lang>.yaml message file in files and returns a translator for lang.
func New(files fs.FS, lang string) (*Translator, error) {
	if !IsSupported(lang) {
		return nil, fmt.Errorf("new translator %q: %w", lang, ErrUnsupportedLanguage)
	}

	bundle := goi18n.NewBundle(language.Korean)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	names, err := fs.Glob(files, "active.*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list message files: %w", err)
	}
	for _, name := range names {
		data, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read message file %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return nil, fmt.Errorf("parse message file %s: %w", name, err)
		}
	}

	return &Translator{
		language:  lang,
		localizer: goi18n.NewLocalizer(bundle, lang, DefaultLanguage),
	}, nil
}

// Language returns the translator's language code.
func (translator *Translator) Language() string {
	return translator.language
}

// Translate returns the message for key, or key itself when no language defines it.
func (translator *Translator) Translate(key string) string {
	return translator.localize(&goi18n.LocalizeConfig{MessageID: key})
}

// TranslateCount returns the plural form of key for count, with {{.Count}} filled in.
func (translator *Translator) TranslateCount(key string, count int) string {
	return translator.localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (translator *Translator) localize(config *goi18n.LocalizeConfig) string {
	if translator == nil || translator.localizer == nil {
		return config.MessageID
	}
	message, err := translator.localizer.Localize(config)
	if message != "" {
		return message
	}
	if err != nil {
		log.Printf("translate %s: %v", config.MessageID, err)
	}
	return config.MessageID
}
