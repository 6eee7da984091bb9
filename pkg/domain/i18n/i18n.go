// Package i18n resolves user-facing labels from per-language dictionaries
// and exposes the text direction of each language.
package i18n

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Dir is the text direction of a language.
type Dir string

const (
	LTR Dir = "ltr"
	RTL Dir = "rtl"
)

//go:embed locales/*.yml
var locales embed.FS

// FallbackLang is used for unknown languages and missing keys.
const FallbackLang = "en"

// Dictionary is one language's flat key/value table.
type Dictionary struct {
	Lang    string            `yaml:"lang" validate:"required"`
	Name    string            `yaml:"name" validate:"required"`
	Strings map[string]string `yaml:"strings" validate:"min=1"`
}

// DirFor returns rtl for Arabic and Urdu and ltr otherwise.
func DirFor(lang string) Dir {
	base := strings.ToLower(strings.SplitN(lang, "-", 2)[0])
	if base == "ar" || base == "ur" {
		return RTL
	}
	return LTR
}

// Bundle holds every loaded dictionary.
type Bundle struct {
	fallback string
	dicts    map[string]*Dictionary
	order    []string
	matcher  language.Matcher
}

// Default returns the bundle built from the embedded locales.
func Default() *Bundle {
	sub, err := fs.Sub(locales, "locales")
	if err != nil {
		panic(err)
	}
	b, err := Load(sub, FallbackLang)
	if err != nil {
		panic(err)
	}
	return b
}

// Load reads every *.yml dictionary at the root of fsys. The fallback
// language must be among them.
func Load(fsys fs.FS, fallback string) (*Bundle, error) {
	names, err := fs.Glob(fsys, "*.yml")
	if err != nil {
		return nil, errs.New("failed to list dictionaries").Wrap(err)
	}
	sort.Strings(names)

	v := validator.New()
	b := &Bundle{fallback: fallback, dicts: make(map[string]*Dictionary)}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errs.New("failed to read dictionary").Arg("file", name).Wrap(err)
		}
		var d Dictionary
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, errs.New("failed to unmarshal dictionary").Arg("file", name).Wrap(err)
		}
		if err := v.Struct(d); err != nil {
			return nil, errs.Invalid("dictionary validation failed").Arg("file", name).Wrap(err)
		}
		if _, dup := b.dicts[d.Lang]; dup {
			return nil, errs.Invalid("duplicate dictionary").Arg("lang", d.Lang)
		}
		b.dicts[d.Lang] = &d
	}
	if _, ok := b.dicts[fallback]; !ok {
		return nil, errs.Invalid("fallback dictionary missing").Arg("lang", fallback)
	}

	// the matcher falls back to the first tag, so the fallback goes first
	b.order = append(b.order, fallback)
	langs := make([]string, 0, len(b.dicts))
	for lang := range b.dicts {
		if lang != fallback {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	b.order = append(b.order, langs...)

	tags := make([]language.Tag, 0, len(b.order))
	for _, lang := range b.order {
		tags = append(tags, language.Make(lang))
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Languages lists the loaded dictionaries, fallback first.
func (b *Bundle) Languages() []Dictionary {
	out := make([]Dictionary, 0, len(b.order))
	for _, lang := range b.order {
		out = append(out, *b.dicts[lang])
	}
	return out
}

// Has reports whether a dictionary for lang is loaded.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.dicts[lang]
	return ok
}

// Match picks the best loaded language for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	return b.order[idx]
}

// For returns a translator for lang, or for the fallback language when lang
// is not loaded.
func (b *Bundle) For(lang string) Translator {
	d, ok := b.dicts[lang]
	if !ok {
		d = b.dicts[b.fallback]
	}
	return Translator{dict: d, fallback: b.dicts[b.fallback]}
}

// Translator resolves keys for one language.
type Translator struct {
	dict     *Dictionary
	fallback *Dictionary
}

func (t Translator) Lang() string { return t.dict.Lang }

func (t Translator) Dir() Dir { return DirFor(t.dict.Lang) }

// T returns the label for key, the fallback language's label when the key is
// missing, or the key itself.
func (t Translator) T(key string) string {
	if s, ok := t.dict.Strings[key]; ok {
		return s
	}
	if s, ok := t.fallback.Strings[key]; ok {
		return s
	}
	return key
}
