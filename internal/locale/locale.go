package locale

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// ErrUnsupported is returned for language codes outside Supported
var ErrUnsupported = errors.New("unsupported language")

// Language is a supported UI language code
type Language string

const (
	Arabic     Language = "ar"
	English    Language = "en"
	French     Language = "fr"
	Urdu       Language = "ur"
	Indonesian Language = "id"
)

// Default is used when nothing valid has been chosen
const Default = Arabic

// Supported lists every UI language; the first entry is the matcher fallback
var Supported = []Language{Arabic, English, French, Urdu, Indonesian}

// Direction is the text direction of a document
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

var matcher = language.NewMatcher(tags())

func tags() []language.Tag {
	out := make([]language.Tag, len(Supported))
	for i, l := range Supported {
		out[i] = language.MustParse(string(l))
	}
	return out
}

// Parse normalises a BCP 47 code ("AR", "ar-EG", "en_US") to a supported language
func Parse(code string) (Language, error) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", ErrUnsupported
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", ErrUnsupported
	}
	base, _ := tag.Base()
	for _, l := range Supported {
		if base.String() == string(l) {
			return l, nil
		}
	}
	return "", ErrUnsupported
}

// ParseOr returns Parse(code) or fallback when code is not supported
func ParseOr(code string, fallback Language) Language {
	if l, err := Parse(code); err == nil {
		return l
	}
	return fallback
}

// Negotiate picks the best supported language for an Accept-Language header
func Negotiate(acceptLanguage string) Language {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Direction reports the text direction for l
func (l Language) Direction() Direction {
	if l == Arabic || l == Urdu {
		return RTL
	}
	return LTR
}

// DirectionApplier receives the document language and direction whenever the
// UI language changes.
type DirectionApplier interface {
	ApplyDirection(lang Language, dir Direction)
}

// Document tracks the language and direction most recently applied. It is
// safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	lang Language
	dir  Direction
}

// NewDocument returns a document initialised to lang
func NewDocument(lang Language) *Document {
	return &Document{lang: lang, dir: lang.Direction()}
}

// ApplyDirection implements DirectionApplier
func (d *Document) ApplyDirection(lang Language, dir Direction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lang = lang
	d.dir = dir
}

// Current returns the applied language and direction
func (d *Document) Current() (Language, Direction) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lang, d.dir
}
