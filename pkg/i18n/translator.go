package i18n

import (
	"sort"
	"time"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
)

const (
	English = "en"
	Turkish = "tr"
)

// Translator renders labels and dates in one language. It's built once from
// configuration and passed to whatever presents results; nothing in the
// lending engine reads it.
type Translator struct {
	lang  string
	trans ut.Translator
}

// New returns a Translator for lang ("en" or "tr").
func New(lang string) (*Translator, error) {
	uni := ut.New(en.New(), en.New(), tr.New())
	trans, found := uni.GetTranslator(lang)
	if !found || trans.Locale() != lang {
		return nil, errors.Errorf("unsupported language %q", lang)
	}

	table, ok := labels[lang]
	if !ok {
		return nil, errors.Errorf("no labels for language %q", lang)
	}
	for key, text := range table {
		if err := trans.Add(key, text, false); err != nil {
			return nil, errors.Wrapf(err, "failed to add label %q", key)
		}
	}

	return &Translator{lang: lang, trans: trans}, nil
}

func (t *Translator) Language() string {
	return t.lang
}

// T returns the label for key with params substituted for {0}, {1}, and so
// on. Unknown keys are returned as they are.
func (t *Translator) T(key string, params ...string) string {
	s, err := t.trans.T(key, params...)
	if err != nil {
		return key
	}
	return s
}

// Date formats a due date in the medium style of the language, in the
// location of tm.
func (t *Translator) Date(tm time.Time) string {
	return t.trans.FmtDateMedium(tm)
}

// Error returns a localized message for an engine error. Each error kind gets
// its own message so the reader can tell them apart.
func (t *Translator) Error(err error) string {
	for _, code := range []string{
		errcodes.CodeValidation,
		errcodes.CodeDuplicate,
		errcodes.CodeUnavailable,
		errcodes.CodeNotFound,
		errcodes.CodeStorage,
	} {
		if errcodes.HasCode(err, code) {
			return t.T("error_"+code, err.Error())
		}
	}
	return t.T("error_unknown", err.Error())
}

// Keys returns every label key known for the language, sorted.
func (t *Translator) Keys() []string {
	keys := make([]string, 0, len(labels[t.lang]))
	for key := range labels[t.lang] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
