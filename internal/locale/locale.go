// Package locale renders conversion results as sentences in Japanese,
// Traditional Chinese or English.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs.
const (
	MsgEraFromYear       = "EraFromYear"
	MsgEraNotFound       = "EraNotFound"
	MsgYearFromEra       = "YearFromEra"
	MsgEraOutOfRange     = "EraOutOfRange"
	MsgMinguoFromYear    = "MinguoFromYear"
	MsgMinguoNotFound    = "MinguoNotFound"
	MsgYearFromMinguo    = "YearFromMinguo"
	MsgMinguoOutOfRange  = "MinguoOutOfRange"
	MsgInvalidYear       = "InvalidYear"
	MsgInvalidEraYear    = "InvalidEraYear"
	MsgInvalidMinguoYear = "InvalidMinguoYear"
	MsgInvalidDate       = "InvalidDate"
	MsgDiffSummary       = "DiffSummary"
	MsgDiffSwapped       = "DiffSwapped"
	MsgNextHoliday       = "NextHoliday"
	MsgNextHolidayDetail = "NextHolidayDetail"
	MsgUnknownEra        = "UnknownEra"
	MsgTooManyRequests   = "TooManyRequests"
)

// NoAge is shown in place of an age for years that have not happened yet.
const NoAge = "—"

// Supported returns the language codes with a message file, in a fixed order.
func Supported() []string {
	return []string{"ja", "zh-TW", "en"}
}

// Translator localizes messages. It is safe for concurrent use once built.
type Translator struct {
	bundle      *i18n.Bundle
	matcher     language.Matcher
	tags        []language.Tag // matcher order; tags[0] is the default
	localizers  map[string]*i18n.Localizer
	defaultLang string
	logger      *slog.Logger
}

// New loads the embedded message files. defaultLang must be one of Supported
// and is used when a request names no language we know.
func New(defaultLang string, logger *slog.Logger) (*Translator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	defTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse default language %q: %w", defaultLang, err)
	}

	bundle := i18n.NewBundle(defTag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{
		bundle:      bundle,
		localizers:  make(map[string]*i18n.Localizer),
		defaultLang: defaultLang,
		logger:      logger,
	}

	found := false
	t.tags = append(t.tags, defTag)
	for _, code := range Supported() {
		path := "locales/active." + code + ".json"
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		t.localizers[code] = i18n.NewLocalizer(bundle, code)

		if code == defaultLang {
			found = true
			continue
		}
		t.tags = append(t.tags, language.MustParse(code))
	}
	if !found {
		return nil, fmt.Errorf("unsupported default language %q", defaultLang)
	}

	t.matcher = language.NewMatcher(t.tags)
	logger.Debug("locales loaded", slog.Any("languages", Supported()), slog.String("default", defaultLang))

	return t, nil
}

// Default returns the fallback language code.
func (t *Translator) Default() string {
	return t.defaultLang
}

// Resolve picks a supported language code. An explicit query value wins over
// the Accept-Language header; anything unmatched gives the default.
func (t *Translator) Resolve(query, acceptLanguage string) string {
	if query != "" {
		if tag, err := language.Parse(query); err == nil {
			if code, ok := t.match(tag); ok {
				return code
			}
		}
	}

	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			if code, ok := t.match(tags...); ok {
				return code
			}
		}
	}

	return t.defaultLang
}

func (t *Translator) match(tags ...language.Tag) (string, bool) {
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return t.tags[idx].String(), true
}

// Message renders id in lang with data as template values. Unknown languages
// use the default; a missing message renders as its id.
func (t *Translator) Message(lang, id string, data map[string]any) string {
	loc, ok := t.localizers[lang]
	if !ok {
		loc = t.localizers[t.defaultLang]
	}

	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Debug("translation missing",
			slog.String("id", id),
			slog.String("lang", lang),
			slog.Any("error", err),
		)
		return id
	}
	return msg
}

// Age formats an optional age for the result sentences.
func Age(age int, known bool) string {
	if !known {
		return NoAge
	}
	return fmt.Sprint(age)
}
