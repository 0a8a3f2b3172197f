package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var defaultLocales = []string{"locales/active.en.json", "locales/active.id.json"}

type Translator struct {
	bundle *goi18n.Bundle
}

// New builds a translator with the embedded English and Indonesian messages.
func New() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, path := range defaultLocales {
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// T localises messageID for the first matching language in langs (an
// Accept-Language header value works). Unknown ids come back unchanged.
func (t *Translator) T(messageID string, data map[string]interface{}, langs ...string) string {
	loc := goi18n.NewLocalizer(t.bundle, langs...)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
