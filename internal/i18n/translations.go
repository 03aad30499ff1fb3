// Package i18n renders user-facing messages from the embedded locale files.
package i18n

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Message identifiers.
const (
	MsgRegisterMissingFields = "register.missing_fields"
	MsgRegisterInvalidEmail  = "register.invalid_email"
	MsgRegisterDuplicate     = "register.duplicate"
	MsgRegisterSaveFailed    = "register.save_failed"
	MsgRegisterSuccess       = "register.success"

	MsgTicketMissingID      = "ticket.missing_id"
	MsgTicketNotFound       = "ticket.not_found"
	MsgTicketGenerateFailed = "ticket.generate_failed"
	MsgTicketGenerated      = "ticket.generated"

	MsgDownloadMissingParams = "download.missing_params"
	MsgDownloadNotFound      = "download.not_found"
	MsgDownloadNotGenerated  = "download.not_generated"
	MsgDownloadFailed        = "download.failed"

	MsgChatMissingMessage = "chat.missing_message"
	MsgChatMissingConfig  = "chat.missing_config"
	MsgChatFailed         = "chat.failed"

	MsgAdminMissingEmail = "admin.missing_email"
	MsgAdminUserNotFound = "admin.user_not_found"
	MsgAdminUpdateFailed = "admin.update_failed"
	MsgAdminPromoted     = "admin.promoted"
	MsgAdminListFailed   = "admin.list_failed"

	MsgServerInternal = "server.internal"
)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator builds a Translator over the embedded active.*.toml files.
// defaultLocale (e.g. "fr") is used when the requested locale has no match.
func NewTranslator(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.French
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.fr.toml", "active.en.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
	}, nil
}

// T renders the message identified by key. locale may be a bare tag or a raw
// Accept-Language header. Unknown keys render as the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
