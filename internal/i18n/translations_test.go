package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslatorDefaultsToFrench(t *testing.T) {
	tr, err := NewTranslator("fr")
	require.NoError(t, err)

	require.Equal(t, "Message requis", tr.T("", MsgChatMissingMessage, nil))
	require.Equal(t, "Cette adresse email est déjà inscrite", tr.T("de-DE", MsgRegisterDuplicate, nil))
}

func TestTranslatorAcceptLanguage(t *testing.T) {
	tr, err := NewTranslator("fr")
	require.NoError(t, err)

	require.Equal(t, "Message is required", tr.T("en-US,en;q=0.9", MsgChatMissingMessage, nil))
	require.Equal(t, "Message requis", tr.T("fr-CI,fr;q=0.8", MsgChatMissingMessage, nil))
}

func TestTranslatorTemplateData(t *testing.T) {
	tr, err := NewTranslator("fr")
	require.NoError(t, err)

	msg := tr.T("en", MsgAdminPromoted, map[string]any{"Email": "boss@example.ci"})
	require.Equal(t, "User boss@example.ci has been promoted to admin", msg)
}

func TestTranslatorUnknownKey(t *testing.T) {
	tr, err := NewTranslator("fr")
	require.NoError(t, err)

	require.Equal(t, "no.such.key", tr.T("fr", "no.such.key", nil))
	require.Empty(t, tr.T("fr", "", nil))
}
