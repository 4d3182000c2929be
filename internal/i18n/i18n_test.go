package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	dir := t.TempDir()
	writeLocale(t, dir, "en.yaml", `
en:
  menu:
    submit: "Submit a listing"
  prompt:
    image_received: "Got it, {count} photos so far."
  flow:
    cancelled: "Cancelled."
`)
	writeLocale(t, dir, "am.yaml", `
am:
  menu:
    submit: "ንብረት ይመዝግቡ"
`)

	m, err := LoadFromDir(dir, "en")
	require.NoError(t, err)
	return m
}

func TestLoadFromDirFlattensNestedKeys(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, "Submit a listing", m.Translate("en", "menu.submit", nil))
	assert.Equal(t, "Cancelled.", m.Translate("en", "flow.cancelled", nil))
}

func TestTranslatorFallsBackToDefaultLanguage(t *testing.T) {
	m := newTestManager(t)

	// Key missing in Amharic falls back to English.
	assert.Equal(t, "Cancelled.", m.Translate("am", "flow.cancelled", nil))

	// Key present in Amharic stays localized.
	assert.Equal(t, "ንብረት ይመዝግቡ", m.Translate("am", "menu.submit", nil))

	// Unknown language resolves entirely through the default.
	assert.Equal(t, "Submit a listing", m.Translate("fr", "menu.submit", nil))
}

func TestTranslatorMissingKeyReturnsKey(t *testing.T) {
	m := newTestManager(t)

	assert.Equal(t, "menu.unknown", m.Translate("en", "menu.unknown", nil))
	assert.Equal(t, "", m.Translate("en", "  ", nil))
}

func TestTranslatorInterpolatesParams(t *testing.T) {
	m := newTestManager(t)

	got := m.Translate("en", "prompt.image_received", map[string]string{"count": "2"})
	assert.Equal(t, "Got it, 2 photos so far.", got)

	// Missing params leave the placeholder visible rather than erroring.
	got = m.Translate("en", "prompt.image_received", nil)
	assert.Equal(t, "Got it, {count} photos so far.", got)
}

func TestLoadFromDirValidation(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := LoadFromDir(t.TempDir(), "en")
		assert.Error(t, err)
	})

	t.Run("missing default language", func(t *testing.T) {
		dir := t.TempDir()
		writeLocale(t, dir, "am.yaml", "am:\n  menu:\n    submit: \"x\"\n")

		_, err := LoadFromDir(dir, "en")
		assert.Error(t, err)
	})
}

func TestManagerLanguages(t *testing.T) {
	m := newTestManager(t)
	assert.ElementsMatch(t, []string{"en", "am"}, m.Languages())
}

func TestShippedLocales(t *testing.T) {
	m, err := LoadFromDir("locales", "en")
	require.NoError(t, err)

	// Every key the flows reference must resolve in the default language.
	keys := []string{
		"menu.submit", "menu.filter", "menu.browse", "menu.my_listings",
		"menu.pending", "menu.cancel", "menu.done", "menu.any",
		"prompt.entity_type", "prompt.region", "prompt.price", "prompt.images",
		"prompt.description", "prompt.reject_reason",
		"role.prompt", "role.buyer", "role.broker", "role.broker_granted",
		"flow.cancelled", "flow.expired", "flow.reset", "flow.submitted",
		"flow.no_results", "flow.results_header",
		"notify.listing_approved", "notify.listing_rejected", "notify.listing_sold",
		"error.invalid_choice", "error.invalid_number", "error.need_more_images",
		"error.already_handled", "error.try_again_later",
		"error.not_a_broker", "error.not_an_admin",
	}
	for _, key := range keys {
		assert.NotEqual(t, key, m.Translate("en", key, nil), "missing translation for %s", key)
	}

	assert.Contains(t, m.Languages(), "am")
}
