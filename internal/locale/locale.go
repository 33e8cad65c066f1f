package locale

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/agribharat/agribharat-api/internal/domain"
)

// Keys used by the consultation service and the HTTP layer.
const (
	KeyErrorPrefix              = "error_prefix"
	KeyNoQuestion               = "no_question_error"
	KeyNoImage                  = "no_image_error"
	KeyUnsupportedImage         = "unsupported_image_error"
	KeyNoCropName               = "no_crop_name_error"
	KeyNoSchemeQuery            = "no_scheme_query_error"
	KeyUnsupportedLanguage      = "unsupported_language_error"
	KeyImageQuestionPlaceholder = "image_question_placeholder"
	KeyNoHistory                = "no_history_message"
	KeyTotalConsultations       = "total_consultations_label"
	KeySessionNotFound          = "session_not_found_error"
)

//go:embed translations.yaml
var translationsYAML []byte

// Table maps a language to its labelled UI strings.
type Table struct {
	entries map[domain.Language]map[string]string
}

// Load parses the embedded translation table.
func Load() (*Table, error) {
	return Parse(translationsYAML)
}

// MustLoad is Load for program start-up and tests.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse builds a table from YAML keyed by language name. Every language must
// be known and English must be present since it backs missing entries.
func Parse(data []byte) (*Table, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing translations: %w", err)
	}

	entries := make(map[domain.Language]map[string]string, len(raw))
	for name, labels := range raw {
		lang, ok := domain.ParseLanguage(name)
		if !ok {
			return nil, fmt.Errorf("translations: unknown language %q", name)
		}
		entries[lang] = labels
	}

	if _, ok := entries[domain.LanguageEnglish]; !ok {
		return nil, fmt.Errorf("translations: English entries are required")
	}

	return &Table{entries: entries}, nil
}

// Text returns the label for key in lang, falling back to English and finally
// to the key itself.
func (t *Table) Text(lang domain.Language, key string) string {
	if v, ok := t.entries[lang][key]; ok && v != "" {
		return v
	}
	if v, ok := t.entries[domain.LanguageEnglish][key]; ok && v != "" {
		return v
	}
	return key
}

// ErrorMessage renders an inline error the way the UI shows it: the
// language's error prefix followed by the message.
func (t *Table) ErrorMessage(lang domain.Language, msg string) string {
	return t.Text(lang, KeyErrorPrefix) + " " + msg
}
