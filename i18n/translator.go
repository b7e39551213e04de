package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for violation codes.
// data carries the values embedded in the message ("field", "type",
// "detail", "target", "values", "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"required":             `Field "{field}" is required`,
		"invalid_type":         `Field "{field}" is not valid. Should be a {type}`,
		"not_array":            `Field "{field}" should be an array`,
		"not_object":           `Field "{field}" is not valid. Should be an object`,
		"null_element":         `Field "{field}" is not valid. Should not be null`,
		"invalid_value":        `Field "{field}" is not valid. {detail}`,
		"dependency":           `Field "{field}" depends on field "{target}" with validation: {detail}`,
		"too_deep":             `Field "{field}" exceeds the maximum nesting depth`,
		"invalid_constraint":   `Constraint for "{field}" is not valid. Should be an object or a non-empty union`,
		"invalid_enum":         `Allowed values are: {values}`,
		"invalid_map":          `Should be a key-value map of strings`,
		"invalid_pattern":      `Does not match the required pattern`,
		"root_not_object":      `Value is not valid. Should be an object`,
		"decode_duplicate_key": `duplicate key at {path}`,
		"decode_too_deep":      `maximum nesting depth exceeded at {path}`,
		"decode_truncated":     `maximum input size exceeded at {path}`,
	},
	"ja": {
		"required":             `フィールド "{field}" は必須です`,
		"invalid_type":         `フィールド "{field}" が不正です。{type} である必要があります`,
		"not_array":            `フィールド "{field}" は配列である必要があります`,
		"not_object":           `フィールド "{field}" が不正です。オブジェクトである必要があります`,
		"null_element":         `フィールド "{field}" が不正です。null は使用できません`,
		"invalid_value":        `フィールド "{field}" が不正です。{detail}`,
		"dependency":           `フィールド "{field}" はフィールド "{target}" に依存しています: {detail}`,
		"too_deep":             `フィールド "{field}" が最大ネスト深度を超えています`,
		"invalid_constraint":   `"{field}" の制約が不正です。オブジェクトまたは空でないユニオンである必要があります`,
		"invalid_enum":         `許可される値: {values}`,
		"invalid_map":          `文字列のキーと値のマップである必要があります`,
		"invalid_pattern":      `必要なパターンに一致しません`,
		"root_not_object":      `値が不正です。オブジェクトである必要があります`,
		"decode_duplicate_key": `キーが重複しています: {path}`,
		"decode_too_deep":      `最大ネスト深度を超えています: {path}`,
		"decode_truncated":     `最大入力サイズを超えています: {path}`,
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		if tmpl, ok = dictionaries["en"][code]; !ok {
			return code
		}
	}
	return expand(tmpl, data)
}

// expand replaces {key} placeholders with values from data. Unknown
// placeholders are left untouched.
func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
