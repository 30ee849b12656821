package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "tag" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "missing_field":
			return "必須フィールドが不足しています"
		case "unmatched_variant":
			if tag := data["tag"]; tag != "" {
				return "一致するバリアントがありません: '" + tag + "'"
			}
			return "一致するバリアントがありません"
		case "invalid_scalar":
			if exp := data["expected"]; exp != "" {
				return exp + " として解析できません"
			}
			return "値を解析できません"
		case "ambiguous_schema":
			return "スキーマのタグが曖昧です"
		case "invalid_schema":
			return "スキーマが不正です"
		case "unknown_key":
			return "未知の要素です"
		case "limit_exceeded":
			return "上限を超えました"
		case "parse_error":
			return "解析エラー"
		case "bind_error":
			return "Go の型に割り当てられません"
		}
	default: // "en"
		switch code {
		case "missing_field":
			return "required field missing"
		case "unmatched_variant":
			if tag := data["tag"]; tag != "" {
				return "unknown variant: '" + tag + "'"
			}
			return "no variant matched"
		case "invalid_scalar":
			if exp := data["expected"]; exp != "" {
				if txt, ok := data["text"]; ok {
					return "cannot parse '" + txt + "' as " + exp
				}
				return "cannot parse as " + exp
			}
			return "invalid scalar"
		case "ambiguous_schema":
			if tag := data["tag"]; tag != "" {
				return "ambiguous tag '" + tag + "'"
			}
			return "ambiguous schema"
		case "invalid_schema":
			return "invalid schema"
		case "unknown_key":
			return "unknown element"
		case "limit_exceeded":
			return "limit exceeded"
		case "parse_error":
			return "parse error"
		case "bind_error":
			return "cannot bind value"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
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
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
