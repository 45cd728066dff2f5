// Package sanitizer маскирует секреты в тексте перед отправкой во внешние
// каналы. Текст алертов содержит цепочки ошибок и фрагменты страниц,
// в которые могут попасть учётные данные или токены.
package sanitizer

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			&PasswordSanitizer{},
			&TokenSanitizer{},
			&CookieSanitizer{},
		},
	}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}

	return result
}
