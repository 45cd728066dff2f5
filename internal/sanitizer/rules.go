package sanitizer

import "regexp"

type PasswordSanitizer struct{}

func (s *PasswordSanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(password|пароль)\s*[:=]\s*["']?([^"'\s]{3,})["']?`),
		regexp.MustCompile(`(?i)(passwd|pwd)\s*[:=]\s*["']?([^"'\s]{3,})["']?`),
		regexp.MustCompile(`(?i)<input[^>]*type=["']password["'][^>]*value=["']([^"']+)["']`),
	}

	for _, pattern := range patterns {
		text = pattern.ReplaceAllString(text, `${1}: [FILTERED]`)
	}

	return text
}

type TokenSanitizer struct{}

func (s *TokenSanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(token|токен)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`),
		regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?token)\s*[:=]\s*["']?([a-zA-Z0-9_-]{20,})["']?`),
		regexp.MustCompile(`(?i)(bearer\s+)([a-zA-Z0-9_-]{20,})`),
		regexp.MustCompile(`xox[bap]-[a-zA-Z0-9-]{10,}`),
	}

	for _, pattern := range patterns {
		text = pattern.ReplaceAllString(text, `${1}[FILTERED]`)
	}

	return text
}

type CookieSanitizer struct{}

func (s *CookieSanitizer) Sanitize(text string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)(cookie|куки)\s*[:=]\s*["']?([^"'\n]{10,})["']?`),
		regexp.MustCompile(`(?i)(session[_-]?id|session[_-]?token)\s*[:=]\s*["']?([a-zA-Z0-9_-]{10,})["']?`),
		regexp.MustCompile(`(?i)(set-cookie\s*[:=]\s*["']?)([^"'\n]{10,})["']?`),
	}

	for _, pattern := range patterns {
		text = pattern.ReplaceAllString(text, `${1}[FILTERED]`)
	}

	return text
}
