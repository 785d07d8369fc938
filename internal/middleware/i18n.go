// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bangazon/bangazon-backend/internal/i18n"
)

// I18nMiddleware sets "lang" from the ?lang query parameter when it names a
// supported locale, otherwise from Accept-Language.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := strings.ToLower(strings.TrimSpace(c.Query("lang")))
		if !i18n.IsSupported(lang) {
			lang = parseLanguage(c.GetHeader("Accept-Language"))
		}
		c.Set("lang", lang)
		c.Next()
	}
}

// parseLanguage picks the first preferred language we have a locale for.
// Handles values like "es-MX,es;q=0.9,en;q=0.8".
func parseLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		if i18n.IsSupported(base) {
			return base
		}
	}
	return "en"
}
