package translation

import (
	"github.com/leonelquinteros/gotext"
)

// Configure points gotext at the locale catalogs; unknown languages fall
// back to the untranslated message ids.
func Configure(localesDir, lang string) {
	gotext.Configure(localesDir, lang, "default")
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
