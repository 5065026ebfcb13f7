package tracker

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

// Environment describes the host process. The library never inspects the
// system itself: the host fills these in, and AppStart reports them as
// custom dimensions and metrics. Empty fields are not sent.
type Environment struct {
	// OSName is reported as cd1.
	OSName string
	// OSVersion is reported as cd2.
	OSVersion string
	// RuntimeName is reported as cd3.
	RuntimeName string
	// RuntimeVersion is reported as cd4.
	RuntimeVersion string
	// RuntimeFeature is the runtime's feature (major) version, reported as
	// the cm1 metric when positive.
	RuntimeFeature int
	// Locale is the system locale, e.g. "ko_KR" or "en_US.UTF-8". It is
	// reported as the user language (ul).
	Locale string
}

func (e Environment) apply(h protocol.Hit) {
	h.SetOptional(protocol.FieldUserLanguage, NormalizeLocale(e.Locale))
	h.SetOptional(protocol.FieldOSName, e.OSName)
	h.SetOptional(protocol.FieldOSVersion, e.OSVersion)
	h.SetOptional(protocol.FieldRuntimeName, e.RuntimeName)
	h.SetOptional(protocol.FieldRuntimeVersion, e.RuntimeVersion)
	if e.RuntimeFeature > 0 {
		h.Set(protocol.FieldRuntimeFeature, strconv.Itoa(e.RuntimeFeature))
	}
}

// NormalizeLocale turns a system locale into the lower-case, hyphenated form
// expected for "ul": "ko_KR" becomes "ko-kr", "en_US.UTF-8" becomes "en-us".
// The POSIX locales "C" and "POSIX" have no language and yield "".
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	// Drop codeset and modifier: language_TERRITORY.codeset@modifier
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}

	locale = strings.ReplaceAll(locale, "_", "-")
	if tag, err := language.Parse(locale); err == nil {
		locale = tag.String()
	}
	return strings.ToLower(locale)
}
