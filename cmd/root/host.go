package root

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/elex-project/dokkaebi/pkg/tracker"
)

// hostEnvironment describes this process for AppStart.
func hostEnvironment() tracker.Environment {
	return tracker.Environment{
		OSName:         runtime.GOOS,
		OSVersion:      osVersion(),
		RuntimeName:    "go",
		RuntimeVersion: runtime.Version(),
		RuntimeFeature: goMinorVersion(runtime.Version()),
		Locale:         systemLocale(),
	}
}

// goMinorVersion extracts 26 from "go1.26.1" or "go1.26rc2".
// It returns 0 for development builds.
func goMinorVersion(v string) int {
	rest, ok := strings.CutPrefix(v, "go1.")
	if !ok {
		return 0
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

// systemLocale follows the POSIX lookup order for message locales.
func systemLocale() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
