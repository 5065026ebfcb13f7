package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

func TestNormalizeLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		locale string
		want   string
	}{
		{"ko_KR", "ko-kr"},
		{"en_US.UTF-8", "en-us"},
		{"de_DE@euro", "de-de"},
		{"zh_Hant_TW", "zh-hant-tw"},
		{"ja", "ja"},
		{"en-GB", "en-gb"},
		{"C", ""},
		{"C.UTF-8", ""},
		{"POSIX", ""},
		{"", ""},
		{"  fr_CA  ", "fr-ca"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeLocale(tt.locale))
		})
	}
}

func TestEnvironmentApply(t *testing.T) {
	t.Parallel()

	hit := protocol.Hit{}
	Environment{OSName: "darwin", RuntimeFeature: 0, Locale: "C"}.apply(hit)

	assert.Equal(t, protocol.Hit{protocol.FieldOSName: "darwin"}, hit)
}
