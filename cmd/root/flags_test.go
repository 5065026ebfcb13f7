package root

import (
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "1920x1080", want: "1920x1080"},
		{input: "1280X720", want: "1280x720"},
		{input: " 800x600 ", want: "800x600"},
		{input: "1920", wantErr: true},
		{input: "x1080", wantErr: true},
		{input: "0x1080", wantErr: true},
		{input: "1920x-1", wantErr: true},
		{input: "widexhigh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var v sizeValue
			err := v.Set(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, v.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.Equal(t, "WxH", v.Type())
		})
	}
}

func TestParseTiming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "42", want: 42 * time.Millisecond},
		{input: "42ms", want: 42 * time.Millisecond},
		{input: "1.5s", want: 1500 * time.Millisecond},
		{input: "0", want: 0},
		{input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseTiming(tt.input)
		if tt.wantErr {
			require.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestGoMinorVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 26, goMinorVersion("go1.26.1"))
	assert.Equal(t, 27, goMinorVersion("go1.27rc2"))
	assert.Equal(t, 22, goMinorVersion("go1.22"))
	assert.Equal(t, 0, goMinorVersion("devel go1.27-abcdef"))
	assert.Equal(t, 0, goMinorVersion(""))
}

func TestSystemLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "en_US.UTF-8")
	assert.Equal(t, "en_US.UTF-8", systemLocale())

	t.Setenv("LC_MESSAGES", "de_DE")
	assert.Equal(t, "de_DE", systemLocale())

	t.Setenv("LC_ALL", "ko_KR")
	assert.Equal(t, "ko_KR", systemLocale())

	env := hostEnvironment()
	assert.Equal(t, "ko_KR", env.Locale)
	assert.Equal(t, "go", env.RuntimeName)
	assert.Positive(t, env.RuntimeFeature)
}

func TestOSVersion(t *testing.T) {
	t.Parallel()

	got := osVersion()
	assert.NotEqual(t, runtime.GOARCH, got)
	assert.Equal(t, got, hostEnvironment().OSVersion)

	if runtime.GOOS == "linux" {
		release, err := os.ReadFile("/proc/sys/kernel/osrelease")
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(string(release)), got)
	}
}
