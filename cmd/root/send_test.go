package root

import (
	"bytes"
	"net/http/httptest"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elex-project/dokkaebi/pkg/collector"
	"github.com/elex-project/dokkaebi/pkg/protocol"
	"github.com/elex-project/dokkaebi/pkg/userconfig"
)

func setupHome(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "ko_KR.UTF-8")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := Execute(t.Context(), nil, &stdout, &stderr, args...)
	return stdout.String(), stderr.String(), err
}

func TestSend_NonPropertyTrackingID(t *testing.T) {
	setupHome(t)

	c := collector.New()
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	_, stderr, err := execute(t, "send", "--tracking-id", "dev-property", "--endpoint", srv.URL+"/collect", "screen", "Home")
	require.NoError(t, err, stderr)

	hits := c.Store().List()
	require.Len(t, hits, 1)
	assert.Equal(t, "dev-property", hits[0].Hit[protocol.FieldTrackingID])
	require.NotEmpty(t, hits[0].Problems)
	assert.Equal(t, protocol.SeverityWarn, hits[0].Problems[0].Severity)
	assert.Equal(t, protocol.FieldTrackingID, hits[0].Problems[0].Parameter)
}

func TestSend_ToCollector(t *testing.T) {
	setupHome(t)

	c := collector.New()
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	stdout, stderr, err := execute(t,
		"send", "--tracking-id", "UA-12345678-1", "--endpoint", srv.URL+"/collect",
		"app-start", "MyApp", "1.0.0", "com.example.myapp",
		"--resolution", "1920x1080", "--installer-id", "com.android.vending",
	)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "✓ event delivered (200")

	hits := c.Store().List()
	require.Len(t, hits, 1)
	hit := hits[0].Hit
	assert.Empty(t, hits[0].Problems)
	assert.Equal(t, "start", hit[protocol.FieldSessionControl])
	assert.Equal(t, "MyApp", hit[protocol.FieldAppName])
	assert.Equal(t, "com.android.vending", hit[protocol.FieldAppInstallerID])
	assert.Equal(t, "1920x1080", hit[protocol.FieldScreenResolution])
	assert.NotContains(t, hit, protocol.FieldViewportSize)
	assert.Equal(t, "ko-kr", hit[protocol.FieldUserLanguage])
	assert.Equal(t, runtime.GOOS, hit[protocol.FieldOSName])
	assert.Equal(t, "go", hit[protocol.FieldRuntimeName])

	// The generated client ID is persisted and reused
	cfg, err := userconfig.Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ClientID)
	assert.Equal(t, cfg.ClientID, hit[protocol.FieldClientID])

	_, stderr, err = execute(t, "send", "--tracking-id", "UA-12345678-1", "--endpoint", srv.URL+"/collect", "screen", "Home")
	require.NoError(t, err, stderr)

	hits = c.Store().List()
	require.Len(t, hits, 2)
	assert.Equal(t, cfg.ClientID, hits[1].Hit[protocol.FieldClientID])
	assert.Equal(t, "Home", hits[1].Hit[protocol.FieldScreenName])
}

func TestSend_UsesConfigFile(t *testing.T) {
	setupHome(t)

	c := collector.New()
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	for _, kv := range [][2]string{
		{"tracking_id", "UA-12345678-1"},
		{"endpoint", srv.URL + "/collect"},
		{"app.name", "MyApp"},
		{"app.version", "2.0.0"},
		{"app.id", "com.example.myapp"},
	} {
		_, stderr, err := execute(t, "config", "set", kv[0], kv[1])
		require.NoError(t, err, stderr)
	}

	_, stderr, err := execute(t, "send", "screen", "Settings")
	require.NoError(t, err, stderr)
	_, stderr, err = execute(t, "send", "app-start")
	require.NoError(t, err, stderr)

	hits := c.Store().List()
	require.Len(t, hits, 2)

	screen := hits[0].Hit
	assert.Equal(t, "UA-12345678-1", screen[protocol.FieldTrackingID])
	assert.Equal(t, "MyApp", screen[protocol.FieldAppName])
	assert.Equal(t, "2.0.0", screen[protocol.FieldAppVersion])
	assert.Equal(t, "Settings", screen[protocol.FieldScreenName])

	start := hits[1].Hit
	assert.Equal(t, "com.example.myapp", start[protocol.FieldAppID])
	assert.Equal(t, "App Start", start[protocol.FieldEventAction])
}

func TestSend_Events(t *testing.T) {
	setupHome(t)

	c := collector.New()
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	base := []string{"send", "--tracking-id", "UA-12345678-1", "--endpoint", srv.URL + "/collect"}
	commands := [][]string{
		{"event", "video", "play"},
		{"event", "video", "seek", "--label", "chapter", "--value", "3"},
		{"timing", "render", "layout", "42ms"},
		{"exception", "boom"},
		{"exception", "crash", "--fatal"},
		{"app-end"},
	}
	for _, args := range commands {
		_, stderr, err := execute(t, append(base, args...)...)
		require.NoError(t, err, "%v: %s", args, stderr)
	}

	hits := c.Store().List()
	require.Len(t, hits, len(commands))

	assert.NotContains(t, hits[0].Hit, protocol.FieldEventValue)
	assert.Equal(t, "chapter", hits[1].Hit[protocol.FieldEventLabel])
	assert.Equal(t, "3", hits[1].Hit[protocol.FieldEventValue])
	assert.Equal(t, "42", hits[2].Hit[protocol.FieldTimingTime])
	assert.NotContains(t, hits[2].Hit, protocol.FieldTimingLabel)
	assert.NotContains(t, hits[3].Hit, protocol.FieldExceptionFatal)
	assert.Equal(t, "1", hits[4].Hit[protocol.FieldExceptionFatal])
	assert.Equal(t, "end", hits[5].Hit[protocol.FieldSessionControl])

	for _, h := range hits {
		assert.Empty(t, h.Problems, "%v", h.Hit)
	}
}

func TestSend_DryRun(t *testing.T) {
	setupHome(t)

	stdout, stderr, err := execute(t, "send", "--dry-run", "--tracking-id", "UA-12345678-1", "event", "video", "play")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "--- event ---")
	assert.Contains(t, stdout, "= play")
	assert.Contains(t, stdout, "# event action")
	assert.Contains(t, stdout, "valid")
	assert.NotContains(t, stdout, "delivered")

	// Nothing is persisted by a dry run
	_, err = os.Stat(userconfig.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSend_Errors(t *testing.T) {
	setupHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no tracking id",
			args:    []string{"send", "screen", "Home"},
			wantErr: "no tracking ID",
		},
		{
			name:    "blank tracking id",
			args:    []string{"send", "--tracking-id", "  ", "screen", "Home"},
			wantErr: "invalid tracking id",
		},
		{
			name:    "label without value",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "event", "video", "play", "--label", "x"},
			wantErr: "--label requires --value",
		},
		{
			name:    "app start without identity",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "app-start"},
			wantErr: "missing required argument",
		},
		{
			name:    "app start with partial identity",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "app-start", "MyApp"},
			wantErr: "accepts 0 or 3 arg(s)",
		},
		{
			name:    "bad resolution",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "app-start", "--resolution", "wide"},
			wantErr: "expected WIDTHxHEIGHT",
		},
		{
			name:    "bad timing",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "timing", "render", "layout", "soon"},
			wantErr: "invalid timing",
		},
		{
			name:    "negative value",
			args:    []string{"send", "--dry-run", "--tracking-id", "UA-1-1", "event", "video", "play", "--value", "-1"},
			wantErr: "must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.args...)
			require.ErrorContains(t, err, tt.wantErr)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestSend_DeliveryFailure(t *testing.T) {
	setupHome(t)

	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	stdout, _, err := execute(t, "send", "--tracking-id", "UA-12345678-1", "--endpoint", url+"/collect", "event", "video", "play")
	require.Error(t, err)
	assert.ErrorAs(t, err, &RuntimeError{})
	assert.Contains(t, stdout, "✗ event not delivered")
}
