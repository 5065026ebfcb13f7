package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elex-project/dokkaebi/pkg/useragent"
)

func TestNewHTTPClient_DefaultHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []Opt
		reqHeaders map[string]string
		want       map[string]string
	}{
		{
			name: "default user agent",
			want: map[string]string{"User-Agent": useragent.Header},
		},
		{
			name: "custom user agent and accept language",
			opts: []Opt{WithUserAgent("Test/1.0"), WithHeader("Accept-Language", "ko-kr")},
			want: map[string]string{"User-Agent": "Test/1.0", "Accept-Language": "ko-kr"},
		},
		{
			name:       "request headers win",
			opts:       []Opt{WithHeader("Accept-Language", "ko-kr")},
			reqHeaders: map[string]string{"Accept-Language": "en-us"},
			want:       map[string]string{"Accept-Language": "en-us"},
		},
		{
			name: "empty header value ignored",
			opts: []Opt{WithHeader("X-Dokkaebi", "")},
			want: map[string]string{"X-Dokkaebi": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var captured http.Header
			srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				captured = r.Header.Clone()
			}))
			defer srv.Close()

			client := NewHTTPClient(tt.opts...)
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			for k, v := range tt.reqHeaders {
				req.Header.Set(k, v)
			}

			resp, err := client.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			for k, v := range tt.want {
				assert.Equal(t, v, captured.Get(k), k)
			}
		})
	}
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(WithTimeout(3 * time.Second))
	assert.Equal(t, 3*time.Second, client.Timeout)

	assert.Zero(t, NewHTTPClient().Timeout)
}

type recordingTransport struct {
	called bool
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.called = true
	return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: req}, nil
}

func TestNewHTTPClient_BaseTransport(t *testing.T) {
	t.Parallel()

	rt := &recordingTransport{}
	client := NewHTTPClient(WithBaseTransport(rt))

	req, err := http.NewRequest(http.MethodPost, "http://collector.invalid/collect", http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.True(t, rt.called)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
