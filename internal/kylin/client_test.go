package kylin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/GoPolymarket/kylingate/internal/pkg/apperrors"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/GoPolymarket/kylingate/internal/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testSecret = "test-secret"
)

var fixedNow = time.UnixMilli(1603271977470)

type captured struct {
	method string
	path   string
	apiKey string
	body   map[string]string
}

func newUpstream(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.apiKey = r.Header.Get(HeaderAPIKey)
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(baseURL), WithClock(func() time.Time { return fixedNow })}, opts...)
	c, err := NewClient(testKey, testSecret, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInvoke_SignsAndUnwraps(t *testing.T) {
	srv, got := newUpstream(t, http.StatusOK, `{"code":0,"data": {"rate": 0.01, "list": [1, 2]}}`)
	c := newTestClient(t, srv.URL)

	params := map[string]string{"exchCode": "okex", "type": "0"}
	out, err := c.Invoke(context.Background(), http.MethodPost, c.BaseURL()+"/data/liquidation", params)
	require.NoError(t, err)

	assert.Equal(t, `{"rate":0.01,"list":[1,2]}`, out)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/data/liquidation", got.path)
	assert.Equal(t, testKey, got.apiKey)

	assert.Equal(t, "1603271977470", got.body["timestamp"])
	assert.Equal(t, "okex", got.body["exchCode"])
	assert.True(t, signer.Verify(testSecret, got.body, got.body["signature"]))

	assert.NotContains(t, params, "timestamp", "caller params must not be mutated")
	assert.NotContains(t, params, "signature")
}

func TestInvoke_EmptyParamsStillSigned(t *testing.T) {
	srv, got := newUpstream(t, http.StatusOK, `{"data":"plain"}`)
	c := newTestClient(t, srv.URL)

	out, err := c.Invoke(context.Background(), http.MethodPost, srv.URL+"/data/largeDeal", map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, `"plain"`, out)
	require.Len(t, got.body, 2)
	assert.Equal(t, signer.Sign(testSecret, "timestamp=1603271977470"), got.body["signature"])
}

func TestInvoke_DropsCallerSignature(t *testing.T) {
	srv, got := newUpstream(t, http.StatusOK, `{"data":null}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Invoke(context.Background(), http.MethodPost, srv.URL, map[string]string{"signature": "forged"})
	require.NoError(t, err)
	assert.NotEqual(t, "forged", got.body["signature"])
	assert.True(t, signer.Verify(testSecret, got.body, got.body["signature"]))
}

func TestInvoke_NonOKStatus(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusUnauthorized, `{"msg":"bad signature"}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Invoke(context.Background(), http.MethodPost, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUpstream, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "401")
	assert.False(t, apperrors.IsValidation(err))
}

func TestInvoke_MalformedJSON(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `<html>oops</html>`)
	c := newTestClient(t, srv.URL)

	_, err := c.Invoke(context.Background(), http.MethodPost, srv.URL, nil)
	assert.Equal(t, apperrors.ErrUpstream, apperrors.TypeOf(err))
}

func TestInvoke_MissingData(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{"code":500,"msg":"internal"}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Invoke(context.Background(), http.MethodPost, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUpstream, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "no data field")
}

func TestInvoke_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))

	_, err := c.Invoke(context.Background(), http.MethodPost, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUpstreamTimeout, apperrors.TypeOf(err))
}

func TestInvoke_ContextCancelled(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{"data":1}`)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Invoke(ctx, http.MethodPost, srv.URL, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestInvoke_UnsupportedMethod(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Invoke(context.Background(), http.MethodGet, "http://127.0.0.1:1", nil)
	assert.Equal(t, apperrors.ErrInternal, apperrors.TypeOf(err))
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", testSecret)
	assert.Error(t, err)
	_, err = NewClient(testKey, "")
	assert.Error(t, err)
}

func TestUnwrapData(t *testing.T) {
	out, err := UnwrapData([]byte(`{"data":[ {"a": "b"} ]}`))
	require.NoError(t, err)
	assert.Equal(t, `[{"a":"b"}]`, out)

	_, err = UnwrapData([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestSignedParams_DebugSigningLogsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel("debug")
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetLevel("info")
	})

	c := newTestClient(t, "http://127.0.0.1:1", WithDebugSigning(true))
	c.SignedParams(context.Background(), map[string]string{"coinName": "BTC"})

	out := buf.String()
	assert.Contains(t, out, "coinName=BTC&timestamp=1603271977470")
	assert.Contains(t, out, "****cret")
	assert.NotContains(t, out, testSecret)

	buf.Reset()
	logger.SetLevel("info")
	c.SignedParams(context.Background(), map[string]string{"coinName": "BTC"})
	assert.Empty(t, buf.String(), "nothing is logged above debug level")
}
