package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/testutil"
)

const testToken = "test-token"

func newTestAPI(t *testing.T, p clipboard.Payload) (*httptest.Server, *core.LocalCleanService, *testutil.FakeBoard) {
	t.Helper()
	board := setupCLI(t, p)
	svc := core.NewLocalCleanService(board, GlobalStore, GlobalSettings.ToRuntimeConfig())
	t.Cleanup(func() { _ = svc.Shutdown() })

	srv := httptest.NewServer(newRouter(NewAPIHandler(svc, GlobalStore, 1760), testToken))
	t.Cleanup(srv.Close)
	return srv, svc, board
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_Auth(t *testing.T) {
	srv, _, _ := newTestAPI(t, nil)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"health is public", "/health", "", http.StatusOK},
		{"rules need a token", "/rules", "", http.StatusUnauthorized},
		{"wrong token", "/rules", "nope", http.StatusUnauthorized},
		{"right token", "/rules", testToken, http.StatusOK},
		{"unknown route", "/download", testToken, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodGet, tt.path, tt.token, "")
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv, _, _ := newTestAPI(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/clean", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_CleanText(t *testing.T) {
	srv, _, board := newTestAPI(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"on-demand", `{"text":"a  b\u200b"}`, http.StatusOK, "a b"},
		{"auto has nothing active", `{"text":"a  b","context":"auto"}`, http.StatusOK, "a  b"},
		{"bad context", `{"text":"x","context":"sometimes"}`, http.StatusBadRequest, ""},
		{"bad json", `{"text":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPost, "/clean", testToken, tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				return
			}
			var out core.CleanResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.want, out.Text)
			assert.False(t, out.Written)
		})
	}
	assert.Empty(t, board.Writes(), "text cleaning never touches the clipboard")
}

func TestRouter_CleanTextTooLarge(t *testing.T) {
	srv, _, _ := newTestAPI(t, nil)
	GlobalSettings.Safety.MaxClipboardSizeMB = 1

	body, err := json.Marshal(core.CleanTextRequest{Text: strings.Repeat("a", 1<<20+1)})
	require.NoError(t, err)
	resp := doJSON(t, srv, http.MethodPost, "/clean", testToken, string(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouter_CleanClipboard(t *testing.T) {
	srv, _, board := newTestAPI(t, clipboard.PlainText("Hello  world"))

	resp := doJSON(t, srv, http.MethodPost, "/clipboard/clean", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out core.CleanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Written)
	assert.Equal(t, "on-demand", out.Context)
	assert.Contains(t, out.Changed, rules.StageNormalizeSpaces)
	assert.Equal(t, "Hello world", board.Text())

	board.Copy(clipboard.Payload{{Format: clipboard.FormatImage, Data: []byte{1, 2, 3}}})
	resp = doJSON(t, srv, http.MethodPost, "/clipboard/clean", testToken, `{"context":"on-demand"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRouter_CleanURLs(t *testing.T) {
	srv, _, _ := newTestAPI(t, nil)

	resp := doJSON(t, srv, http.MethodPost, "/url", testToken,
		`{"urls":["https://example.com/?utm_source=x&id=1","https://example.com/"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out core.URLResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "https://example.com/?id=1", out.Results[0].Output)
	assert.Contains(t, out.Results[0].Removed, "utm_source")
	assert.False(t, out.Results[1].Changed())

	resp = doJSON(t, srv, http.MethodPost, "/url", testToken, `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Rules(t *testing.T) {
	srv, _, _ := newTestAPI(t, nil)

	resp := doJSON(t, srv, http.MethodGet, "/rules", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view rulesView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, rules.DefaultProfileName, view.Profile)
	assert.Len(t, view.Stages, len(rules.AllStages()))
}

func TestRemoteCleanService(t *testing.T) {
	srv, local, board := newTestAPI(t, clipboard.PlainText("x"))

	remote := core.NewRemoteCleanService(srv.URL, testToken)
	t.Cleanup(func() { _ = remote.Shutdown() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, remote.Health(ctx))

	res, err := remote.CleanText(ctx, rules.OnDemand, "“quoted”  text")
	require.NoError(t, err)
	assert.Equal(t, `"quoted" text`, res.Text)

	stream, cleanup, err := remote.StreamEvents(ctx)
	require.NoError(t, err)
	defer cleanup()

	// The SSE subscription registers asynchronously; keep cleaning until an
	// event arrives.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case msg := <-stream:
			cleaned, ok := msg.(core.CleanedMsg)
			require.True(t, ok, "got %T", msg)
			assert.Equal(t, "on-demand", cleaned.Context)
			assert.True(t, cleaned.Written)
			return
		case <-ticker.C:
			board.Copy(clipboard.PlainText("a  b"))
			_, err := local.Clean(ctx, rules.OnDemand)
			require.NoError(t, err)
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}

func TestDecodeRequest_EmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clipboard/clean", bytes.NewReader(nil))
	var out core.ClipboardRequest
	assert.True(t, decodeRequest(rec, req, 1024, &out))
	assert.Empty(t, out.Context)
}
