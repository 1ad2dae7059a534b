package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/decomment/internal/engine"
	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/sanitize"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	opts := engine.Options{Keep: sanitize.MustCompileKeep(`@license`)}
	eng, err := engine.New(profile.Default(), opts)
	require.NoError(t, err)

	mux := http.NewServeMux()
	New(eng, opts).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestProfiles(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/v1/profiles")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Object string `json:"object"`
		Data   []struct {
			ID         string   `json:"id"`
			Engine     string   `json:"engine"`
			Extensions []string `json:"extensions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "list", body.Object)

	engines := make(map[string]string, len(body.Data))
	for _, p := range body.Data {
		engines[p.ID] = p.Engine
	}
	assert.Equal(t, "markup", engines["blade"])
	assert.Equal(t, "delegate", engines["python"])
	assert.Equal(t, "native", engines["php"])
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantText   string
		wantChange bool
		wantProf   string
	}{
		{
			name:       "javascript",
			body:       `{"filename":"a.js","content":"let x = 1; // note\n"}`,
			wantStatus: http.StatusOK,
			wantText:   "let x = 1;        \n",
			wantChange: true,
			wantProf:   "javascript",
		},
		{
			name:       "configured keep directive",
			body:       `{"filename":"a.css","content":"/* @license MIT */\na{}\n"}`,
			wantStatus: http.StatusOK,
			wantText:   "/* @license MIT */\na{}\n",
			wantProf:   "css",
		},
		{
			name:       "request keep directive",
			body:       `{"filename":"a.ts","content":"// eslint-disable-next-line\nf();\n","keep_directives":["eslint-"]}`,
			wantStatus: http.StatusOK,
			wantText:   "// eslint-disable-next-line\nf();\n",
			wantProf:   "typescript",
		},
		{
			name:       "unsupported file",
			body:       `{"filename":"a.rb","content":"# hi\n"}`,
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "bad json",
			body:       `{"filename":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing filename",
			body:       `{"content":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad keep directive",
			body:       `{"filename":"a.js","content":"x","keep_directives":["("]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	srv := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/strip", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got stripResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.wantText, got.Content)
			assert.Equal(t, tt.wantChange, got.Changed)
			assert.Equal(t, tt.wantProf, got.Profile)
		})
	}
}
