package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/types"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake-image")

func newOpenAITestProvider(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, zap.NewNop(),
		WithOpenAIHTTPClient(server.Client()))
	return p, server
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k"}, nil)
	assert.Equal(t, "openai-image", p.Name())
	assert.Equal(t, "dall-e-3", p.cfg.Model)
	assert.Equal(t, "1024x1024", p.cfg.Size)
	assert.Equal(t, "standard", p.cfg.Quality)
}

func TestOpenAIProvider_GenerateImage_B64(t *testing.T) {
	var body map[string]any
	var auth string

	p, _ := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1700000000,"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString(fakePNG) + `"}]}`))
	})

	data, err := p.GenerateImage(context.Background(), "portrait of Hero")
	require.NoError(t, err)
	assert.Equal(t, fakePNG, data)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "portrait of Hero", body["prompt"])
	assert.Equal(t, "dall-e-3", body["model"])
	assert.Equal(t, "1024x1024", body["size"])
	assert.Equal(t, "standard", body["quality"])
	assert.EqualValues(t, 1, body["n"])
}

func TestOpenAIProvider_GenerateImage_URL(t *testing.T) {
	var server *httptest.Server
	p, server := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"` + server.URL + `/img/1.png"}]}`))
		case "/img/1.png":
			_, _ = w.Write(fakePNG)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	data, err := p.GenerateImage(context.Background(), "a castle")
	require.NoError(t, err)
	assert.Equal(t, fakePNG, data)
}

func TestOpenAIProvider_GenerateImage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(srv **httptest.Server) http.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "api error",
			handler: func(**httptest.Server) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"error":{"message":"content policy","type":"invalid_request_error"}}`))
				}
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "status=400",
		},
		{
			name: "no images",
			handler: func(**httptest.Server) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
				}
			},
			wantMsg: "no images",
		},
		{
			name: "download fails",
			handler: func(srv **httptest.Server) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path == "/gone.png" {
						w.WriteHeader(http.StatusNotFound)
						return
					}
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"` + (*srv).URL + `/gone.png"}]}`))
				}
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "download",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var server *httptest.Server
			var hits atomic.Int32
			inner := tt.handler(&server)
			p, srv := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				inner(w, r)
			})
			server = srv

			_, err := p.GenerateImage(context.Background(), "x")
			require.Error(t, err)
			assert.True(t, types.IsProvider(err))
			assert.Contains(t, err.Error(), tt.wantMsg)

			var typed *types.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, "openai-image", typed.Provider)
			assert.Equal(t, tt.wantStatus, typed.HTTPStatus)
			if tt.name == "api error" {
				assert.Equal(t, int32(1), hits.Load(), "sdk retries must stay disabled")
			}
		})
	}
}

func TestOpenAIProvider_EmptyPrompt(t *testing.T) {
	var hits atomic.Int32
	p, _ := newOpenAITestProvider(t, func(http.ResponseWriter, *http.Request) { hits.Add(1) })

	_, err := p.GenerateImage(context.Background(), "   ")
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, int32(0), hits.Load())
}
