package video

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/internal/metrics"
	"github.com/BaSui01/trailerflow/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000IHDR")

type wireImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type wireReference struct {
	Image         wireImage `json:"image"`
	ReferenceType string    `json:"referenceType"`
}

type wireInstance struct {
	Prompt          string          `json:"prompt"`
	Image           *wireImage      `json:"image"`
	LastFrame       *wireImage      `json:"lastFrame"`
	ReferenceImages []wireReference `json:"referenceImages"`
}

type wireParams struct {
	AspectRatio      string `json:"aspectRatio"`
	NegativePrompt   string `json:"negativePrompt"`
	PersonGeneration string `json:"personGeneration"`
	DurationSeconds  int    `json:"durationSeconds"`
}

// submitBody is the predictLongRunning body as it goes over the wire.
type submitBody struct {
	Instances  []wireInstance `json:"instances"`
	Parameters wireParams     `json:"parameters"`
}

// fakeVeo is an httptest double for the Veo long-running API.
type fakeVeo struct {
	server      *httptest.Server
	hits        atomic.Int32
	polls       atomic.Int32
	pendingPoll int32
	submitCode  int
	pollBody    func(f *fakeVeo) string
	downloadErr bool
	lastSubmit  submitBody
	lastAPIKey  string
}

func newFakeVeo(t *testing.T, pending int32) *fakeVeo {
	t.Helper()
	f := &fakeVeo{pendingPoll: pending, submitCode: http.StatusOK}
	f.pollBody = func(f *fakeVeo) string {
		return fmt.Sprintf(`{"name":"operations/op-1","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"%s/v1beta/files/clip1:download?alt=media"}}]}}}`, f.server.URL)
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.lastAPIKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1beta/models/veo-3.1-generate-preview:predictLongRunning":
			if f.submitCode != http.StatusOK {
				w.WriteHeader(f.submitCode)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
				return
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastSubmit))
			_, _ = w.Write([]byte(`{"name":"operations/op-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/operations/op-1":
			n := f.polls.Add(1)
			if n <= f.pendingPoll {
				_, _ = w.Write([]byte(`{"name":"operations/op-1","done":false}`))
				return
			}
			_, _ = w.Write([]byte(f.pollBody(f)))
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/files/clip1:download":
			if f.downloadErr {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("backend unavailable"))
				return
			}
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("MP4DATA"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeVeo) provider(t *testing.T, maxPolls int, opts ...Option) *VeoProvider {
	t.Helper()
	opts = append([]Option{WithHTTPClient(f.server.Client()), WithSleep(noSleep)}, opts...)
	p, err := NewVeoProvider(context.Background(), VeoConfig{
		APIKey:          "test-key",
		BaseURL:         f.server.URL,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: maxPolls,
	}, zap.NewNop(), opts...)
	require.NoError(t, err)
	return p
}

func TestNewVeoProvider_Defaults(t *testing.T) {
	p, err := NewVeoProvider(context.Background(), VeoConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "veo", p.Name())
	assert.Equal(t, DefaultVeoConfig().BaseURL, p.cfg.BaseURL)
	assert.Equal(t, DefaultVeoConfig().Model, p.cfg.Model)
	assert.Equal(t, 10*time.Second, p.cfg.PollInterval)
	assert.Equal(t, 90, p.cfg.MaxPollAttempts)
	assert.NotNil(t, p.client)
}

func TestVeoProvider_GenerateVideo_WithReferences(t *testing.T) {
	f := newFakeVeo(t, 2)
	reg := prometheus.NewRegistry()
	p := f.provider(t, 10, WithCollector(metrics.NewCollector("test", reg, nil)))

	data, err := p.GenerateVideo(context.Background(), &GenerateRequest{
		Prompt:          "Hero walks into the rain",
		NegativePrompt:  "blurry",
		StartFrame:      pngHeader,
		EndFrame:        []byte("not an image"),
		DurationSeconds: 8,
		ReferenceImages: [][]byte{pngHeader, pngHeader},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("MP4DATA"), data)
	assert.Equal(t, int32(3), f.polls.Load())
	assert.Equal(t, "test-key", f.lastAPIKey)

	require.Len(t, f.lastSubmit.Instances, 1)
	inst := f.lastSubmit.Instances[0]
	assert.Equal(t, "Hero walks into the rain", inst.Prompt)
	require.NotNil(t, inst.Image)
	assert.Equal(t, "image/png", inst.Image.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), inst.Image.BytesBase64Encoded)
	require.NotNil(t, inst.LastFrame)
	assert.Equal(t, "image/png", inst.LastFrame.MimeType)
	require.Len(t, inst.ReferenceImages, 2)
	assert.Equal(t, "ASSET", inst.ReferenceImages[0].ReferenceType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), inst.ReferenceImages[1].Image.BytesBase64Encoded)

	params := f.lastSubmit.Parameters
	assert.Equal(t, 8, params.DurationSeconds)
	assert.Equal(t, "16:9", params.AspectRatio)
	assert.Equal(t, "blurry", params.NegativePrompt)
	assert.Equal(t, PersonGenerationAllowAdult, params.PersonGeneration)

	count, err := testutil.GatherAndCount(reg, "test_video_poll_iterations")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVeoProvider_GenerateVideo_NoReferences(t *testing.T) {
	f := newFakeVeo(t, 0)
	p := f.provider(t, 5)

	_, err := p.GenerateVideo(context.Background(), &GenerateRequest{Prompt: "establishing shot", DurationSeconds: 5})
	require.NoError(t, err)

	inst := f.lastSubmit.Instances[0]
	assert.Nil(t, inst.Image)
	assert.Nil(t, inst.LastFrame)
	assert.Empty(t, inst.ReferenceImages)
	assert.Empty(t, f.lastSubmit.Parameters.PersonGeneration)
	assert.Equal(t, 5, f.lastSubmit.Parameters.DurationSeconds)
}

func TestVeoProvider_GenerateVideo_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		refs     int
		contains []string
	}{
		{name: "reference with 5s", duration: 5, refs: 1, contains: []string{"8", "5"}},
		{name: "four references", duration: 8, refs: 4, contains: []string{"3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeVeo(t, 0)
			refs := make([][]byte, tt.refs)
			for i := range refs {
				refs[i] = pngHeader
			}

			_, err := f.provider(t, 5).GenerateVideo(context.Background(), &GenerateRequest{
				Prompt: "x", DurationSeconds: tt.duration, ReferenceImages: refs,
			})
			require.Error(t, err)
			assert.True(t, types.IsValidation(err))
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
			assert.Equal(t, int32(0), f.hits.Load())
		})
	}
}

func TestVeoProvider_GenerateVideo_JobError(t *testing.T) {
	f := newFakeVeo(t, 1)
	f.pollBody = func(*fakeVeo) string {
		return `{"name":"operations/op-1","done":true,"error":{"code":3,"message":"prompt rejected"}}`
	}

	_, err := f.provider(t, 5).GenerateVideo(context.Background(), &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))
	assert.Contains(t, err.Error(), "prompt rejected")
}

func TestVeoProvider_GenerateVideo_Filtered(t *testing.T) {
	f := newFakeVeo(t, 0)
	f.pollBody = func(*fakeVeo) string {
		return `{"name":"operations/op-1","done":true,"response":{"generateVideoResponse":{"raiMediaFilteredCount":1,"raiMediaFilteredReasons":["celebrity likeness"]}}}`
	}

	_, err := f.provider(t, 5).GenerateVideo(context.Background(), &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))
	assert.Contains(t, err.Error(), "celebrity likeness")
}

func TestVeoProvider_GenerateVideo_MaxPolls(t *testing.T) {
	f := newFakeVeo(t, 1000)

	_, err := f.provider(t, 3).GenerateVideo(context.Background(), &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))
	assert.Contains(t, err.Error(), "not done after 3")
	assert.Equal(t, int32(3), f.polls.Load())
}

func TestVeoProvider_GenerateVideo_SubmitError(t *testing.T) {
	f := newFakeVeo(t, 0)
	f.submitCode = http.StatusBadRequest

	_, err := f.provider(t, 3).GenerateVideo(context.Background(), &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusBadRequest, typed.HTTPStatus)
	assert.Equal(t, "veo", typed.Provider)
	assert.Equal(t, int32(0), f.polls.Load())
}

func TestVeoProvider_GenerateVideo_DownloadError(t *testing.T) {
	f := newFakeVeo(t, 0)
	f.downloadErr = true

	_, err := f.provider(t, 3).GenerateVideo(context.Background(), &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))
	assert.Contains(t, err.Error(), "status=500")

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusInternalServerError, typed.HTTPStatus)
}

func TestVeoProvider_GenerateVideo_Cancelled(t *testing.T) {
	f := newFakeVeo(t, 1000)
	ctx, cancel := context.WithCancel(context.Background())

	p := f.provider(t, 50, WithSleep(func(ctx context.Context, _ time.Duration) error {
		if f.polls.Load() >= 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}))

	_, err := p.GenerateVideo(ctx, &GenerateRequest{Prompt: "x", DurationSeconds: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(2), f.polls.Load())
}

func TestEncodeImage_MimeFallback(t *testing.T) {
	assert.Equal(t, "image/png", encodeImage([]byte("plain text")).MIMEType)
	assert.Equal(t, "image/jpeg", encodeImage([]byte("\xff\xd8\xff\xe0rest")).MIMEType)
	assert.Equal(t, pngHeader, encodeImage(pngHeader).ImageBytes)
}

func TestNewVeoProvider_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewVeoProvider(context.Background(), VeoConfig{}, nil)
	require.Error(t, err)
	assert.True(t, types.IsProvider(err))
}
