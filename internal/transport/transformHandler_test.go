package transport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundai-club/climatime-machine/internal/entity"
	"github.com/sundai-club/climatime-machine/internal/pkg/compositor"
	"github.com/sundai-club/climatime-machine/internal/pkg/generator"
	"github.com/sundai-club/climatime-machine/internal/pkg/kafka"
	"github.com/sundai-club/climatime-machine/internal/pkg/storage"
	"github.com/sundai-club/climatime-machine/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.PanicLevel)
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, c), imaging.PNG))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, files []formFile, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		header.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newRouter(t *testing.T, maxBytes int64, stub *generator.Stub) *gin.Engine {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return newRouterWithLogger(t, maxBytes, stub, logrus.NewEntry(logger))
}

func newRouterWithLogger(t *testing.T, maxBytes int64, stub *generator.Stub, logger *logrus.Entry) *gin.Engine {
	t.Helper()

	store, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	comp, err := compositor.New(compositor.Options{Logger: logger})
	require.NoError(t, err)

	svc := service.NewTransformService(store, stub, comp, kafka.NewMockProducer(logger), maxBytes, logger)
	return InitRoutes(NewTransformHandler(svc, maxBytes, logger), 5*time.Second)
}

func newStub(t *testing.T) *generator.Stub {
	return &generator.Stub{Generation: &generator.Generation{
		Image:    encodePNG(t, 64, 64, color.NRGBA{R: 220, G: 60, B: 10, A: 255}),
		MIMEType: "image/png",
		Caption:  "Still Going Here?",
	}}
}

func TestHealth(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"climatime-machine"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/transform", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTransformHandler(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))
	req := multipartRequest(t, "/api/v1/transform", []formFile{
		{field: "image", filename: "street.png", contentType: "image/png", data: encodePNG(t, 200, 100, color.White)},
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp entity.TransformResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Still Going Here?", resp.Caption)
	assert.Equal(t, "image/png", resp.MimeType)
	assert.Equal(t, "stacked", resp.Layout)

	merged, err := base64.StdEncoding.DecodeString(resp.MergedImage)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(merged))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 300), img.Bounds().Size())

	generated, err := base64.StdEncoding.DecodeString(resp.GeneratedImage)
	require.NoError(t, err)
	assert.NotEmpty(t, generated)
}

func TestTransformHandlerErrors(t *testing.T) {
	png := encodePNG(t, 20, 20, color.White)
	oversized := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 4096)...)

	tests := []struct {
		name       string
		maxBytes   int64
		genErr     error
		files      []formFile
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "missing file",
			maxBytes:   10 << 20,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong field name",
			maxBytes:   10 << 20,
			files:      []formFile{{field: "photo", filename: "a.png", contentType: "image/png", data: png}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "declared non-image",
			maxBytes:   10 << 20,
			files:      []formFile{{field: "image", filename: "a.txt", contentType: "text/plain", data: png}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sniffed non-image",
			maxBytes:   10 << 20,
			files:      []formFile{{field: "image", filename: "a.png", contentType: "image/png", data: []byte("hello there")}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too large",
			maxBytes:   1024,
			files:      []formFile{{field: "image", filename: "a.png", contentType: "image/png", data: oversized}},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "missing api key",
			maxBytes:   10 << 20,
			genErr:     generator.ErrMissingAPIKey,
			files:      []formFile{{field: "image", filename: "a.png", contentType: "image/png", data: png}},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
		{
			name:       "no image generated",
			maxBytes:   10 << 20,
			genErr:     generator.ErrNoImageGenerated,
			files:      []formFile{{field: "image", filename: "a.png", contentType: "image/png", data: png}},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(t)
			stub.Err = tt.genErr
			router := newRouter(t, tt.maxBytes, stub)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/api/v1/transform", tt.files, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Len(t, stub.Requests(), tt.wantCalls)
		})
	}
}

func TestMergeHandler(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))
	req := multipartRequest(t, "/api/v1/merge", []formFile{
		{field: "original", filename: "o.png", contentType: "image/png", data: encodePNG(t, 1000, 800, color.White)},
		{field: "generated", filename: "g.png", contentType: "image/png", data: encodePNG(t, 512, 512, color.Black)},
	}, map[string]string{"title": "Still Going Here?"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	img, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1000, 1800), img.Bounds().Size())
}

func TestMergeHandlerOversizedCanvas(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	router := newRouterWithLogger(t, 10<<20, newStub(t), logrus.NewEntry(logger))

	// stacking a 1x1000 strip under a 1000x1 strip would need a 1000x1000001 canvas
	req := multipartRequest(t, "/api/v1/merge", []formFile{
		{field: "original", filename: "o.png", contentType: "image/png", data: encodePNG(t, 1000, 1, color.White)},
		{field: "generated", filename: "g.png", contentType: "image/png", data: encodePNG(t, 1, 1000, color.Black)},
	}, map[string]string{"title": "tall"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "merge failed")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "transport", entry.Data["component"])
}

func TestMergeHandlerMissingGenerated(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))
	req := multipartRequest(t, "/api/v1/merge", []formFile{
		{field: "original", filename: "o.png", contentType: "image/png", data: encodePNG(t, 10, 10, color.White)},
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenariosHandler(t *testing.T) {
	router := newRouter(t, 10<<20, newStub(t))

	t.Run("lookup", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scenarios?description=Snowy+peaks", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp entity.ScenarioResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Snowy peaks", resp.Description)
		assert.NotEmpty(t, resp.Scenario)
	})

	t.Run("table", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Scenarios []json.RawMessage `json:"scenarios"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Scenarios)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: entity.ErrNoFile, want: http.StatusBadRequest},
		{err: fmt.Errorf("original: %w", entity.ErrUnsupportedType), want: http.StatusBadRequest},
		{err: entity.ErrFileTooLarge, want: http.StatusRequestEntityTooLarge},
		{err: generator.ErrMissingAPIKey, want: http.StatusInternalServerError},
		{err: fmt.Errorf("merge: %w", compositor.ErrMergeFailed), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
