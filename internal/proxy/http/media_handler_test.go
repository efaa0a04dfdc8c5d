package http

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (tc *testComponents) mediaRouter() *gin.Engine {
	handler := NewMediaHandler(tc.codec, tc.fetcher, tc.rewriter, tc.metrics, tc.logger)
	router := gin.New()
	router.GET("/image/:token", handler.Image)
	router.GET("/asset/:token", handler.Asset)
	return router
}

func TestMediaHandler_Image(t *testing.T) {
	t.Run("RelaysImageBytes", func(t *testing.T) {
		imageBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(imageBytes)
		}))
		defer upstream.Close()

		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/image/"+tc.encode(t, upstream.URL+"/logo.png"), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
		assert.Equal(t, mediaCacheControl, recorder.Header().Get("Cache-Control"))
		assert.Equal(t, imageBytes, recorder.Body.Bytes())
	})

	t.Run("InvalidTokenServesPlaceholder", func(t *testing.T) {
		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/image/garbage", nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "image/gif", recorder.Header().Get("Content-Type"))
		assert.Equal(t, transparentPixelGIF, recorder.Body.Bytes())
	})

	t.Run("FetchFailureServesPlaceholder", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		target := upstream.URL
		upstream.Close()

		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/image/"+tc.encode(t, target+"/logo.png"), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "image/gif", recorder.Header().Get("Content-Type"))
		assert.Equal(t, transparentPixelGIF, recorder.Body.Bytes())
	})
}

func TestMediaHandler_Asset(t *testing.T) {
	t.Run("RewritesCSS", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte(`body { background: url(../img/x.png); }`))
		}))
		defer upstream.Close()

		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/asset/"+tc.encode(t, upstream.URL+"/css/site.css"), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		matches := regexp.MustCompile(`url\('/asset/([0-9a-f]+:[0-9a-f]+)'\)`).
			FindStringSubmatch(recorder.Body.String())
		require.Len(t, matches, 2)

		destination, err := tc.codec.Decode(matches[1])
		require.NoError(t, err)
		assert.Equal(t, upstream.URL+"/img/x.png", destination)
	})

	t.Run("PassesThroughScripts", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/javascript")
			_, _ = w.Write([]byte(`console.log("hi");`))
		}))
		defer upstream.Close()

		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/asset/"+tc.encode(t, upstream.URL+"/app.js"), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, `console.log("hi");`, recorder.Body.String())
	})

	t.Run("InvalidTokenReturnsEmpty404", func(t *testing.T) {
		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/asset/garbage", nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("FetchFailureReturnsEmpty404", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		target := upstream.URL
		upstream.Close()

		tc := setupTestComponents(t, 5*time.Second)
		router := tc.mediaRouter()

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/asset/"+tc.encode(t, target+"/site.css"), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})
}
