package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dithermask/pkg/buildinfo"
	"github.com/matzehuels/dithermask/pkg/cache"
	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return New(pipeline.NewRunner(c, nil, nil), opts...)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVersion(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info buildinfo.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, buildinfo.Version, info.Version)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "a fresh request ID is assigned")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestCreateMask_PNG(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/masks", `{"dims":[8,8]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.NotEmpty(t, rec.Header().Get("X-Mask-Hash"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestCreateMask_JSON(t *testing.T) {
	rec := do(newTestServer(t), http.MethodPost, "/v1/masks?format=json", `{"dims":[4,4],"sigma":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var m struct {
		Dims   []int     `json:"dims"`
		Values []float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, []int{4, 4}, m.Dims)
	assert.Len(t, m.Values, 16)
}

func TestCreateMask_CacheHit(t *testing.T) {
	s := newTestServer(t)
	body := `{"dims":[8,8],"seed":7}`

	first := do(s, http.MethodPost, "/v1/masks", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))

	second := do(s, http.MethodPost, "/v1/masks", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Header().Get("X-Mask-Hash"), second.Header().Get("X-Mask-Hash"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestCreateMask_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   derrors.Code
	}{
		{"malformed body", "/v1/masks", `{"dims":`, http.StatusBadRequest, derrors.ErrCodeInvalidInput},
		{"unknown field", "/v1/masks", `{"dims":[4],"colour":1}`, http.StatusBadRequest, derrors.ErrCodeInvalidInput},
		{"no dims", "/v1/masks", `{}`, http.StatusBadRequest, derrors.ErrCodeInvalidDimensions},
		{"zero extent", "/v1/masks", `{"dims":[4,0]}`, http.StatusBadRequest, derrors.ErrCodeInvalidDimensions},
		{"bad format", "/v1/masks?format=gif", `{"dims":[4,4]}`, http.StatusBadRequest, derrors.ErrCodeInvalidFormat},
		{"bad level", "/v1/masks", `{"dims":[4,4],"level":2}`, http.StatusBadRequest, derrors.ErrCodeInvalidLevel},
		{"too large", "/v1/masks", `{"dims":[32,32]}`, http.StatusRequestEntityTooLarge, derrors.ErrCodeTooLarge},
	}

	s := newTestServer(t, WithMaxPixels(256))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestCreateMask_NonConvergence(t *testing.T) {
	// A single homogenize move cannot spread a dense cluster.
	rec := do(newTestServer(t), http.MethodPost, "/v1/masks",
		`{"dims":[16,16],"seed_fraction":0.4,"max_iterations":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, derrors.ErrCodeNonConvergence, decodeError(t, rec).Code)
}

func TestNotFound(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/v2/masks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, derrors.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(newTestServer(t), http.MethodGet, "/v1/masks", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{derrors.New(derrors.ErrCodeShapeMismatch, "x"), http.StatusBadRequest},
		{derrors.New(derrors.ErrCodeInvalidSeedCount, "x"), http.StatusBadRequest},
		{derrors.New(derrors.ErrCodeTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{derrors.New(derrors.ErrCodeNonConvergence, "x"), http.StatusUnprocessableEntity},
		{derrors.New(derrors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{derrors.New(derrors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), "%v", tt.err)
	}
}
