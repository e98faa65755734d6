package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-labeler/internal/annotation"
	"image-labeler/internal/config"
	"image-labeler/pkg/geometry"
)

func newTestServer() *Server {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Server.MaxPixels = 10000
	return New(cfg, nil)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func maskRequest() MaskRequest {
	return MaskRequest{
		Width:  4,
		Height: 3,
		Labels: []LabelSpec{{Name: "car", Color: "ffff0000"}},
		Boxes: []annotation.BoundingBox{
			{Rect: geometry.RectXYWH(1, 1, 2, 1), LabelID: 1},
		},
	}
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":"disabled"`)

	w = do(t, s, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "git_commit")
}

func TestMaskJSON(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/v1/mask?format=json", maskRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var resp MaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, [][]int{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	}, resp.Rows)
}

func TestMaskPNG(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/v1/mask", maskRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g+b)
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Zero(t, r)
}

func TestMaskRejects(t *testing.T) {
	s := newTestServer()

	big := maskRequest()
	big.Width = 1000
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/mask", big).Code)

	// sizes whose product wraps around
	for _, size := range [][2]int{{1 << 62, 4}, {1 << 32, 1 << 32}} {
		wrapped := maskRequest()
		wrapped.Width, wrapped.Height = size[0], size[1]
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/mask?format=json", wrapped).Code)
		assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/mask", wrapped).Code)
	}

	badColor := maskRequest()
	badColor.Labels[0].Color = "nothex"
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/mask", badColor).Code)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/mask?format=gif", maskRequest()).Code)
}

func TestValidate(t *testing.T) {
	s := newTestServer()
	cases := []struct {
		req   ValidateRequest
		code  int
		valid bool
	}{
		{ValidateRequest{Kind: "box", Text: "1;2;3;4;"}, http.StatusOK, true},
		{ValidateRequest{Kind: "box", Text: "1;2;0;4;"}, http.StatusOK, false},
		{ValidateRequest{Kind: "poly", Text: "1;2;3;4;5;6;"}, http.StatusOK, true},
		{ValidateRequest{Kind: "poly", Text: "1;2;3;"}, http.StatusOK, false},
		{ValidateRequest{Kind: "circle", Text: "1;"}, http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		w := do(t, s, http.MethodPost, "/api/v1/validate", tc.req)
		require.Equal(t, tc.code, w.Code, tc.req.Text)
		if tc.code != http.StatusOK {
			continue
		}
		var resp ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.valid, resp.Valid, tc.req.Text)
	}
}
