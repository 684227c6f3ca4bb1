package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_WritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})
	chain := RequestLogger(logger)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/roles", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "inside", inner["message"])
	assert.NotEmpty(t, inner["req_id"])
	assert.Equal(t, inner["req_id"], access["req_id"])
	assert.Equal(t, "/v1/roles", access["path"])
	assert.EqualValues(t, http.StatusTeapot, access["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}
