package requestid

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runRequest(t *testing.T, inboundID string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var ctxID string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		ctxID = Value(c)
		c.Status(200)
	})

	req := httptest.NewRequest("GET", "/", nil)
	if inboundID != "" {
		req.Header.Set("X-Request-ID", inboundID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return ctxID, w.Header().Get("X-Request-ID")
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	ctxID, headerID := runRequest(t, "")
	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, headerID)
}

func TestRequestIDHonoursInbound(t *testing.T) {
	ctxID, headerID := runRequest(t, "trace-abc-123")
	assert.Equal(t, "trace-abc-123", ctxID)
	assert.Equal(t, "trace-abc-123", headerID)
}

func TestRequestIDReplacesOversizedInbound(t *testing.T) {
	oversized := strings.Repeat("x", maxInboundIDLen+1)
	ctxID, headerID := runRequest(t, oversized)
	assert.NotEqual(t, oversized, ctxID)
	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, headerID)
}
