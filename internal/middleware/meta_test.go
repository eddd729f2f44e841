package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var got map[string]interface{}
	r.GET("/drives", func(c *gin.Context) {
		SetCacheHit(c, true)
		got = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/drives", nil))

	assert.Equal(t, true, got["cache_hit"])
	assert.Contains(t, got, "processing_time_ms")
}

func TestResponseMetaWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	m := ResponseMeta(c)
	assert.NotNil(t, m)
	assert.NotContains(t, m, "processing_time_ms")
}
