package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})
	return router
}

func swaggerRequest(router http.Handler, remoteAddr, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: false}, nil), "", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "API documentation is not available")
	})

	t.Run("enabled without restrictions", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: true}, nil), "", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ip whitelist", func(t *testing.T) {
		router := swaggerRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8"}}, nil)

		assert.Equal(t, http.StatusOK, swaggerRequest(router, "127.0.0.1:1234", "").Code)
		assert.Equal(t, http.StatusOK, swaggerRequest(router, "10.20.30.40:1234", "").Code)
		assert.Equal(t, http.StatusForbidden, swaggerRequest(router, "192.168.1.10:1234", "").Code)
	})

	t.Run("require auth", func(t *testing.T) {
		jwtService := newTestJWTService()
		router := swaggerRouter(
			SwaggerConfig{Enabled: true, RequireAuth: true},
			JWTAuthMiddleware(JWTMiddlewareConfig{JWTService: jwtService}),
		)

		assert.Equal(t, http.StatusUnauthorized, swaggerRequest(router, "", "").Code)

		token, err := jwtService.GenerateToken(uuid.New(), "admin")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, swaggerRequest(router, "", token.Value).Code)
	})
}

func TestSwaggerConfigFrom(t *testing.T) {
	cfg := SwaggerConfigFrom(config.SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.0/8"}})

	assert.Equal(t, SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.0/8"}}, cfg)
}

func TestIsIPAllowed(t *testing.T) {
	_, network, err := net.ParseCIDR("192.168.0.0/16")
	require.NoError(t, err)
	ips := []net.IP{net.ParseIP("::1")}
	nets := []*net.IPNet{network}

	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("192.168.4.2"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("172.16.0.1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
