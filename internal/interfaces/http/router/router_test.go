package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("treasury", "/tesoreria")
	r.Register(group)

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("system", "/system")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-Guard", "checked")
		c.Next()
	})

	group := NewDomainGroup("sales", "/ventas")
	group.GET("/:id/cronograma", func(c *gin.Context) {
		c.String(http.StatusOK, "cronograma")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/ventas/abc/cronograma", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "checked", w.Header().Get("X-Guard"),
		"router-level middleware applies to every API route")
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("treasury", "/tesoreria")
		assert.Equal(t, "treasury", g.Name())
		assert.Equal(t, "/tesoreria", g.Prefix())
	})

	t.Run("registers GET route", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("treasury", "/tesoreria")
		g.GET("/solicitudes/pendientes", func(c *gin.Context) {
			c.String(http.StatusOK, "pendientes")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/tesoreria/solicitudes/pendientes", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("registers POST route", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("treasury", "/tesoreria")
		g.POST("/solicitudes", func(c *gin.Context) {
			c.String(http.StatusCreated, "created")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("POST", "/api/v1/tesoreria/solicitudes", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("registers PATCH route", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("treasury", "/tesoreria")
		g.PATCH("/solicitudes/:id/estado", func(c *gin.Context) {
			c.String(http.StatusOK, "patched")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("PATCH", "/api/v1/tesoreria/solicitudes/SOL-1/estado", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("treasury", "/tesoreria")

		g.Use(func(c *gin.Context) {
			c.Header("X-Api-Token-Checked", "yes")
			c.Next()
		})

		g.GET("/formas-pago", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("GET", "/api/v1/tesoreria/formas-pago", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "yes", w.Header().Get("X-Api-Token-Checked"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("sales", "/ventas")

		schedule := g.Group("schedule", "/:id/cronograma")
		schedule.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "cronograma")
		})

		commissions := g.Group("commissions", "/:id/comisiones")
		commissions.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "comisiones")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req1 := httptest.NewRequest("GET", "/api/v1/ventas/abc/cronograma", nil)
		w1 := httptest.NewRecorder()
		engine.ServeHTTP(w1, req1)
		assert.Equal(t, http.StatusOK, w1.Code)
		assert.Equal(t, "cronograma", w1.Body.String())

		req2 := httptest.NewRequest("GET", "/api/v1/ventas/abc/comisiones", nil)
		w2 := httptest.NewRecorder()
		engine.ServeHTTP(w2, req2)
		assert.Equal(t, http.StatusOK, w2.Code)
		assert.Equal(t, "comisiones", w2.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	treasury := NewDomainGroup("treasury", "/tesoreria")
	treasury.GET("/solicitudes/pendientes", func(c *gin.Context) {
		c.String(http.StatusOK, "pendientes")
	})

	commissions := NewDomainGroup("commissions", "/comisiones")
	commissions.GET("/cola", func(c *gin.Context) {
		c.String(http.StatusOK, "cola")
	})

	r.Register(treasury).Register(commissions)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/tesoreria/solicitudes/pendientes", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "pendientes", w1.Body.String())

	req2 := httptest.NewRequest("GET", "/api/v1/comisiones/cola", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "cola", w2.Body.String())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("treasury", "/tesoreria")
	g.POST("/solicitudes", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
		GET("/solicitudes/pendientes", func(c *gin.Context) { c.String(http.StatusOK, "b") }).
		GET("/formas-pago", func(c *gin.Context) { c.String(http.StatusOK, "c") })

	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/tesoreria/solicitudes"},
		{"GET", "/api/v1/tesoreria/solicitudes/pendientes"},
		{"GET", "/api/v1/tesoreria/formas-pago"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Route %s %s should work", tt.method, tt.path)
	}
}
