package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bcdservices/dashboard-api/pkg/auth"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
	"github.com/bcdservices/dashboard-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	w = serve(engine, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Recovery())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, httputil.StatusError, resp.Status)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotEmpty(t, resp.TraceID)
}

func TestErrorHandler(t *testing.T) {
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/missing", func(c *gin.Context) { _ = c.Error(apperrors.NewNotFound("slot 9:15", nil)) })
	engine.GET("/upstream", func(c *gin.Context) { _ = c.Error(apperrors.NewUpstream("backend error", errors.New("502"))) })
	engine.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("secret detail")) })
	engine.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("logged only"))
		c.Status(http.StatusAccepted)
	})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "slot 9:15 not found", decode(t, w).Message)

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/upstream", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret detail")

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dashboard.example.fr"}
	engine := gin.New()
	engine.Use(CORS(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://dashboard.example.fr")
	w := serve(engine, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.example.fr", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(engine, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1})
	engine := gin.New()
	engine.Use(rl.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(engine, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestAuthenticate(t *testing.T) {
	const secret = "test-secret"
	m := NewAuthMiddleware(auth.NewHMACValidator(secret, "", 0))
	engine := gin.New()
	engine.Use(Logger(), m.Authenticate())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextUserEmail)) })

	claims := auth.Claims{
		Email:            "ops@example.fr",
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := map[string]struct {
		header string
		status int
	}{
		"missing":    {header: "", status: http.StatusUnauthorized},
		"bad scheme": {header: "Basic abc", status: http.StatusUnauthorized},
		"bad token":  {header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		"valid":      {header: "Bearer " + token, status: http.StatusOK},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(engine, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "ops@example.fr", w.Body.String())
			}
		})
	}
}

type slotBody struct {
	Day  *int   `json:"day" binding:"required,gte=0,lte=4"`
	Slot string `json:"slot" binding:"required,slotlabel"`
}

func TestValidationAnswersBindErrors(t *testing.T) {
	engine := gin.New()
	engine.Use(ErrorHandler(), Validation())
	engine.POST("/", func(c *gin.Context) {
		var body slotBody
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"day":7,"slot":"09:00"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp.Message, "day")
	assert.Contains(t, resp.Message, "slot must be a half-hour label")
	assert.Len(t, resp.Data, 2)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"day":1,"slot":"9:30"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", decode(t, w).Message)
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond}))
	engine.GET("/", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(SizeLimit(8))
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 4))))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCacheHeaders(t *testing.T) {
	engine := gin.New()
	engine.GET("/products", CacheControl(300), func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/schedule", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, "private, max-age=300", w.Header().Get("Cache-Control"))

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/schedule", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	engine := gin.New()
	engine.Use(Metrics(m), SecurityHeaders())
	engine.GET("/schedule/:day", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/schedule/2", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	serve(engine, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/schedule/:day", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
