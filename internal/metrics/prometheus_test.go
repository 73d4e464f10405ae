package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, recorder *Recorder) string {
	t.Helper()
	response := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if response.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", response.Code)
	}
	return response.Body.String()
}

func TestMiddlewareCountsRequestsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := NewRecorder()

	router := gin.New()
	router.Use(recorder.Middleware())
	router.GET("/rest/ships/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, path := range []string{"/rest/ships/1", "/rest/ships/2", "/elsewhere"} {
		request := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		router.ServeHTTP(httptest.NewRecorder(), request)
	}

	exposition := scrape(t, recorder)
	if !strings.Contains(exposition, `shipyard_api_http_requests_total{method="GET",route="/rest/ships/:id",status="404"} 2`) {
		t.Fatalf("expected 2 routed requests in exposition:\n%s", exposition)
	}
	if !strings.Contains(exposition, `shipyard_api_http_requests_total{method="GET",route="unmatched",status="404"} 1`) {
		t.Fatalf("expected 1 unmatched request in exposition:\n%s", exposition)
	}
}

func TestHandlerExposesCatalogMutations(t *testing.T) {
	recorder := NewRecorder(WithNamespace("test"))
	recorder.RecordCatalogMutation("create", "ok")

	exposition := scrape(t, recorder)
	if !strings.Contains(exposition, `test_api_catalog_mutations_total{operation="create",outcome="ok"} 1`) {
		t.Fatalf("missing mutation counter in exposition:\n%s", exposition)
	}
}

func TestRecordCatalogMutationOnNilRecorder(t *testing.T) {
	var recorder *Recorder
	recorder.RecordCatalogMutation("delete", "ok")
}

func TestOptionsConfigureCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	recorder := NewRecorder(
		WithSubsystem("catalog"),
		WithRegistry(registry),
		WithHistogramBuckets([]float64{0.5}),
	)
	if recorder.Registry() != registry {
		t.Fatalf("expected recorder to use the supplied registry")
	}

	router := gin.New()
	router.Use(recorder.Middleware())
	router.GET("/rest/ships", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rest/ships", http.NoBody))

	exposition := scrape(t, recorder)
	if !strings.Contains(exposition, `shipyard_catalog_http_request_duration_seconds_bucket{method="GET",route="/rest/ships",le="0.5"} 1`) {
		t.Fatalf("expected custom bucket in exposition:\n%s", exposition)
	}
}
