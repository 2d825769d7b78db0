package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMetricsEndpointUsesProjectNamespace(t *testing.T) {
	require := require.New(t)
	gin.SetMode(gin.TestMode)

	m := NewManager()
	m.CountSettlement(OutcomeSettled)
	m.AddChargedMicro(1500)
	m.ObserveInferenceSeconds(0.25)

	router := gin.New()
	GetHandler(router.Group("/observability"), m)

	req := httptest.NewRequest(http.MethodGet, "/observability/metrics", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	require.Contains(body, `promptroom_settlements_total{outcome="settled"} 1`)
	require.Contains(body, "promptroom_charged_micro_units_total 1500")
	require.Contains(body, "promptroom_inference_duration_seconds")

	// Runtime gauges set by the scrape middleware share the namespace.
	require.Contains(body, "promptroom_go_routines")
	require.Contains(body, "promptroom_sys_memory_alloc")
	require.NotContains(body, "app_go_routines")
}
