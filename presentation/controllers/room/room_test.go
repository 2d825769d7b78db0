package room

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	hostUseCase "github.com/promptroom/api/application/usecases/host"
	"github.com/promptroom/api/infrastructure/config"
	"github.com/promptroom/api/infrastructure/events"
	"github.com/promptroom/api/infrastructure/logger"
	persistence "github.com/promptroom/api/infrastructure/persistence/repository"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	log, err := logger.NewDevelopmentLogger()
	require.NoError(t, err)

	uc := hostUseCase.NewHostUseCase(
		persistence.NewHostRepository(client),
		persistence.NewLeaseRepository(client),
		events.NewPublisher(client),
		log,
		cfg,
	)

	router := gin.New()
	controller := NewRoomController(uc)
	router.POST("/room/claim-host", controller.ClaimHost)
	router.POST("/room/heartbeat", controller.Heartbeat)
	router.POST("/room/release-host", controller.ReleaseHost)
	router.GET("/room/state", controller.GetState)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func claimBody(addr string) map[string]any {
	return map[string]any{
		"host_addr":         addr,
		"rate_per_thousand": 0.001,
		"model_endpoint":    "http://127.0.0.1:1234",
		"model_id":          "test-model",
		"model_token":       "secret-token",
	}
}

func TestClaimHostEndpoint(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/room/claim-host", claimBody("0xhost"))
	require.Equal(http.StatusOK, recorder.Code)

	var response HostResponse
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal("0xhost", response.HostAddr)
	require.Equal("0xhost", response.RecvAddr)
	require.True(response.Connected)

	// The model token never leaves the coordination core.
	require.NotContains(recorder.Body.String(), "secret-token")
}

func TestClaimHostConflict(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/room/claim-host", claimBody("0xfirst"))
	require.Equal(http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/room/claim-host", claimBody("0xsecond"))
	require.Equal(http.StatusConflict, recorder.Code)

	var response ErrorResponse
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal("room_hosted", response.Error)
	require.False(response.Retryable)
}

func TestClaimHostValidation(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/room/claim-host", map[string]any{
		"host_addr": "0xhost",
	})
	require.Equal(http.StatusBadRequest, recorder.Code)
}

func TestHeartbeatEndpoint(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/room/heartbeat", map[string]any{
		"host_addr": "0xnobody",
	})
	require.Equal(http.StatusNotFound, recorder.Code)

	doJSON(t, router, http.MethodPost, "/room/claim-host", claimBody("0xhost"))

	recorder = doJSON(t, router, http.MethodPost, "/room/heartbeat", map[string]any{
		"host_addr": "0xhost",
	})
	require.Equal(http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/room/heartbeat", map[string]any{
		"host_addr": "0xintruder",
	})
	require.Equal(http.StatusForbidden, recorder.Code)
}

func TestReleaseAndState(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/room/claim-host", claimBody("0xhost"))

	recorder := doJSON(t, router, http.MethodGet, "/room/state", nil)
	require.Equal(http.StatusOK, recorder.Code)

	var state RoomStateResponse
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &state))
	require.True(state.Online)
	require.NotNil(state.Host)

	recorder = doJSON(t, router, http.MethodPost, "/room/release-host", map[string]any{
		"host_addr": "0xhost",
	})
	require.Equal(http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/room/state", nil)
	require.Equal(http.StatusOK, recorder.Code)

	// Fresh struct: the released-state body omits "host" entirely, and
	// unmarshaling into the earlier value would keep its stale pointer.
	var released RoomStateResponse
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &released))
	require.False(released.Online)
	require.Nil(released.Host)

	// Releasing again stays a success.
	recorder = doJSON(t, router, http.MethodPost, "/room/release-host", map[string]any{
		"host_addr": "0xhost",
	})
	require.Equal(http.StatusOK, recorder.Code)
}
