package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	set := make(map[string]bool)
	for _, rt := range r.Routes() {
		set[rt.Method+" "+rt.Path] = true
	}
	return set
}

func TestRegisterSubscriptionRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/subscriptions"])
	require.True(t, routes["GET /api/v1/subscriptions/:id"])
	require.True(t, routes["POST /api/v1/subscriptions/:id/slots"])
	require.True(t, routes["PUT /api/v1/subscriptions/:id/slots/:slot_id"])
	require.True(t, routes["DELETE /api/v1/subscriptions/:id/slots/:slot_id"])
	require.True(t, routes["GET /api/v1/subscriptions/:id/conflicts"])
	require.True(t, routes["GET /api/v1/subscriptions/:id/preview"])
	require.True(t, routes["POST /api/v1/subscriptions/:id/activate"])
	require.True(t, routes["POST /api/v1/subscriptions/:id/pause"])
	require.True(t, routes["POST /api/v1/subscriptions/:id/resume"])
	require.True(t, routes["POST /api/v1/subscriptions/:id/cancel"])
	require.True(t, routes["GET /api/v1/subscriptions/:id/occurrences"])
}

func TestRegisterSessionRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSessionRoutes(r.Group("/api/v1"), nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/v1/occurrences/:id/fee"])
	require.True(t, routes["POST /api/v1/occurrences/:id/cancel"])
	require.True(t, routes["POST /api/v1/occurrences/:id/reschedule"])
	require.True(t, routes["POST /api/v1/bookings"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/list_occurrences"])
	require.True(t, routes["GET /api/v1/admin/due_charges"])
	require.True(t, routes["GET /api/v1/admin/occurrences/:id/charges"])
	require.True(t, routes["POST /api/v1/admin/get_practice_statistic"])
	require.True(t, routes["POST /api/v1/admin/run_charges"])
}
