package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haventherapy/booking/internal/app/service/chargerunner"
	"github.com/haventherapy/booking/internal/app/service/ledger"
	"github.com/haventherapy/booking/internal/app/service/statistics"
	"github.com/haventherapy/booking/pkg/response"
)

// @Summary      List Session Occurrences (Admin)
// @Description  Retrieves a paginated and filterable list of session occurrences across all clients.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ledger.ScanOccurrencesRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListOccurrences
// @Router       /api/v1/admin/list_occurrences [post]
func ApiAdminListOccurrences(led *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.ScanOccurrencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := led.ScanOccurrences(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Due Charges (Admin)
// @Description  Snapshots the charges the billing runner would execute right now.
// @Tags         Admin
// @Produce      json
// @Param        limit query int false "Maximum rows (default 100)"
// @Success      200  {object}  handlers.RespOccurrences
// @Router       /api/v1/admin/due_charges [get]
func ApiAdminDueCharges(led *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid limit"))
				return
			}
			limit = n
		}
		rows, err := led.DueCharges(c.Request.Context(), time.Now(), limit)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Charge History (Admin)
// @Description  Lists every gateway attempt recorded for one occurrence, newest first.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Occurrence ID"
// @Success      200  {object}  handlers.RespChargeLogs
// @Router       /api/v1/admin/occurrences/{id}/charges [get]
func ApiAdminChargeHistory(led *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := led.ChargeHistory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Get Practice Statistics (Admin)
// @Description  Retrieves daily practice statistics for the dashboard.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.PracticeStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPracticeStatistic
// @Router       /api/v1/admin/get_practice_statistic [post]
func ApiGetPracticeStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PracticeStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetPracticeStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Run Charges Now (Admin)
// @Description  Triggers one charge-runner pass immediately instead of waiting for the next tick.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespRunCharges
// @Router       /api/v1/admin/run_charges [post]
func ApiAdminRunCharges(runner *chargerunner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := runner.RunOnce(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int{"attempted": n}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, led *ledger.Service, stats *statistics.Service, runner *chargerunner.Runner) {
	r.POST("/list_occurrences", ApiAdminListOccurrences(led))
	r.GET("/due_charges", ApiAdminDueCharges(led))
	r.GET("/occurrences/:id/charges", ApiAdminChargeHistory(led))
	r.POST("/get_practice_statistic", ApiGetPracticeStatistic(stats))
	r.POST("/run_charges", ApiAdminRunCharges(runner))
}
