package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/haventherapy/booking/internal/app/api/middleware"
	subsvc "github.com/haventherapy/booking/internal/app/service/subscription"
	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/response"
	"github.com/haventherapy/booking/pkg/types"
)

// @Summary      Preview Late Fee
// @Description  Evaluates the 24-hour fee policy for cancelling or rescheduling a session, without committing.
// @Tags         Session
// @Produce      json
// @Param        id path string true "Occurrence ID"
// @Param        action query string false "cancel or reschedule (default cancel)"
// @Success      200  {object}  handlers.RespFeeDecision
// @Router       /api/v1/occurrences/{id}/fee [get]
func ApiPreviewFee(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := types.FeeAction(c.DefaultQuery("action", string(types.FeeActionCancel)))
		if action != types.FeeActionCancel && action != types.FeeActionReschedule {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "action must be cancel or reschedule"))
			return
		}
		decision, err := sub.PreviewFee(c.Request.Context(), c.Param("id"), action)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(decision))
	}
}

// @Summary      Cancel Session
// @Description  Cancels one session. Within 24 hours of the start the late fee applies; the decision is returned.
// @Tags         Session
// @Produce      json
// @Param        id path string true "Occurrence ID"
// @Success      200  {object}  handlers.RespFeeDecision
// @Router       /api/v1/occurrences/{id}/cancel [post]
func ApiCancelOccurrence(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := sub.CancelOccurrence(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(decision))
	}
}

type RescheduleRequest struct {
	NewTime  time.Time `json:"new_time"`
	Timezone string    `json:"timezone"`
}

type RescheduleResponse struct {
	Occurrence *models.SessionOccurrence `json:"occurrence"`
	Fee        *types.FeeDecision        `json:"fee"`
}

// @Summary      Reschedule Session
// @Description  Moves one session to a new future time on the bookable grid. The fee policy mirrors cancellation.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        id path string true "Occurrence ID"
// @Param        request body handlers.RescheduleRequest true "New session time"
// @Success      200  {object}  handlers.RespReschedule
// @Router       /api/v1/occurrences/{id}/reschedule [post]
func ApiRescheduleOccurrence(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RescheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		occ, decision, err := sub.RescheduleOccurrence(c.Request.Context(), c.Param("id"), req.NewTime, req.Timezone)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&RescheduleResponse{Occurrence: occ, Fee: decision}))
	}
}

type BookSessionRequest struct {
	Kind               types.SessionKind `json:"kind"`
	Time               time.Time         `json:"time"`
	Timezone           string            `json:"timezone"`
	PaymentMethodToken string            `json:"payment_method_token"`
}

// @Summary      Book One-off Session
// @Description  Books a standalone session at the standalone rate, or a free 15-minute trial.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request body handlers.BookSessionRequest true "Booking request"
// @Success      200  {object}  handlers.RespOccurrence
// @Router       /api/v1/bookings [post]
func ApiBookSession(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Kind == "" {
			req.Kind = types.SessionKindStandard
		}
		occ, err := sub.BookOneOff(c.Request.Context(), mw.ClientID(c), req.Kind, req.Time, req.Timezone, req.PaymentMethodToken)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(occ))
	}
}

func RegisterSessionRoutes(r gin.IRouter, sub *subsvc.Service) {
	r.GET("/occurrences/:id/fee", ApiPreviewFee(sub))
	r.POST("/occurrences/:id/cancel", ApiCancelOccurrence(sub))
	r.POST("/occurrences/:id/reschedule", ApiRescheduleOccurrence(sub))
	r.POST("/bookings", ApiBookSession(sub))
}
