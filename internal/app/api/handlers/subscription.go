package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	mw "github.com/haventherapy/booking/internal/app/api/middleware"
	"github.com/haventherapy/booking/internal/app/service/billing"
	"github.com/haventherapy/booking/internal/app/service/schedule"
	subsvc "github.com/haventherapy/booking/internal/app/service/subscription"
	"github.com/haventherapy/booking/pkg/response"
)

// writeErr maps service errors onto the response envelope. Precondition and
// conflict failures are the client's to fix; everything else is a 50000.
func writeErr(c *gin.Context, err error) {
	var ve *subsvc.ValidationError
	var ce *subsvc.ConflictError
	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.Is(err, billing.ErrPastSession):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "not found"))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Create Draft Subscription
// @Description  Starts the recurring-sessions setup wizard for the authenticated client.
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.CreateDraft(c.Request.Context(), mw.ClientID(c))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Subscription
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions/{id} [get]
func ApiGetSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Add Weekly Slot
// @Description  Adds a weekly schedule slot to the subscription. Empty timezone asks the server to resolve it.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        request body subscription.SlotInput true "Slot definition"
// @Success      200  {object}  handlers.RespSlot
// @Router       /api/v1/subscriptions/{id}/slots [post]
func ApiAddSlot(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.SlotInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		slot, err := sub.AddSlot(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(slot))
	}
}

// @Summary      Update Weekly Slot
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        slot_id path string true "Slot ID"
// @Param        request body subscription.SlotInput true "Slot definition"
// @Success      200  {object}  handlers.RespSlot
// @Router       /api/v1/subscriptions/{id}/slots/{slot_id} [put]
func ApiUpdateSlot(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.SlotInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		slot, err := sub.UpdateSlot(c.Request.Context(), c.Param("id"), c.Param("slot_id"), req)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(slot))
	}
}

// @Summary      Remove Weekly Slot
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        slot_id path string true "Slot ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/slots/{slot_id} [delete]
func ApiRemoveSlot(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sub.RemoveSlot(c.Request.Context(), c.Param("id"), c.Param("slot_id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List Slot Conflicts
// @Description  Reports pairwise collisions among the subscription's enabled slots.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespConflicts
// @Router       /api/v1/subscriptions/{id}/conflicts [get]
func ApiListConflicts(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		pairs, err := sub.Conflicts(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		if pairs == nil {
			pairs = []schedule.ConflictPair{}
		}
		c.JSON(http.StatusOK, response.OKT(pairs))
	}
}

type PreviewResponse struct {
	Slots    []subsvc.SlotPreview `json:"slots"`
	Timeline []time.Time          `json:"timeline"`
}

// @Summary      Preview Upcoming Sessions
// @Description  Expands each enabled slot into its next dated sessions without persisting anything.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespPreview
// @Router       /api/v1/subscriptions/{id}/preview [get]
func ApiPreviewSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		slots, timeline, err := sub.Preview(c.Request.Context(), c.Param("id"), 0)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&PreviewResponse{Slots: slots, Timeline: timeline}))
	}
}

// @Summary      Acknowledge Fee Policy
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/acknowledge_terms [post]
func ApiAcknowledgeTerms(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sub.AcknowledgeTerms(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Set Payment Method
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/payment_method [put]
func ApiSetPaymentMethod(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := sub.SetPaymentMethod(c.Request.Context(), c.Param("id"), req.Token); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Activate Subscription
// @Description  Confirms the wizard: verifies slots, conflicts, terms and payment method, then schedules the first sessions.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/subscriptions/{id}/activate [post]
func ApiActivateSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.Activate(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Pause Subscription
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/pause [post]
func ApiPauseSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string     `json:"reason"`
			Until  *time.Time `json:"until"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := sub.Pause(c.Request.Context(), c.Param("id"), req.Reason, req.Until); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Resume Subscription
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/resume [post]
func ApiResumeSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sub.Resume(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Cancel Subscription
// @Description  Terminal. Future sessions are cancelled without fee.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sub.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      List Upcoming Sessions
// @Description  Future sessions of the subscription merged across slots, ordered by instant.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOccurrences
// @Router       /api/v1/subscriptions/{id}/occurrences [get]
func ApiListOccurrences(sub *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		occs, err := sub.UpcomingOccurrences(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(occs))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, sub *subsvc.Service) {
	r.POST("/subscriptions", ApiCreateSubscription(sub))
	r.GET("/subscriptions/:id", ApiGetSubscription(sub))
	r.POST("/subscriptions/:id/slots", ApiAddSlot(sub))
	r.PUT("/subscriptions/:id/slots/:slot_id", ApiUpdateSlot(sub))
	r.DELETE("/subscriptions/:id/slots/:slot_id", ApiRemoveSlot(sub))
	r.GET("/subscriptions/:id/conflicts", ApiListConflicts(sub))
	r.GET("/subscriptions/:id/preview", ApiPreviewSubscription(sub))
	r.POST("/subscriptions/:id/acknowledge_terms", ApiAcknowledgeTerms(sub))
	r.PUT("/subscriptions/:id/payment_method", ApiSetPaymentMethod(sub))
	r.POST("/subscriptions/:id/activate", ApiActivateSubscription(sub))
	r.POST("/subscriptions/:id/pause", ApiPauseSubscription(sub))
	r.POST("/subscriptions/:id/resume", ApiResumeSubscription(sub))
	r.POST("/subscriptions/:id/cancel", ApiCancelSubscription(sub))
	r.GET("/subscriptions/:id/occurrences", ApiListOccurrences(sub))
}
