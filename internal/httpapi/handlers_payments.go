package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
)

func (s *Server) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := s.services.Payments.Create(c.Request.Context(), middleware.GetUser(c), req.toInput())
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (s *Server) listPayments(c *gin.Context) {
	var q paymentQuery
	if !bindQuery(c, &q) {
		return
	}

	payments, err := s.services.Payments.List(c.Request.Context(), middleware.GetUser(c), service.PaymentListOptions{
		InvoiceID: q.InvoiceID,
		Page:      q.page(),
	})
	if err != nil {
		respondError(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (s *Server) getPayment(c *gin.Context) {
	payment, err := s.services.Payments.Get(c.Request.Context(), middleware.GetUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Server) updatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := s.services.Payments.Update(c.Request.Context(), middleware.GetUser(c), c.Param("id"), req.toUpdate())
	if err != nil {
		respondError(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (s *Server) deletePayment(c *gin.Context) {
	if err := s.services.Payments.Delete(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, "payment", err)
		return
	}
	c.Status(http.StatusNoContent)
}
