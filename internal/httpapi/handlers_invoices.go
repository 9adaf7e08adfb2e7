package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
)

func (s *Server) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := s.services.Invoices.Create(c.Request.Context(), middleware.GetUser(c), req.toInput())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) listInvoices(c *gin.Context) {
	var q invoiceQuery
	if !bindQuery(c, &q) {
		return
	}

	invoices, err := s.services.Invoices.List(c.Request.Context(), middleware.GetUser(c), service.InvoiceListOptions{
		CustomerID: q.CustomerID,
		Status:     q.Status,
		Page:       q.page(),
	})
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) getInvoice(c *gin.Context) {
	invoice, err := s.services.Invoices.Get(c.Request.Context(), middleware.GetUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) updateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := s.services.Invoices.Update(c.Request.Context(), middleware.GetUser(c), c.Param("id"), req.toUpdate())
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) deleteInvoice(c *gin.Context) {
	if err := s.services.Invoices.Delete(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addInvoiceItem(c *gin.Context) {
	var req itemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := s.services.Invoices.AddItem(c.Request.Context(), middleware.GetUser(c), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) listInvoiceItems(c *gin.Context) {
	items, err := s.services.Invoices.ListItems(c.Request.Context(), middleware.GetUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "invoice", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) updateInvoiceItem(c *gin.Context) {
	var req updateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := s.services.Invoices.UpdateItem(c.Request.Context(), middleware.GetUser(c), c.Param("id"), c.Param("item_id"), req.toUpdate())
	if err != nil {
		respondError(c, "invoice item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteInvoiceItem(c *gin.Context) {
	err := s.services.Invoices.DeleteItem(c.Request.Context(), middleware.GetUser(c), c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondError(c, "invoice item", err)
		return
	}
	c.Status(http.StatusNoContent)
}
