package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/middleware"
)

func (s *Server) createCustomer(c *gin.Context) {
	var req createCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := s.services.Customers.Create(c.Request.Context(), middleware.GetUser(c), req.toInput())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (s *Server) listCustomers(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}

	customers, err := s.services.Customers.List(c.Request.Context(), middleware.GetUser(c), q.page())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (s *Server) getCustomer(c *gin.Context) {
	customer, err := s.services.Customers.Get(c.Request.Context(), middleware.GetUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) updateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := s.services.Customers.Update(c.Request.Context(), middleware.GetUser(c), c.Param("id"), req.toUpdate())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) deleteCustomer(c *gin.Context) {
	if err := s.services.Customers.Delete(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, "customer", err)
		return
	}
	c.Status(http.StatusNoContent)
}
