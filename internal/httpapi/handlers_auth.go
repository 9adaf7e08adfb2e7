package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.services.Auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := s.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (s *Server) me(c *gin.Context) {
	user, err := s.services.Auth.Me(c.Request.Context(), middleware.GetUser(c))
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
