package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/middleware"
)

func (s *Server) listUsers(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}

	users, err := s.services.Users.List(c.Request.Context(), middleware.GetUser(c), q.page())
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.services.Users.Get(c.Request.Context(), middleware.GetUser(c), c.Param("id"))
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.services.Users.Update(c.Request.Context(), middleware.GetUser(c), c.Param("id"), req.toUpdate())
	if err != nil {
		respondError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.services.Users.Delete(c.Request.Context(), middleware.GetUser(c), c.Param("id")); err != nil {
		respondError(c, "user", err)
		return
	}
	c.Status(http.StatusNoContent)
}
