package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetVerifyRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	sess, err := s.authSvc.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, sess)
}

func (s *Server) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	sess, err := s.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.AbortWithError(c, err)
		return
	}
	respondData(c, sess)
}

func (s *Server) RequestPasswordReset(c *gin.Context) {
	var req resetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	if err := s.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.AbortWithError(c, err)
		return
	}

	// The response is identical whether or not the address is registered.
	c.JSON(http.StatusOK, gin.H{
		"message": "If this email is registered, you will receive a reset code shortly.",
	})
}

func (s *Server) ConfirmPasswordReset(c *gin.Context) {
	var req resetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.AbortWithError(c, errBadJSON)
		return
	}

	if err := s.authSvc.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can now log in."})
}
