package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const userIDKey = "styloren.user_id"

// RequireAuth validates the bearer token and stores the user id on the
// request context.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(errUnauthorized.status, gin.H{
				"error":   errUnauthorized.code,
				"message": errUnauthorized.message,
			})
			return
		}

		userID, err := s.authSvc.VerifyToken(token)
		if err != nil {
			s.AbortWithError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) snowflake.ID {
	v, _ := c.Get(userIDKey)
	id, _ := v.(snowflake.ID)
	return id
}
