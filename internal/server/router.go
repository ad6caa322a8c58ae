package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/password-reset/request", s.RequestPasswordReset)
	auth.POST("/password-reset/verify", s.ConfirmPasswordReset)

	authed := v1.Group("")
	authed.Use(s.RequireAuth())
	{
		authed.GET("/credits", s.GetCredits)
		authed.GET("/credits/plans", s.ListPlans)
		authed.POST("/credits/purchase", s.PurchaseCredits)

		authed.POST("/analyze", s.AnalyzeOutfit)
		authed.POST("/chat", s.Chat)
		authed.POST("/compare", s.CompareOutfits)

		authed.GET("/history", s.ListHistory)
		authed.DELETE("/history/:id", s.DeleteHistoryItem)
		authed.DELETE("/history", s.ClearHistory)

		authed.GET("/profile", s.GetProfile)
		authed.PATCH("/profile", s.UpdateProfile)

		authed.DELETE("/account", s.DeleteAccount)
	}

	return r
}
