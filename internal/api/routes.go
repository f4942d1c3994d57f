package api

import "github.com/gin-gonic/gin"

func addRoutes(router *gin.Engine, s *Server) {
	router.GET("/", s.dashboard)
	router.GET("/chart/comparison.png", s.comparisonChart)

	api := router.Group("/api")
	api.GET("/assets", s.assets)
	api.GET("/correlation-matrix", s.correlationMatrix)
	api.GET("/comparison", s.comparison)
	api.GET("/insights", s.insights)
	api.GET("/health", s.health)
}
