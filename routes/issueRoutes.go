package routes

import (
	"civictrack/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. readLimit guards queries and
// writeLimit guards submissions.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, readLimit, writeLimit gin.HandlerFunc) {
	issues := r.Group("/api/issues")
	{
		issues.GET("", readLimit, ic.ListIssues)
		issues.POST("", writeLimit, ic.CreateIssue)
		issues.GET("/:id", readLimit, ic.GetIssue)
	}
	r.GET("/api/categories", ic.Categories)
}

// LiveRoutes exposes the push channel.
func LiveRoutes(r *gin.Engine, lc *controllers.LiveController) {
	r.GET("/api/live", lc.Stream)
}

func GeocodeRoutes(r *gin.Engine, gc *controllers.GeocodeController, readLimit gin.HandlerFunc) {
	geocode := r.Group("/api/geocode", readLimit)
	{
		geocode.GET("", gc.Search)
		geocode.GET("/reverse", gc.Reverse)
	}
}

func HealthRoutes(r *gin.Engine, hc *controllers.HealthController) {
	r.GET("/api/health", hc.Health)
	r.GET("/ping", hc.Ping)
}
