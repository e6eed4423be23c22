package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"books-commons/internal/shared/middleware"
	"books-commons/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/health/db", databaseCheckHandler(c))

		auth := middleware.AuthMiddleware(c.JWTManager)

		setupAuthRoutes(v1, c, auth)
		setupCatalogRoutes(v1, c, auth)
		setupShelfRoutes(v1, c, auth)
		setupLoanRoutes(v1, c, auth)
		setupNotificationRoutes(v1, c, auth)
		setupReviewRoutes(v1, c, auth)
	}

	return router
}

// ========================================
// ROUTES
// ========================================

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", c.AccountHandler.Register)
		authGroup.POST("/login", c.AccountHandler.Login)
	}

	v1.GET("/users/me", auth, c.AccountHandler.Me)
}

func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	books := v1.Group("/books", auth)
	{
		books.GET("/search", c.CatalogHandler.Search)
		books.GET("/isbn/:isbn", c.CatalogHandler.LookupByISBN)
		books.POST("", c.CatalogHandler.CreateBook)
		books.GET("/:id", c.CatalogHandler.GetBook)
	}
}

func setupShelfRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	userBooks := v1.Group("/user-books", auth)
	{
		userBooks.POST("", c.ShelfHandler.AddCopy)
		userBooks.GET("/mine", c.ShelfHandler.ListMine)
		userBooks.GET("/mine/export", c.ShelfHandler.ExportShelf)
		userBooks.GET("/:id", c.ShelfHandler.GetCopy)
		userBooks.PATCH("/:id", c.ShelfHandler.UpdateCopy)
		userBooks.DELETE("/:id", c.ShelfHandler.DeleteCopy)
	}

	v1.GET("/users/:id/books", auth, c.ShelfHandler.ListByOwner)
}

func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	loans := v1.Group("/loans", auth)
	{
		loans.POST("", c.LoanHandler.RequestLoan)
		loans.GET("/mine", c.LoanHandler.ListMine)
		loans.GET("/:id", c.LoanHandler.GetLoan)
		loans.POST("/:id/approve", c.LoanHandler.Approve)
		loans.POST("/:id/reject", c.LoanHandler.Reject)
		loans.POST("/:id/handover", c.LoanHandler.Handover)
		loans.POST("/:id/return", c.LoanHandler.Return)
	}
}

func setupNotificationRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	notifications := v1.Group("/notifications", auth)
	{
		notifications.GET("", c.NotificationHandler.ListMine)
		notifications.PATCH("/read-all", c.NotificationHandler.MarkAllRead)
		notifications.PATCH("/:id/read", c.NotificationHandler.MarkRead)
	}
}

func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	v1.GET("/books/:id/reviews", auth, c.ReviewHandler.ListByBook)
	v1.POST("/books/:id/reviews", auth, c.ReviewHandler.CreateReview)

	reviews := v1.Group("/reviews", auth)
	{
		reviews.GET("/feed", c.ReviewHandler.Feed)
		reviews.PATCH("/:id", c.ReviewHandler.UpdateReview)
		reviews.DELETE("/:id", c.ReviewHandler.DeleteReview)
	}
}

// ========================================
// HEALTH
// ========================================

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			health["status"] = "degraded"
		}

		// Redis down thì search vẫn chạy, chỉ mất cache + enrichment queue
		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = "error: " + err.Error()
		}

		storageStatus := "disabled"
		if appCtx.Storage != nil {
			storageStatus = "ok"
			if err := appCtx.Storage.HealthCheck(ctx); err != nil {
				storageStatus = "error: " + err.Error()
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		}

		status := http.StatusOK
		if health["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}

// databaseCheckHandler query từng bảng của schema
func databaseCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		tables := gin.H{}
		ok := true
		for table, err := range appCtx.DB.CheckTables(ctx) {
			if err != nil {
				tables[table] = err.Error()
				ok = false
				continue
			}
			tables[table] = "ok"
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ok": ok, "tables": tables})
	}
}
