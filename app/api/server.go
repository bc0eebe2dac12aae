package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes. Concrete routes
// (/categories, /tags, /stats, ...) are registered before the generic
// /:category pattern; gin resolves static segments ahead of parameters,
// which keeps the reserved names from being swallowed by the category
// routes.
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/", handler.GetArticles)
		v1.GET("/latest", handler.GetLatest)
		v1.GET("/search", handler.Search)
		v1.GET("/categories", handler.GetCategories)
		v1.GET("/tags", handler.GetTags)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/health", handler.GetHealth)
		v1.GET("/category/:category", handler.GetCategory)
		v1.GET("/tag/:tag", handler.GetTag)

		// Generic category routes, kept for compatibility with the
		// concrete /category/:category form.
		v1.GET("/:category", handler.GetCategory)
		v1.GET("/:category/:subcategory", handler.GetCategorySubcategory)
	}

	// Admin endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		admin := r.Group("/api/v1/admin")
		admin.Use(authMiddleware(apiAccessKey))
		{
			admin.POST("/scrape", handler.AdminScrape)
			admin.POST("/cache/invalidate", handler.AdminInvalidateCache)
		}
		log.Printf("Admin endpoints enabled with authentication")
	} else {
		log.Printf("Admin endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"articles":   "/api/v1/",
			"latest":     "/api/v1/latest",
			"search":     "/api/v1/search?q=<query>",
			"category":   "/api/v1/category/<category>",
			"categories": "/api/v1/categories",
			"tag":        "/api/v1/tag/<tag>",
			"tags":       "/api/v1/tags",
			"stats":      "/api/v1/stats",
			"health":     "/api/v1/health",
		}

		// Add admin endpoints if authentication is enabled
		if apiAccessKey != "" {
			endpoints["scrape"] = "/api/v1/admin/scrape (POST, requires X-API-Key header)"
			endpoints["cache"] = "/api/v1/admin/cache/invalidate (POST, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "Metabolical Health News",
			"version":     "1.0.0",
			"description": "Health news aggregation service with categorized, searchable articles",
			"endpoints":   endpoints,
			"admin_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
