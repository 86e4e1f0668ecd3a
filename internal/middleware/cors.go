package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the web app origin plus the local Vite dev server.
func CORS(appBaseURL string) gin.HandlerFunc {
	origins := []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
	if o := strings.TrimRight(appBaseURL, "/"); o != "" && o != origins[0] {
		origins = append(origins, o)
	}

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", "X-Client-Info", "Apikey", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}
