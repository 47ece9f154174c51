package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	log.SetPrefix("lg/palm-points-api: ")

	// .env is optional in deployed environments where vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env loaded: %v", err)
	}

	loc, err := time.LoadLocation(envOr("APP_TIMEZONE", "UTC"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid APP_TIMEZONE: %v\n", err)
		os.Exit(1)
	}

	pool := getDBPool()
	defer pool.Close()

	h := &Handler{
		db:            pool,
		openAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com"),
		loc:           loc,
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := envOr("PORT", "3000")
	fmt.Printf("Starting gin app on :%s (zone %s)...\n", port, loc)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler(router)))
}

// corsHandler wraps the router so the SPA can call the API from its own origin.
// CORS_ORIGINS is a comma-separated list; unset allows any origin.
func corsHandler(next http.Handler) http.Handler {
	origins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(next)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
