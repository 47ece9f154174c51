package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (db pool, config) for all route handlers.
type Handler struct {
	db            *pgxpool.Pool
	openAIBaseURL string         // Base URL for OpenAI API (overridable for tests)
	loc           *time.Location // Zone for eating windows and day boundaries
	now           func() time.Time
}

// clock returns the current time in the handler's zone. Tests inject now.
func (h *Handler) clock() time.Time {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	return now().In(h.location())
}

func (h *Handler) location() *time.Location {
	if h.loc == nil {
		return time.UTC
	}
	return h.loc
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the helpers below
// work inside a transaction too.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](q querier, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)
	router.GET("/api/catalog", h.getCatalog)
	router.POST("/api/estimate", h.estimatePick)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.POST("/profile", h.upsertProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/food-log/daily", h.getDailyLog)
	api.GET("/food-log/history", h.getHistory)
	api.POST("/food-log/pick", h.logPick)
	api.POST("/food-log/standard", h.logStandardMeal)
	api.POST("/food-log/rated", h.logRatedMeal)
	api.POST("/food-log/classify", h.classifyFood)
	api.PUT("/food-log/:id", h.updateFoodLog)
	api.DELETE("/food-log/:id", h.deleteFoodLog)
	api.POST("/plan/suggest", h.suggestPlan)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
}
