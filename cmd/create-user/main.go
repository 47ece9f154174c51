// CLI tool to create a user with a bcrypt-hashed password and an empty
// profile row (defaults apply until onboarding fills in the biometrics).
// Usage: go run ./cmd/create-user [-mode hybrid|calorie]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"lg/palm-points-api/points"
)

func main() {
	mode := flag.String("mode", string(points.ModeHybrid), "initial points mode (hybrid or calorie)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env loaded (%v), using environment\n", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.New().String()

	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (user_id, daily_points, points_mode) VALUES ($1, $2, $3)`,
		userID, points.DefaultDailyPoints, string(points.ParseMode(*mode))); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating profile: %v\n", err)
		os.Exit(1)
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:          %d\n", userID)
	fmt.Printf("  Username:    %s\n", username)
	fmt.Printf("  Points mode: %s\n", points.ParseMode(*mode))
	fmt.Printf("  Auth Token:  %s\n", authToken)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}
