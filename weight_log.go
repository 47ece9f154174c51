package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const maxWeightKG = 500

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if msg := validateDateRange(start, end); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weight entry for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 82.4 }.
// Posting the same date updates in place. When the entry is the latest one,
// the profile weight follows and daily_points is recomputed.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string  `json:"date"`
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if !validWeight(body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be greater than 0 and at most 500")
		return
	}

	var entry weightEntry
	err := h.withWeightSync(c, userID, func(tx pgx.Tx) error {
		var err error
		entry, err = queryOne[weightEntry](tx, c,
			`INSERT INTO weight_log (user_id, date, weight_kg)
			 VALUES (@userID, @date, @weightKG)
			 ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
			 RETURNING *`,
			pgx.NamedArgs{"userID": userID, "date": body.Date, "weightKG": body.WeightKG})
		return err
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weight-log/:id. Body: { "date"?, "weight_kg"? }.
// Omitted fields keep their current values.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil && !validWeight(*body.WeightKG) {
		apiError(c, http.StatusBadRequest, "weight_kg must be greater than 0 and at most 500")
		return
	}

	var entry weightEntry
	err := h.withWeightSync(c, userID, func(tx pgx.Tx) error {
		var err error
		entry, err = queryOne[weightEntry](tx, c,
			`UPDATE weight_log SET
				date      = COALESCE(@date, date),
				weight_kg = COALESCE(@weightKG, weight_kg)
			 WHERE id = @id AND user_id = @userID
			 RETURNING *`,
			pgx.NamedArgs{"id": id, "userID": userID, "date": body.Date, "weightKG": body.WeightKG})
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update weight entry")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	err := h.withWeightSync(c, userID, func(tx pgx.Tx) error {
		result, err := tx.Exec(c,
			"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
			pgx.NamedArgs{"id": id, "userID": userID})
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "weight entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func validWeight(kg float64) bool {
	return kg > 0 && kg <= maxWeightKG
}

// validateDateRange checks an inclusive YYYY-MM-DD range and returns an
// error message, or "" when it is valid.
func validateDateRange(start, end string) string {
	if start == "" || end == "" {
		return "start and end query params are required"
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		return "invalid start, expected YYYY-MM-DD"
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		return "invalid end, expected YYYY-MM-DD"
	}
	if start > end {
		return "start must not be after end"
	}
	return ""
}

// withWeightSync runs fn in a transaction, then copies the latest logged
// weight onto the profile so daily_points tracks the scale.
func (h *Handler) withWeightSync(ctx context.Context, userID int, fn func(tx pgx.Tx) error) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := syncProfileWeight(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// syncProfileWeight sets the profile weight to the most recent entry and
// recomputes daily_points. No entries or no profile row is a no-op.
func syncProfileWeight(ctx context.Context, q querier, userID int) error {
	latest, err := queryOne[weightEntry](q, ctx,
		"SELECT * FROM weight_log WHERE user_id = @userID ORDER BY date DESC LIMIT 1",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	p, err := queryOne[profile](q, ctx,
		"UPDATE profiles SET weight_kg = @weightKG, updated_at = now() WHERE user_id = @userID RETURNING *",
		pgx.NamedArgs{"weightKG": latest.WeightKG, "userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = refreshDailyPoints(ctx, q, p)
	return err
}
