package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"todoapi/internal/database"
	"todoapi/internal/models"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const taskColumns = `id, text, completed, user_id, created_at, updated_at`

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, so the owner check
// can run inside or outside a transaction.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// ownerExists verifies the owning user still has a record. The auth
// middleware resolves the caller at request start, but the account may be
// deleted between resolution and the task operation.
func ownerExists(q rowQuerier, userID int) (bool, error) {
	var id int
	err := q.QueryRow(`SELECT id FROM users WHERE id = $1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanTask(row *sql.Row) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.Text,
		&task.Completed,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

func validateTaskText(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "Task text cannot be blank", false
	}
	if utf8.RuneCountInString(text) > models.MaxTaskTextLength {
		return "Task text cannot exceed 500 characters", false
	}
	return "", true
}

func parseTaskID(c *gin.Context) (int, bool) {
	taskID, err := strconv.Atoi(c.Param("task_id"))
	if err != nil || taskID <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

// CreateTask persists a new task owned by the caller.
func CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg, valid := validateTaskText(req.Text); !valid {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	completed := req.Completed != nil && *req.Completed

	tx, err := database.DB.Begin()
	if err != nil {
		log.Printf("Error starting task create transaction: %v", err)
		respondError(c, http.StatusInternalServerError, "Error creating task")
		return
	}
	defer tx.Rollback()

	exists, err := ownerExists(tx, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error creating task")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	task, err := scanTask(tx.QueryRow(
		`INSERT INTO tasks (text, completed, user_id) VALUES ($1, $2, $3) RETURNING `+taskColumns,
		req.Text,
		completed,
		userID,
	))
	if err != nil {
		log.Printf("Error inserting task for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error creating task")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing task create: %v", err)
		respondError(c, http.StatusInternalServerError, "Error creating task")
		return
	}

	respondSuccess(c, http.StatusCreated, "Task created successfully", task)
}

// ListTasks returns the caller's tasks, optionally filtered by completion
// status, ordered by creation time then id.
func ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var completedFilter *bool
	if raw := strings.TrimSpace(c.Query("completed")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid completed filter")
			return
		}
		completedFilter = &parsed
	}

	db := database.DB

	exists, err := ownerExists(db, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving tasks")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	var rows *sql.Rows
	if completedFilter != nil {
		rows, err = db.Query(
			`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND completed = $2 ORDER BY created_at ASC, id ASC`,
			userID,
			*completedFilter,
		)
	} else {
		rows, err = db.Query(
			`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
			userID,
		)
	}
	if err != nil {
		log.Printf("Error retrieving tasks for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving tasks")
		return
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID,
			&task.Text,
			&task.Completed,
			&task.UserID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning task for user %d: %v", userID, err)
			respondError(c, http.StatusInternalServerError, "Error retrieving tasks")
			return
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error iterating tasks for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving tasks")
		return
	}

	respondSuccess(c, http.StatusOK, "", tasks)
}

// GetTask returns a single task. A task owned by another user is reported
// exactly like a missing one.
func GetTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	db := database.DB

	exists, err := ownerExists(db, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving task")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	task, err := scanTask(db.QueryRow(
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID,
		userID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		log.Printf("Error retrieving task %d for user %d: %v", taskID, userID, err)
		respondError(c, http.StatusInternalServerError, "Error retrieving task")
		return
	}

	respondSuccess(c, http.StatusOK, "", task)
}

// UpdateTask replaces the completion flag and, when provided, the text.
// The ownership predicate is part of the UPDATE itself, so a foreign task is
// indistinguishable from a missing one.
func UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text != nil {
		if msg, valid := validateTaskText(*req.Text); !valid {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
	}

	tx, err := database.DB.Begin()
	if err != nil {
		log.Printf("Error starting task update transaction: %v", err)
		respondError(c, http.StatusInternalServerError, "Error updating task")
		return
	}
	defer tx.Rollback()

	exists, err := ownerExists(tx, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error updating task")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	task, err := scanTask(tx.QueryRow(
		`UPDATE tasks
		 SET text = COALESCE($1, text), completed = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND user_id = $4
		 RETURNING `+taskColumns,
		req.Text,
		req.Completed,
		taskID,
		userID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		log.Printf("Error updating task %d for user %d: %v", taskID, userID, err)
		respondError(c, http.StatusInternalServerError, "Error updating task")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing task update: %v", err)
		respondError(c, http.StatusInternalServerError, "Error updating task")
		return
	}

	respondSuccess(c, http.StatusOK, "Task updated successfully", task)
}

// DeleteTask permanently removes a task owned by the caller.
func DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		log.Printf("Error starting task delete transaction: %v", err)
		respondError(c, http.StatusInternalServerError, "Error deleting task")
		return
	}
	defer tx.Rollback()

	exists, err := ownerExists(tx, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting task")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	result, err := tx.Exec(`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		log.Printf("Error deleting task %d for user %d: %v", taskID, userID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting task")
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Error reading delete result for task %d: %v", taskID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting task")
		return
	}
	if rowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Task not found")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing task delete: %v", err)
		respondError(c, http.StatusInternalServerError, "Error deleting task")
		return
	}

	respondSuccess(c, http.StatusOK, "Task deleted successfully", nil)
}

// DeleteCompletedTasks removes every completed task owned by the caller.
// Deleting zero tasks is a successful no-op.
func DeleteCompletedTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		log.Printf("Error starting completed tasks delete transaction: %v", err)
		respondError(c, http.StatusInternalServerError, "Error deleting completed tasks")
		return
	}
	defer tx.Rollback()

	exists, err := ownerExists(tx, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting completed tasks")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	result, err := tx.Exec(`DELETE FROM tasks WHERE user_id = $1 AND completed = TRUE`, userID)
	if err != nil {
		log.Printf("Error deleting completed tasks for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting completed tasks")
		return
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		log.Printf("Error reading completed tasks delete result for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error deleting completed tasks")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Error committing completed tasks delete: %v", err)
		respondError(c, http.StatusInternalServerError, "Error deleting completed tasks")
		return
	}

	respondSuccess(c, http.StatusOK, "All completed tasks deleted", gin.H{
		"deleted_count": deletedCount,
	})
}

// GetCompletedTasksCount returns how many of the caller's tasks are completed.
func GetCompletedTasksCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	db := database.DB

	exists, err := ownerExists(db, userID)
	if err != nil {
		log.Printf("Error checking task owner %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error counting completed tasks")
		return
	}
	if !exists {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	var count int64
	err = db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = TRUE`,
		userID,
	).Scan(&count)
	if err != nil {
		log.Printf("Error counting completed tasks for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Error counting completed tasks")
		return
	}

	respondSuccess(c, http.StatusOK, "", count)
}
