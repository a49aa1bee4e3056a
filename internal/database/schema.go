package database

import (
	"log"
)

// CreateTables creates all required tables in the database.
func CreateTables() {
	createUsersTable()
	createTasksTable()
}

func createUsersTable() {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'ROLE_USER',
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := DB.Exec(query); err != nil {
		log.Fatal("Failed to create users table:", err)
	}

	ensureUsersSchema()
	log.Println("Users table ready")
}

func createTasksTable() {
	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		id SERIAL PRIMARY KEY,
		text VARCHAR(500) NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := DB.Exec(query); err != nil {
		log.Fatal("Failed to create tasks table:", err)
	}

	ensureTasksSchema()
	log.Println("Tasks table ready")
}

func ensureUsersSchema() {
	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS users_created_at_idx ON users(created_at)`); err != nil {
		log.Fatal("Failed to ensure users created_at index:", err)
	}
}

func ensureTasksSchema() {
	// Listing order is (created_at, id), so back it with a matching index.
	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS tasks_user_created_idx ON tasks(user_id, created_at ASC, id ASC)`); err != nil {
		log.Fatal("Failed to ensure tasks user/created index:", err)
	}

	if _, err := DB.Exec(`CREATE INDEX IF NOT EXISTS tasks_user_completed_idx ON tasks(user_id, completed)`); err != nil {
		log.Fatal("Failed to ensure tasks user/completed index:", err)
	}
}
