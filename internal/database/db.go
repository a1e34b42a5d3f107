package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL, verifies the connection and makes sure the
// application tables exist.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

// ensureSchema creates the tables on first boot. Statements are idempotent
// so restarting against an initialized database is a no-op.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			id          CHAR(36)     NOT NULL,
			name        VARCHAR(191) NOT NULL,
			email       VARCHAR(191) NULL,
			phone       VARCHAR(32)  NULL,
			role        VARCHAR(16)  NOT NULL,
			department  VARCHAR(191) NOT NULL DEFAULT '',
			confirmed   TINYINT(1)   NOT NULL DEFAULT 0,
			created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_identities_email (email),
			UNIQUE KEY uq_identities_phone (phone)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id          BIGINT       NOT NULL AUTO_INCREMENT,
			identity_id CHAR(36)     NOT NULL,
			token_hash  CHAR(64)     NOT NULL,
			expires_at  DATETIME     NOT NULL,
			revoked_at  DATETIME     NULL,
			created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_refresh_tokens_hash (token_hash),
			KEY ix_refresh_tokens_identity (identity_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id          CHAR(36)     NOT NULL,
			title       VARCHAR(191) NOT NULL,
			description TEXT         NOT NULL,
			assigned_to CHAR(36)     NOT NULL,
			created_by  CHAR(36)     NOT NULL,
			priority    VARCHAR(16)  NOT NULL,
			status      VARCHAR(16)  NOT NULL,
			due_date    DATETIME     NULL,
			created_at  DATETIME     NOT NULL,
			updated_at  DATETIME     NOT NULL,
			PRIMARY KEY (id),
			KEY ix_tasks_assigned_to (assigned_to)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id              VARCHAR(73)  NOT NULL,
			participant_a   CHAR(36)     NOT NULL,
			participant_b   CHAR(36)     NOT NULL,
			last_content    TEXT         NULL,
			last_sender_id  CHAR(36)     NULL,
			last_message_at DATETIME(3)  NULL,
			created_at      DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY ix_conversations_a (participant_a),
			KEY ix_conversations_b (participant_b)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS messages (
			seq             BIGINT       NOT NULL AUTO_INCREMENT,
			id              CHAR(36)     NOT NULL,
			conversation_id VARCHAR(73)  NOT NULL,
			sender_id       CHAR(36)     NOT NULL,
			recipient_id    CHAR(36)     NOT NULL,
			content         TEXT         NOT NULL,
			read_by         JSON         NOT NULL,
			created_at      DATETIME(3)  NOT NULL,
			PRIMARY KEY (seq),
			UNIQUE KEY uq_messages_id (id),
			KEY ix_messages_conversation (conversation_id, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
