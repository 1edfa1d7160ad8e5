package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the reservations and restaurant_tables tables when they
// do not exist yet.  A table's reservation_id is unique so a reservation
// can occupy at most one table.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		reservation_id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		first_name       VARCHAR(255) NOT NULL,
		last_name        VARCHAR(255) NOT NULL,
		mobile_number    VARCHAR(64)  NOT NULL,
		reservation_date DATE         NOT NULL,
		reservation_time TIME         NOT NULL,
		people           INT UNSIGNED NOT NULL,
		status           VARCHAR(16)  NOT NULL DEFAULT 'booked',
		created_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (reservation_id),
		KEY idx_reservations_date_time (reservation_date, reservation_time),
		KEY idx_reservations_mobile (mobile_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		table_id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		table_name     VARCHAR(255)    NOT NULL,
		capacity       INT UNSIGNED    NOT NULL,
		reservation_id BIGINT UNSIGNED NULL,
		created_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (table_id),
		UNIQUE KEY uq_restaurant_tables_reservation (reservation_id),
		CONSTRAINT fk_restaurant_tables_reservation FOREIGN KEY (reservation_id)
			REFERENCES reservations (reservation_id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema applies the DDL statements in order.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
