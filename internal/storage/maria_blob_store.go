package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"

	"github.com/annel0/arena-maps/internal/mapdata"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// MariaBlobStore хранит карты в таблице MariaDB/MySQL.
// Одна строка на карту: (namespace, path) -> data.
type MariaBlobStore struct {
	db    *sql.DB
	table string
}

// NewMariaBlobStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn   - строка подключения (user:pass@tcp(host:port)/dbname)
//	table - имя таблицы, по умолчанию arena_maps
func NewMariaBlobStore(dsn, table string) (*MariaBlobStore, error) {
	if table == "" {
		table = "arena_maps"
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("недопустимое имя таблицы %q", table)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaBlobStore{db: db, table: table}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return store, nil
}

func (r *MariaBlobStore) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + r.table + ` (
			namespace  VARCHAR(64)  NOT NULL,
			path       VARCHAR(255) NOT NULL,
			data       LONGBLOB     NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, path),
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы %s: %w", r.table, err)
	}
	return nil
}

// Read загружает карту
func (r *MariaBlobStore) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	query := `SELECT data FROM ` + r.table + ` WHERE namespace = ? AND path = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, id.Namespace, id.Path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты %s: %w", id, err)
	}
	return data, nil
}

// Write сохраняет карту.
// Использует INSERT ... ON DUPLICATE KEY UPDATE, строка заменяется целиком.
func (r *MariaBlobStore) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	query := `
		INSERT INTO ` + r.table + ` (namespace, path, data)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			data = VALUES(data),
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, id.Namespace, id.Path, data); err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", id, err)
	}
	return nil
}

// Delete удаляет карту
func (r *MariaBlobStore) Delete(ctx context.Context, id mapdata.Identifier) error {
	query := `DELETE FROM ` + r.table + ` WHERE namespace = ? AND path = ?`

	result, err := r.db.ExecContext(ctx, query, id.Namespace, id.Path)
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества затронутых строк: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	return nil
}

// List перечисляет карты
func (r *MariaBlobStore) List(ctx context.Context) ([]mapdata.Identifier, error) {
	query := `SELECT namespace, path FROM ` + r.table + ` ORDER BY namespace, path`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления карт: %w", err)
	}
	defer rows.Close()

	var out []mapdata.Identifier
	for rows.Next() {
		var id mapdata.Identifier
		if err := rows.Scan(&id.Namespace, &id.Path); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close закрывает соединение с базой данных
func (r *MariaBlobStore) Close() error {
	return r.db.Close()
}
