// Package storage provides the persistent catalog backing the artifact
// registry: one table, mce_calc_object_info, accessed through database/sql
// behind a driver chosen at Open time.
package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver registration
	_ "modernc.org/sqlite"             // pure-Go sqlite driver registration

	"github.com/artifactengine/mce/internal/config"
	"github.com/artifactengine/mce/internal/domain"
)

const tableName = "mce_calc_object_info"

// Store wraps a SQL connection pool with migrations and CRUD helpers for
// the artifact catalog.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens (and migrates) the persistent store described by cfg.
//
// driver == "sqlite" uses modernc.org/sqlite with WAL mode, mirroring the
// teacher's internal/infra/sqlite/db.go configuration. driver == "postgres"
// uses pgx's database/sql shim. Any other driver value is rejected: the
// contract is "a generic connection handle," not an open driver registry.
func Open(cfg config.EngineURL, query map[string]string) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	var dsn string
	switch driver {
	case "sqlite":
		path := cfg.Database
		if path == "" {
			path = "mce.db"
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		for k, v := range query {
			dsn += fmt.Sprintf("&%s=%s", k, v)
		}
	case "postgres":
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		if len(query) > 0 {
			parts := make([]string, 0, len(query))
			for k, v := range query {
				parts = append(parts, k+"="+v)
			}
			dsn += "?" + strings.Join(parts, "&")
		}
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", domain.ErrStorage, driver)
	}

	sqlDriverName := driver
	if driver == "postgres" {
		sqlDriverName = "pgx"
	}

	db, err := sql.Open(sqlDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", domain.ErrStorage, driver, err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", domain.ErrStorage, err)
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		object_id          TEXT PRIMARY KEY,
		object_name        TEXT NOT NULL DEFAULT '',
		custom_tag         TEXT NOT NULL DEFAULT '',
		parent_id          TEXT NOT NULL DEFAULT '',
		remark             TEXT NOT NULL DEFAULT '',
		sort_number        INTEGER NOT NULL DEFAULT 0,
		python_code        TEXT NOT NULL DEFAULT '',
		python_expr        TEXT NOT NULL DEFAULT '',
		lru_maxsize        INTEGER NOT NULL DEFAULT 0,
		ttl_seconds        INTEGER NOT NULL DEFAULT 0,
		last_updated_time  INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

// Add inserts a new artifact row.
func (s *Store) Add(def domain.ArtifactDef) error {
	def.LastUpdatedTime = time.Now()
	_, err := s.db.Exec(
		s.rebind(`INSERT INTO `+tableName+` (object_id, object_name, custom_tag, parent_id, remark,
			sort_number, python_code, python_expr, lru_maxsize, ttl_seconds, last_updated_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		def.ObjectID, def.ObjectName, def.CustomTag, def.ParentID, def.Remark,
		def.SortNumber, def.PythonCode, def.PythonExpr, def.LRUMaxSize, def.TTLSeconds,
		def.LastUpdatedTime.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: add %s: %v", domain.ErrStorage, def.ObjectID, err)
	}
	return nil
}

// Delete removes the row for objectID, returning the number of affected rows.
func (s *Store) Delete(objectID string) (int64, error) {
	res, err := s.db.Exec(s.rebind(`DELETE FROM `+tableName+` WHERE object_id = ?`), objectID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, objectID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// updatableColumns are the columns Update is allowed to change, excluding the
// primary key and the server-managed timestamp.
var updatableColumns = map[string]bool{
	"object_name": true, "custom_tag": true, "parent_id": true, "remark": true,
	"sort_number": true, "python_code": true, "python_expr": true,
	"lru_maxsize": true, "ttl_seconds": true,
}

// Update applies fields to the row for objectID, refreshing
// last_updated_time, and returns the number of affected rows. An empty
// field set writes nothing (the timestamp included) and returns 0.
func (s *Store) Update(objectID string, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for k, v := range fields {
		if !updatableColumns[k] {
			return 0, fmt.Errorf("%w: unknown or immutable column %q", domain.ErrBadArgument, k)
		}
		setClauses = append(setClauses, k+" = ?")
		args = append(args, v)
	}
	setClauses = append(setClauses, "last_updated_time = ?")
	args = append(args, time.Now().Unix())
	args = append(args, objectID)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE object_id = ?`, tableName, strings.Join(setClauses, ", "))
	res, err := s.db.Exec(s.rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%w: update %s: %v", domain.ErrStorage, objectID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const selectColumns = `object_id, object_name, custom_tag, parent_id, remark,
	sort_number, python_code, python_expr, lru_maxsize, ttl_seconds, last_updated_time`

// Query returns all rows matching the given exact-match equality filters
// (AND-combined). An empty filter set returns every row. filters keys must
// be persisted column names.
func (s *Store) Query(filters map[string]any) ([]domain.ArtifactDef, error) {
	query := `SELECT ` + selectColumns + ` FROM ` + tableName
	args := make([]any, 0, len(filters))
	if len(filters) > 0 {
		clauses := make([]string, 0, len(filters))
		for k, v := range filters {
			if !domain.IsColumn(k) {
				return nil, fmt.Errorf("%w: unknown column %q", domain.ErrBadArgument, k)
			}
			clauses = append(clauses, k+" = ?")
			args = append(args, v)
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY sort_number, object_id"

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var out []domain.ArtifactDef
	for rows.Next() {
		def, err := scanDef(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrStorage, err)
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

// Get retrieves a single row by object id, or domain.ErrNotFound.
func (s *Store) Get(objectID string) (domain.ArtifactDef, error) {
	row := s.db.QueryRow(s.rebind(`SELECT `+selectColumns+` FROM `+tableName+` WHERE object_id = ?`), objectID)
	def, err := scanDef(row)
	if err == sql.ErrNoRows {
		return domain.ArtifactDef{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ArtifactDef{}, fmt.Errorf("%w: get %s: %v", domain.ErrStorage, objectID, err)
	}
	return def, nil
}

// rebind rewrites `?` placeholders into driver-native form. sqlite accepts
// `?` as-is; pgx/v5's stdlib driver does not translate `?` the way some
// sqlx bindings do and requires numbered `$1, $2, ...` placeholders, so
// every query built with `?` must pass through this before it reaches the
// postgres connection.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDef(sc scanner) (domain.ArtifactDef, error) {
	var d domain.ArtifactDef
	var lastUpdated int64
	err := sc.Scan(
		&d.ObjectID, &d.ObjectName, &d.CustomTag, &d.ParentID, &d.Remark,
		&d.SortNumber, &d.PythonCode, &d.PythonExpr, &d.LRUMaxSize, &d.TTLSeconds,
		&lastUpdated,
	)
	if err != nil {
		return d, err
	}
	d.LastUpdatedTime = time.Unix(lastUpdated, 0)
	return d, nil
}
