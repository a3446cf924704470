package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

// DefaultSQLTable is the table used when none is configured.
const DefaultSQLTable = "users"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLStore is a Store implementation backed by a MariaDB or MySQL table with
// columns user (the key, which must have a unique index), password (unused,
// always empty) and data (the value).
type SQLStore struct {
	db       *sql.DB
	getQuery string
	putQuery string
}

// NewSQLStore returns a store using the given table, which may be qualified
// with the database name, as in "test.users".
func NewSQLStore(db *sql.DB, table string) (*SQLStore, error) {
	if table == "" {
		table = DefaultSQLTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("%q: not a valid table name", table)
	}
	return &SQLStore{
		db:       db,
		getQuery: fmt.Sprintf("SELECT data FROM %s WHERE user = ? LIMIT 1", table),
		// Puts overwrite. A plain insert would add a duplicate row per put.
		putQuery: fmt.Sprintf("INSERT INTO %s (user, password, data) VALUES (?, '', ?) "+
			"ON DUPLICATE KEY UPDATE data = VALUES(data)", table),
	}, nil
}

func (s *SQLStore) Put(key string, value []byte) error {
	if _, err := s.db.Exec(s.putQuery, key, dup(value)); err != nil {
		return fmt.Errorf("could not put %.40q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Get(key string) (value []byte, err error) {
	err = s.db.QueryRow(s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get %.40q: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}
