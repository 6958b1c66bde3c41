package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithSeedDepartments inserts the given departments on open when missing.
func WithSeedDepartments(names []string) Option {
	return func(s *SQLiteStore) {
		s.seedDepartments = append([]string{}, names...)
	}
}

// WithMaxListLimit caps ListEmployees.
func WithMaxListLimit(limit int) Option {
	return func(s *SQLiteStore) {
		if limit > 0 {
			s.maxListLimit = limit
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}
