// Package database provides the PostgreSQL connection pool bootstrap.
//
// The syncer uses one pool for one logical operation at a time; pool sizing
// in config exists for operators sharing the database with other tooling.
package database
