// Package sqlite persists body measurement sessions in SQLite.
//
// A session is one run of the estimator for one subject. Every updated pass
// is stored with one row per enabled measurement kind; invalid records keep
// their reason and leave the geometry columns NULL.
package sqlite
