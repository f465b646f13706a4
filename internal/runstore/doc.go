// Package runstore keeps a small SQLite history of pipeline runs: when
// each split was prepared, how many rows and columns came out, and
// whether the run succeeded.
package runstore
