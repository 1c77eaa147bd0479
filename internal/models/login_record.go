package models

import "time"

// LoginRecord is one contextual login event in a user's history. Records are
// append-only: written once by the login hook and read in bulk by the risk
// engine, most recent first.
type LoginRecord struct {
	ID              int64     `db:"id"`
	Username        string    `db:"username"`
	IPAddress       string    `db:"ip_address"`
	Country         string    `db:"country"`
	Browser         string    `db:"browser"`
	OperatingSystem string    `db:"operating_system"`
	LoginTime       time.Time `db:"login_time"`
}

// RecoveryAttempt is the contextual snapshot of a single recovery request.
// It is built per request and never persisted.
type RecoveryAttempt struct {
	Username        string
	IPAddress       string
	Country         string
	Browser         string
	OperatingSystem string
	RecoveryTime    time.Time
}
