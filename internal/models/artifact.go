package models

import "time"

// ArtifactLifetime bounds how long a one-time code or reset token stays
// valid. Enforced by timestamp comparison, not by a running timer.
const ArtifactLifetime = 600 * time.Second

// RecoveryCode is the stored artifact backing the email one-time code. Only
// the salted hash is persisted; the plaintext code exists solely in the mail.
// At most one live code per user: a new issuance overwrites the old row.
type RecoveryCode struct {
	Username string    `db:"username"`
	CodeHash string    `db:"code_hash"`
	Salt     string    `db:"salt"`
	IssuedAt time.Time `db:"issued_at"`
}

// IsExpired reports whether the code is past its lifetime.
func (c *RecoveryCode) IsExpired() bool {
	return time.Since(c.IssuedAt) > ArtifactLifetime
}

// ResetToken is the stored artifact backing a password-reset link. The secret
// is kept alongside two chained verification hashes; only a URL-safe encoding
// of the secret is ever exposed to the client.
type ResetToken struct {
	Username   string    `db:"username"`
	SecretHex  string    `db:"secret_hex"`
	HashSHA256 string    `db:"hash_sha256"`
	HashSHA512 string    `db:"hash_sha512"`
	IssuedAt   time.Time `db:"issued_at"`
}

// IsExpired reports whether the token is past its lifetime.
func (t *ResetToken) IsExpired() bool {
	return time.Since(t.IssuedAt) > ArtifactLifetime
}
