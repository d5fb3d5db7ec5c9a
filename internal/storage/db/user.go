package db

// User is a row in the user table. PasswordHash holds a bcrypt hash of the
// password, never the plaintext.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash []byte `db:"password"`
}
