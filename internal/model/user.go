// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

// User represents a registered account.
//
// WHY int64 IDs?
// Every entity id in this system (user, channel, dm, message) is a signed
// integer allocated by the database and never reused within a process
// lifetime. int64 matches SQLite's INTEGER PRIMARY KEY directly.
//
// The Handle is derived once at registration (lowercase alphanumeric of
// first+last name, truncated, de-duplicated with a numeric suffix) and never
// recomputed — renaming a user does not change their handle.
type User struct {
	ID            int64  `json:"uId"        db:"id"`
	Email         string `json:"email"      db:"email"`
	PasswordHash  string `json:"-"          db:"password_hash"` // never serialized
	NameFirst     string `json:"nameFirst"  db:"name_first"`
	NameLast      string `json:"nameLast"   db:"name_last"`
	Handle        string `json:"handleStr"  db:"handle"`
	IsGlobalOwner bool   `json:"-"          db:"is_global_owner"`
}

// Profile is the public view of a User — what other members see in channel
// and dm details. It deliberately omits the email-adjacent private fields
// only the account holder should manage.
type Profile struct {
	ID        int64  `json:"uId"`
	Email     string `json:"email"`
	NameFirst string `json:"nameFirst"`
	NameLast  string `json:"nameLast"`
	Handle    string `json:"handleStr"`
}

// Profile converts a User to its public representation.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		NameFirst: u.NameFirst,
		NameLast:  u.NameLast,
		Handle:    u.Handle,
	}
}

// Session is one logged-in device for a user. A user may hold many sessions
// concurrently; logout destroys exactly one. The ID is the `jti` claim baked
// into the issued token, so revoking the row revokes the token.
type Session struct {
	ID     string `json:"-" db:"id"`
	UserID int64  `json:"-" db:"user_id"`
}
