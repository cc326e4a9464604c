package model

import "time"

// Roles recognised by the access layer.  Catalog writes are reserved to
// ADMIN; every authenticated role may book tickets.
const (
    RoleAdmin    = "ADMIN"
    RoleCustomer = "CUSTOMER"
)

// User represents an account as stored in the `users` table.  The plain
// password is never stored, only its bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or CUSTOMER.
//  IsActive     – whether the account may sign in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `db:"id"`            // users.id
    Email        string    `db:"email"`         // users.email
    PasswordHash string    `db:"password_hash"` // users.password_hash
    Role         string    `db:"role"`          // users.role
    IsActive     bool      `db:"is_active"`     // users.is_active
    CreatedAt    time.Time `db:"created_at"`    // users.created_at
    UpdatedAt    time.Time `db:"updated_at"`    // users.updated_at
}
