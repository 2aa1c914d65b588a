package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	domerrors "github.com/amirhosseinghanipour/gestproj/internal/domain/errors"
)

// MinPasswordLength is the shortest accepted plaintext password, in characters.
const MinPasswordLength = 8

// PasswordHashLength is the length of a hex-encoded SHA-256 digest.
const PasswordHashLength = sha256.Size * 2

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Role is a user's role in the system.
type Role string

const (
	RoleAdministrateur Role = "ADMINISTRATEUR"
	RoleGestionnaire   Role = "GESTIONNAIRE"
	RoleEmploye        Role = "EMPLOYE"
)

// Roles lists every member in declaration order.
var Roles = []Role{RoleAdministrateur, RoleGestionnaire, RoleEmploye}

func (r Role) Valid() bool {
	_, ok := permissions[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", domerrors.Validation("role", "unknown role "+s)
	}
	return r, nil
}

// UserAttrs holds the mutable fields of a user.
type UserAttrs struct {
	Nom            string
	Prenom         string
	Email          string
	MotDePasseHash string
	Role           Role
	Actif          bool
}

// User is a system user. The plaintext password is never stored. ID is 0 until saved.
type User struct {
	ID int64
	UserAttrs
	DateCreation time.Time
}

// NewUser builds an unsaved user created at now.
func NewUser(attrs UserAttrs, now time.Time) (*User, error) {
	return LoadUser(0, attrs, now)
}

// LoadUser rebuilds a user from stored state. It runs the same checks as NewUser.
func LoadUser(id int64, attrs UserAttrs, createdAt time.Time) (*User, error) {
	attrs.Nom = strings.TrimSpace(attrs.Nom)
	attrs.Prenom = strings.TrimSpace(attrs.Prenom)
	attrs.Email = NormalizeEmail(attrs.Email)
	u := &User{ID: id, UserAttrs: attrs, DateCreation: createdAt}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the structural invariants of the user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Nom) == "" {
		return domerrors.Validation("nom", "must not be empty")
	}
	if strings.TrimSpace(u.Prenom) == "" {
		return domerrors.Validation("prenom", "must not be empty")
	}
	if strings.TrimSpace(u.Email) == "" {
		return domerrors.Validation("email", "must not be empty")
	}
	if !emailRegex.MatchString(u.Email) {
		return domerrors.Validation("email", "invalid address")
	}
	if !isHexDigest(u.MotDePasseHash) {
		return domerrors.Validation("mot_de_passe_hash", "must be a 64 character SHA-256 hex digest")
	}
	if !u.Role.Valid() {
		return domerrors.Validation("role", "unknown role "+string(u.Role))
	}
	if u.DateCreation.IsZero() {
		return domerrors.Validation("date_creation", "is required")
	}
	return nil
}

// Attrs returns a copy of the mutable fields.
func (u *User) Attrs() UserAttrs { return u.UserAttrs }

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the SHA-256 hex digest of a plaintext of at least MinPasswordLength characters.
func HashPassword(plain string) (string, error) {
	if utf8.RuneCountInString(plain) < MinPasswordLength {
		return "", domerrors.ErrPasswordTooShort
	}
	return digest(plain), nil
}

// VerifyPassword reports whether plain hashes to the stored digest.
func (u *User) VerifyPassword(plain string) bool {
	return subtle.ConstantTimeCompare([]byte(digest(plain)), []byte(u.MotDePasseHash)) == 1
}

// SetPasswordHash replaces the stored digest.
func (u *User) SetPasswordHash(hash string) error {
	if !isHexDigest(hash) {
		return domerrors.Validation("mot_de_passe_hash", "must be a 64 character SHA-256 hex digest")
	}
	u.MotDePasseHash = hash
	return nil
}

func (u *User) Activate() { u.Actif = true }

func (u *User) Deactivate() { u.Actif = false }

// ChangeRole replaces the role; unknown roles are rejected and leave the user untouched.
func (u *User) ChangeRole(role Role) error {
	if !role.Valid() {
		return domerrors.Validation("role", "unknown role "+string(role))
	}
	u.Role = role
	return nil
}

// HasPermission reports whether the user's role grants action.
func (u *User) HasPermission(action Action) bool {
	return RolePermits(u.Role, action)
}

// FullName is "Prenom Nom".
func (u *User) FullName() string {
	return u.Prenom + " " + u.Nom
}

func digest(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}

func isHexDigest(s string) bool {
	if len(s) != PasswordHashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
