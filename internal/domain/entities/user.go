package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/Haleralex/storehub/internal/domain/errors"
)

// User represents a back-office user (customer or staff).
//
// Unique groups: {first_name + last_name}, {email}, {phone}.
type User struct {
	ID             int64
	FirstName      string
	LastName       string
	Birthday       *time.Time
	Email          string
	Password       string // hash, produced outside this core
	Phone          string
	IsActivated    bool
	ActivationLink string
	CreatedAt      time.Time

	Roles  []*Role
	Photos []*Photo
}

// Email validation regex (simplified - real systems use more complex validation)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewUser creates a new User with validation.
//
// Business Rules:
// - email must be valid (uniqueness checked by the duplicate engine)
// - first and last name are required
// - new users are not activated until the activation link is followed
func NewUser(firstName, lastName, email, phone, passwordHash, activationLink string) (*User, error) {
	var verrs errors.ValidationErrors

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))

	if firstName == "" {
		verrs.Add("first_name", errors.ErrEmptyName.Error())
	}
	if lastName == "" {
		verrs.Add("last_name", errors.ErrEmptyName.Error())
	}
	if !emailRegex.MatchString(email) {
		verrs.Add("email", errors.ErrInvalidEmail.Error())
	}
	if verrs.HasErrors() {
		return nil, verrs
	}

	return &User{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Phone:          strings.TrimSpace(phone),
		Password:       passwordHash,
		ActivationLink: activationLink,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ValidEmail reports whether email has a valid format.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

func (u *User) Kind() Kind     { return KindUser }
func (u *User) GetID() int64   { return u.ID }
func (u *User) SetID(id int64) { u.ID = id }
func (u *User) Key() Criteria  { return ByID(u.ID) }

func (u *User) Values() Fields {
	return Fields{
		"id":              u.ID,
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"birthday":        optTime(u.Birthday),
		"email":           u.Email,
		"password":        u.Password,
		"phone":           u.Phone,
		"is_activated":    u.IsActivated,
		"activation_link": u.ActivationLink,
		"created_at":      u.CreatedAt,
	}
}

func (u *User) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			u.ID, err = toInt64(v)
		case "first_name":
			u.FirstName, err = toString(v)
		case "last_name":
			u.LastName, err = toString(v)
		case "birthday":
			u.Birthday, err = toOptTime(v)
		case "email":
			u.Email, err = toString(v)
		case "password":
			u.Password, err = toString(v)
		case "phone":
			u.Phone, err = toString(v)
		case "is_activated":
			u.IsActivated, err = toBool(v)
		case "activation_link":
			u.ActivationLink, err = toString(v)
		case "created_at":
			u.CreatedAt, err = toTime(v)
		default:
			return unknownField(KindUser, k)
		}
		if err != nil {
			return badValue(KindUser, k, err)
		}
	}
	return nil
}

// ============================================
// Role
// ============================================

// Role - роль пользователя (ADMIN, USER, ...).
type Role struct {
	ID          int64
	Value       string
	Description string
}

func (r *Role) Kind() Kind     { return KindRole }
func (r *Role) GetID() int64   { return r.ID }
func (r *Role) SetID(id int64) { r.ID = id }
func (r *Role) Key() Criteria  { return ByID(r.ID) }

func (r *Role) Values() Fields {
	return Fields{"id": r.ID, "value": r.Value, "description": r.Description}
}

func (r *Role) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			r.ID, err = toInt64(v)
		case "value":
			r.Value, err = toString(v)
		case "description":
			r.Description, err = toString(v)
		default:
			return unknownField(KindRole, k)
		}
		if err != nil {
			return badValue(KindRole, k, err)
		}
	}
	return nil
}

// UserRole - join-запись many-to-many User<->Role.
type UserRole struct {
	UserID int64
	RoleID int64
}

func (ur *UserRole) Kind() Kind { return KindUserRole }

func (ur *UserRole) Key() Criteria {
	return Criteria{FieldUserID: ur.UserID, FieldRoleID: ur.RoleID}
}

func (ur *UserRole) Values() Fields {
	return Fields{"user_id": ur.UserID, "role_id": ur.RoleID}
}

func (ur *UserRole) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "user_id":
			ur.UserID, err = toInt64(v)
		case "role_id":
			ur.RoleID, err = toInt64(v)
		default:
			return unknownField(KindUserRole, k)
		}
		if err != nil {
			return badValue(KindUserRole, k, err)
		}
	}
	return nil
}

// ============================================
// RefreshToken
// ============================================

// RefreshToken - one-to-one с User. Удаляется (не обнуляется) вместе с пользователем.
type RefreshToken struct {
	ID     int64
	Token  string
	UserID int64
}

func (t *RefreshToken) Kind() Kind     { return KindRefreshToken }
func (t *RefreshToken) GetID() int64   { return t.ID }
func (t *RefreshToken) SetID(id int64) { t.ID = id }
func (t *RefreshToken) Key() Criteria  { return ByID(t.ID) }

func (t *RefreshToken) Values() Fields {
	return Fields{"id": t.ID, "token": t.Token, "user_id": t.UserID}
}

func (t *RefreshToken) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			t.ID, err = toInt64(v)
		case "token":
			t.Token, err = toString(v)
		case "user_id":
			t.UserID, err = toInt64(v)
		default:
			return unknownField(KindRefreshToken, k)
		}
		if err != nil {
			return badValue(KindRefreshToken, k, err)
		}
	}
	return nil
}
