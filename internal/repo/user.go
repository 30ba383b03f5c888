package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"gorm.io/gorm"

	"github.com/Skotchmaster/notes/internal/hash"
	"github.com/Skotchmaster/notes/internal/models"
)

const (
	msgPasswordTooShort = "Passwords must be at least 6 characters."
	msgPasswordNoDigit  = "Passwords must have at least one digit ('0'-'9')."
)

// passwordRules run independently so every violation is reported, not only the first.
var passwordRules = []validation.Rule{
	validation.Required.Error(msgPasswordTooShort),
	validation.Length(6, 0).Error(msgPasswordTooShort),
	validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if !strings.ContainsAny(s, "0123456789") {
			return errors.New(msgPasswordNoDigit)
		}
		return nil
	}),
}

func PasswordPolicy(password string) []string {
	var out []string
	for _, rule := range passwordRules {
		if err := validation.Validate(password, rule); err != nil {
			msg := err.Error()
			if len(out) == 0 || out[len(out)-1] != msg {
				out = append(out, msg)
			}
		}
	}
	return out
}

var usernameChars = regexp.MustCompile(`^[A-Za-z0-9\-._@+]+$`)

func identityRules(u *models.User) []string {
	var out []string
	if err := validation.Validate(u.Username, validation.Required, validation.Match(usernameChars)); err != nil {
		out = append(out, fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", u.Username))
	}
	if err := validation.Validate(u.Email, validation.Required, is.Email); err != nil {
		out = append(out, fmt.Sprintf("Email '%s' is invalid.", u.Email))
	}
	return out
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("normalized_email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateWithPassword hashes password and inserts u together with roles in one
// transaction. Policy violations come back as human readable descriptions with
// a nil error.
func (r *GormRepo) CreateWithPassword(ctx context.Context, u *models.User, password string, roles ...models.Role) ([]string, error) {
	problems := identityRules(u)
	problems = append(problems, PasswordPolicy(password)...)

	var taken int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", u.Username).
		Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		problems = append(problems, fmt.Sprintf("Username '%s' is already taken.", u.Username))
	}
	if len(problems) > 0 {
		return problems, nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = pwHash

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		txRepo := New(tx)
		for _, role := range roles {
			if err := txRepo.AddRole(ctx, u.ID, role); err != nil {
				return fmt.Errorf("add role %s: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *GormRepo) CheckPassword(u *models.User, password string) bool {
	return hash.CheckPassword(u.PasswordHash, password)
}

func (r *GormRepo) AddRole(ctx context.Context, userID string, role models.Role) error {
	return r.DB.WithContext(ctx).
		Where(models.UserRole{UserID: userID, Role: role}).
		FirstOrCreate(&models.UserRole{UserID: userID, Role: role}).Error
}

func (r *GormRepo) IsInRole(ctx context.Context, userID string, role models.Role) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) HasAnyUsers(ctx context.Context) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
