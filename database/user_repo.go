package database

import (
	"context"
	"errors"
	"time"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.ErrAlreadyExists
	}
	return err
}

// FindByID returns a user by its ID. The primary is read so a fresh OTP is visible.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// FindAll returns all users from the database
func (r *UserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	return affected(res)
}

func (r *UserRepo) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verify_otp":           code,
		"verify_otp_expire_at": expiresAt,
	})
	return affected(res)
}

func (r *UserRepo) VerifyAccount(ctx context.Context, id, code string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verify_otp = ? AND verify_otp_expire_at >= ?", id, code, now).
		Updates(map[string]interface{}{
			"is_account_verified":  true,
			"verify_otp":           nil,
			"verify_otp_expire_at": nil,
		})
	return affected(res)
}

func (r *UserRepo) ResetPassword(ctx context.Context, id, code, passwordHash string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verify_otp = ? AND verify_otp_expire_at >= ?", id, code, now).
		Updates(map[string]interface{}{
			"password":             passwordHash,
			"verify_otp":           nil,
			"verify_otp_expire_at": nil,
		})
	return affected(res)
}

// notFound maps gorm's record-not-found onto the repository sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return err
}

// affected turns a zero-row update into errs.ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
