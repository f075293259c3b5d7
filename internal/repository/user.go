package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetStaff(ctx context.Context, username string, staff bool) error
	ListStaff(ctx context.Context) ([]models.User, error)
	ListActivity(ctx context.Context) ([]models.UserActivity, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername matches the username exactly. It returns nil, nil when absent.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.metrics.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.existsFold(ctx, "username", username)
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.existsFold(ctx, "email", email)
}

// existsFold reports whether any row has column equal to value ignoring case.
func (r *userRepository) existsFold(ctx context.Context, column, value string) (bool, error) {
	defer r.metrics.TrackQuery("exists", "users")()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where(fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(value)).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("insert", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("update", "users")()

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUser
		}
		return models.NewInternalError(err)
	}
	return nil
}

// SetStaff toggles the staff flag for the named user.
func (r *userRepository) SetStaff(ctx context.Context, username string, staff bool) error {
	defer r.metrics.TrackQuery("update", "users")()

	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("is_staff", staff)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", username)
	}
	return nil
}

func (r *userRepository) ListStaff(ctx context.Context) ([]models.User, error) {
	defer r.metrics.TrackQuery("select", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("is_staff = ? OR is_superuser = ?", true, true).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ListActivity returns every user with their authored-question and answer counts.
// Ordering is left to the caller.
func (r *userRepository) ListActivity(ctx context.Context) ([]models.UserActivity, error) {
	defer r.metrics.TrackQuery("aggregate", "users")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "UserRepository.ListActivity", "users")
	defer span.End()

	var rows []models.UserActivity
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(`users.id AS user_id, users.username, users.first_name, users.last_name, users.avatar,
			(SELECT COUNT(*) FROM questions WHERE questions.author_id = users.id) AS questions_asked,
			(SELECT COUNT(*) FROM answers WHERE answers.user_id = users.id) AS questions_answered`).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
