package repository

import (
	"context"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type FollowRepository interface {
	Add(ctx context.Context, userID, authorID int64) error
	Remove(ctx context.Context, userID, authorID int64) error
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
	FollowedAmong(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
	ListFollowed(ctx context.Context, userID int64, page, pageSize int) ([]models.User, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Add(ctx context.Context, userID, authorID int64) error {
	follow := &models.Follow{UserID: userID, AuthorID: authorID}
	return wrap("add follow", r.db.WithContext(ctx).Omit("User", "Author").Create(follow).Error)
}

func (r *followRepository) Remove(ctx context.Context, userID, authorID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return wrap("remove follow", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("remove follow", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, wrap("check follow", err)
	}
	return count > 0, nil
}

// FollowedAmong reports which of authorIDs userID follows.
func (r *followRepository) FollowedAmong(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return set, nil
	}

	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, wrap("lookup follows", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListFollowed pages through the authors userID follows, ordered by author id.
func (r *followRepository) ListFollowed(ctx context.Context, userID int64, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, wrap("count follows", err)
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("users.id").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error; err != nil {
		return nil, 0, wrap("list follows", err)
	}
	return users, total, nil
}
