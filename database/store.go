package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BinLe1988/mood-tracker/models"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在或不属于当前用户
var ErrNotFound = errors.New("record not found")

// MoodStore 心情记录存取
type MoodStore struct {
	db *gorm.DB
}

func NewMoodStore(db *gorm.DB) *MoodStore {
	return &MoodStore{db: db}
}

// Create 保存心情记录
func (s *MoodStore) Create(ctx context.Context, entry *models.MoodEntry) error {
	entry.LoggedAt = entry.LoggedAt.UTC()
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create mood entry: %w", err)
	}
	return nil
}

// ListSince 返回用户自since以来的记录，按时间升序
func (s *MoodStore) ListSince(ctx context.Context, userID uint, since time.Time) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ?", userID, since.UTC()).
		Order("logged_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	return entries, nil
}

// List 分页返回用户记录，按时间倒序
func (s *MoodStore) List(ctx context.Context, userID uint, limit, offset int) ([]models.MoodEntry, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.MoodEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count mood entries: %w", err)
	}

	var entries []models.MoodEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list mood entries: %w", err)
	}
	return entries, total, nil
}

// Latest 返回用户最近一条记录
func (s *MoodStore) Latest(ctx context.Context, userID uint) (*models.MoodEntry, error) {
	var entry models.MoodEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("logged_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest mood entry: %w", err)
	}
	return &entry, nil
}

// Delete 删除用户自己的记录
func (s *MoodStore) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.MoodEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete mood entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UserStore 用户存取
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create 创建用户
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID 按ID查找用户
func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	return s.first(ctx, &user, s.db.WithContext(ctx).Where("id = ?", id))
}

// FindByEmail 按邮箱查找用户
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	return s.first(ctx, &user, s.db.WithContext(ctx).Where("email = ?", email))
}

func (s *UserStore) first(_ context.Context, user *models.User, q *gorm.DB) (*models.User, error) {
	err := q.First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Exists 用户名或邮箱是否已被占用，excludeID为0时不排除任何用户
func (s *UserStore) Exists(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	switch {
	case username != "" && email != "":
		q = q.Where("username = ? OR email = ?", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	case email != "":
		q = q.Where("email = ?", email)
	default:
		return false, nil
	}
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return count > 0, nil
}

// Save 保存用户
func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
