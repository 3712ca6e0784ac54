package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/myfood-api/models"
	"gorm.io/gorm"
)

// MenuRepository is the authoritative catalog of menu item prices and availability.
type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *MenuRepository) FindByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu item: %w", err)
	}
	return &item, nil
}

// FindAvailable lists items on sale, newest first.
func (r *MenuRepository) FindAvailable(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("created_at desc").Order("id desc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menu items: %w", err)
	}
	return items, nil
}

// Lookup returns the catalog entries for ids, keyed by id. Unknown ids are
// simply absent from the result.
func (r *MenuRepository) Lookup(ctx context.Context, ids []uint) (map[uint]models.MenuItem, error) {
	items := make(map[uint]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	var found []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up menu items: %w", err)
	}
	for _, item := range found {
		items[item.ID] = item
	}
	return items, nil
}

// Page lists available items newest first, optionally filtered by name, and
// reports how many match in total.
func (r *MenuRepository) Page(ctx context.Context, search string, page, limit int) ([]models.MenuItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("is_available = ?", true)
		if search != "" {
			q = q.Where("name LIKE ?", "%"+search+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count menu items: %w", err)
	}

	var items []models.MenuItem
	if err := query().Order("created_at desc").Order("id desc").
		Limit(limit).Offset((page - 1) * limit).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch menu items: %w", err)
	}
	return items, total, nil
}
