package history

import "gorm.io/gorm"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(change *PriceChange) error {
	return r.db.Create(change).Error
}

func (r *Repository) ListByItem(itemID string, limit int) ([]PriceChange, error) {
	var changes []PriceChange
	if err := r.db.Where("item_id = ?", itemID).
		Order("id DESC").Limit(limit).Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
