package scope

import "gorm.io/gorm"

// OrderByNewest orders by creation time, newest first, with id as the tie breaker.
func OrderByNewest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
