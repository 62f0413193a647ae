// Package repository holds the gorm data access for every entity. All
// queries are scoped to the owning user of the session passed in.
package repository

import (
	"cartorio-reconciliation-backend/internal/session"

	"gorm.io/gorm"
)

func owned(db *gorm.DB, sess session.Session) *gorm.DB {
	return db.Where("user_id = ?", sess.UserID)
}

// Fields is a partial update keyed by column name.
type Fields map[string]interface{}

// updateOwned applies fields to the owned row and reports
// gorm.ErrRecordNotFound when nothing matched.
func updateOwned(db *gorm.DB, sess session.Session, model interface{}, id interface{}, fields Fields) error {
	result := owned(db.Model(model), sess).Where("id = ?", id).Updates(map[string]interface{}(fields))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func deleteOwned(db *gorm.DB, sess session.Session, model interface{}, id interface{}) error {
	result := owned(db, sess).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
