package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups the transactions, budgets and recurrences of a user.
//
// Categories are strictly scoped by user, the same name can exist for
// any number of users.
type Category struct {
	DefaultModel
	UserID uuid.UUID `gorm:"uniqueIndex:categories_user_name"`
	Name   string    `gorm:"uniqueIndex:categories_user_name"`
	Note   string
}

// BeforeSave trims whitespace from the string fields.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)

	if c.Name == "" {
		return ErrCategoryNameRequired
	}

	return nil
}

// categoryOwnedBy verifies that the category exists and belongs to the user.
func categoryOwnedBy(tx *gorm.DB, id, userID uuid.UUID) (Category, error) {
	var category Category

	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&category).Error
	if err != nil {
		return Category{}, err
	}

	return category, nil
}

// DeleteCategory deletes the category.
//
// Deletion is refused while any transaction, budget or recurrence still
// references the category.
func DeleteCategory(db *gorm.DB, category *Category) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64

		err := tx.Model(&Transaction{}).Where("category_id = ?", category.ID).Count(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			err = tx.Model(&Budget{}).Where("category_id = ?", category.ID).Count(&count).Error
			if err != nil {
				return err
			}
		}

		if count == 0 {
			err = tx.Model(&Recurrence{}).Where("category_id = ?", category.ID).Count(&count).Error
			if err != nil {
				return err
			}
		}

		if count > 0 {
			return ErrCategoryStillInUse
		}

		return tx.Delete(category).Error
	})
}
