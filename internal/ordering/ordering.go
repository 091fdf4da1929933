// Package ordering assigns the display position of sibling rows: columns
// within a project and cards within a column.
//
// Positions are hints, not ranks. A new sibling goes to count+1. Renames
// leave the position alone. An explicit move writes the requested value as
// given. Deleting a sibling leaves a gap that is never closed, so positions
// may repeat or skip once rows have been moved or removed.
package ordering

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const positionColumn = "position"

// Group identifies one set of siblings: the rows of Siblings whose
// ParentColumn equals ParentID. Parent is the model of the parent table.
type Group struct {
	Parent       interface{}
	Siblings     interface{}
	ParentColumn string
	ParentID     uuid.UUID
}

// Next returns the position a new sibling would get right now.
func Next(tx *gorm.DB, g Group) (int, error) {
	var count int64
	if err := tx.Model(g.Siblings).Where(g.ParentColumn+" = ?", g.ParentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// Append computes the next position and runs insert with it in one
// transaction. The parent row is locked first, so concurrent appends to the
// same parent are serialized instead of reading the same count. A missing
// parent returns gorm.ErrRecordNotFound.
func Append(ctx context.Context, conn *gorm.DB, g Group, insert func(tx *gorm.DB, position int) error) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct{ ID uuid.UUID }
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Model(g.Parent).
			Select("id").
			Where("id = ?", g.ParentID).
			Take(&locked).Error; err != nil {
			return err
		}

		position, err := Next(tx, g)
		if err != nil {
			return err
		}

		return insert(tx, position)
	})
}

// Move writes position to a single row without touching its siblings.
func Move(ctx context.Context, conn *gorm.DB, model interface{}, id uuid.UUID, position int) error {
	res := conn.WithContext(ctx).Model(model).Where("id = ?", id).Update(positionColumn, position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when nothing changed.
	var count int64
	if err := conn.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
