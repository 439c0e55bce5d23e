// Package taxonomy manages the name-only lookup tables (provider categories,
// brands, product categories, product brands) that are scoped to one agent
// configuration.
package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNameLen = 100

// Item is the transport shape of every taxonomy row.
type Item struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Row is implemented by the taxonomy models.
type Row interface {
	models.ProviderCategory | models.Brand | models.ProductCategory | models.ProductBrand
}

// Table is a repository for one taxonomy model.
type Table[T Row] struct {
	repo.Base
	label string
}

func NewTable[T Row](conn *gorm.DB, label string) *Table[T] {
	return &Table[T]{Base: repo.NewBase(conn), label: label}
}

// Label names the taxonomy in error messages.
func (t *Table[T]) Label() string {
	return t.label
}

// List returns every row of the configuration ordered by name.
func (t *Table[T]) List(ctx context.Context, configurationID uuid.UUID) ([]Item, error) {
	rows := []T{}
	if err := t.Scoped(ctx, configurationID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list "+t.label)
	}
	out := make([]Item, 0, len(rows))
	for i := range rows {
		out = append(out, ToItem(&rows[i]))
	}
	return out, nil
}

// Create inserts a name; names are unique within a configuration.
func (t *Table[T]) Create(ctx context.Context, configurationID uuid.UUID, name string) (*Item, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, pkgerrors.NewField("name", "Este campo es obligatorio.")
	case utf8.RuneCountInString(name) > maxNameLen:
		return nil, pkgerrors.NewField("name", fmt.Sprintf("Máximo %d caracteres.", maxNameLen))
	}

	row := build[T](configurationID, name)
	if err := t.DB(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.NewField("name", "Ya existe un registro con este nombre.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create "+t.label)
	}
	item := ToItem(row)
	return &item, nil
}

// Delete removes one row of the configuration; rows of other configurations are not found.
func (t *Table[T]) Delete(ctx context.Context, configurationID, id uuid.UUID) error {
	res := t.Scoped(ctx, configurationID).
		Where("id = ?", id).
		Delete(new(T))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "delete "+t.label)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, t.label+" not found")
	}
	return nil
}

// Owns reports whether every id belongs to the configuration.
func (t *Table[T]) Owns(ctx context.Context, configurationID uuid.UUID, ids ...uuid.UUID) (bool, error) {
	unique := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return true, nil
	}
	var count int64
	err := t.Scoped(ctx, configurationID).
		Model(new(T)).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == int64(len(unique)), nil
}

func build[T Row](configurationID uuid.UUID, name string) *T {
	var row T
	switch r := any(&row).(type) {
	case *models.ProviderCategory:
		r.ConfigurationID, r.Name = configurationID, name
	case *models.Brand:
		r.ConfigurationID, r.Name = configurationID, name
	case *models.ProductCategory:
		r.ConfigurationID, r.Name = configurationID, name
	case *models.ProductBrand:
		r.ConfigurationID, r.Name = configurationID, name
	}
	return &row
}

// ToItem maps any taxonomy row.
func ToItem[T Row](row *T) Item {
	switch r := any(row).(type) {
	case *models.ProviderCategory:
		return Item{ID: r.ID, Name: r.Name}
	case *models.Brand:
		return Item{ID: r.ID, Name: r.Name}
	case *models.ProductCategory:
		return Item{ID: r.ID, Name: r.Name}
	case *models.ProductBrand:
		return Item{ID: r.ID, Name: r.Name}
	}
	return Item{}
}

// ItemPtr maps an optional taxonomy row.
func ItemPtr[T Row](row *T) *Item {
	if row == nil {
		return nil
	}
	item := ToItem(row)
	return &item
}
