package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/database"
)

// SeedCategory is a category with the items to insert under it.
type SeedCategory struct {
	Name  string
	Key   string
	Icon  domain.Icon
	Items []SeedItem
}

// SeedItem is a product row to insert.
type SeedItem struct {
	Name         string
	Description  string
	Price        domain.Money
	ImageURL     string
	OptionsTitle string
	Variants     []domain.Variant
	AddOn        *domain.AddOn
}

// SeedResult counts inserted rows.
type SeedResult struct {
	Categories int
	Items      int
	Skipped    bool
}

const (
	countCategoriesQuery = `SELECT COUNT(*) FROM categorias`

	insertCategoryQuery = `
	INSERT INTO categorias (nome, id_singular, icone_lucide, ordem)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
	RETURNING id`

	insertItemQuery = `
	INSERT INTO produtos (categoria_id, nome, descricao, preco, url_imagem, disponivel,
		options_title, options, has_checkbox_option, checkbox_label, checkbox_surcharge)
	VALUES ($1, $2, NULLIF($3, ''), $4::numeric, NULLIF($5, ''), true,
		NULLIF($6, ''), $7::jsonb, $8, NULLIF($9, ''), $10::numeric)`
)

// Seed inserts the given menu in one transaction. A catalog that already has
// categories is left untouched and reported as skipped.
func Seed(ctx context.Context, db database.DBTX, menu []SeedCategory) (SeedResult, error) {
	var result SeedResult

	tx, err := db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int
	if err := tx.QueryRow(ctx, countCategoriesQuery).Scan(&existing); err != nil {
		return result, fmt.Errorf("count categories: %w", err)
	}
	if existing > 0 {
		result.Skipped = true
		return result, nil
	}

	for i, c := range menu {
		var categoryID int64
		if err := tx.QueryRow(ctx, insertCategoryQuery, c.Name, c.Key, string(c.Icon), i+1).Scan(&categoryID); err != nil {
			return result, fmt.Errorf("insert category %q: %w", c.Name, err)
		}
		result.Categories++

		for _, item := range c.Items {
			var options *string
			if len(item.Variants) > 0 {
				raw, err := json.Marshal(item.Variants)
				if err != nil {
					return result, fmt.Errorf("encode options for %q: %w", item.Name, err)
				}
				s := string(raw)
				options = &s
			}

			hasAddOn := item.AddOn != nil
			addOnLabel, surcharge := "", domain.Money(0)
			if hasAddOn {
				addOnLabel, surcharge = item.AddOn.Label, item.AddOn.Surcharge
			}

			_, err := tx.Exec(ctx, insertItemQuery,
				categoryID, item.Name, item.Description, item.Price.String(), item.ImageURL,
				item.OptionsTitle, options, hasAddOn, addOnLabel, surcharge.String(),
			)
			if err != nil {
				return result, fmt.Errorf("insert item %q: %w", item.Name, err)
			}
			result.Items++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit seed transaction: %w", err)
	}
	return result, nil
}
