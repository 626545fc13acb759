package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/database"
)

const listCategoriesQuery = `
	SELECT id::text, COALESCE(id_singular, ''), nome, COALESCE(icone_lucide, ''), ordem
	FROM categorias
	ORDER BY ordem ASC, id ASC`

const listAvailableItemsQuery = `
	SELECT id::text, categoria_id::text, nome, COALESCE(descricao, ''), preco::text,
		COALESCE(url_imagem, ''), COALESCE(options_title, ''), COALESCE(options::text, ''),
		has_checkbox_option, COALESCE(checkbox_label, ''), checkbox_surcharge::text
	FROM produtos
	WHERE disponivel = true
	ORDER BY categoria_id, id`

// CatalogRepository reads categories and products from PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListCategories returns every category ordered by its sort key.
func (r *CatalogRepository) ListCategories(ctx context.Context) (_ []domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, "ListCategories", listCategoriesQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		var icon string
		if err := rows.Scan(&c.ID, &c.Key, &c.Name, &icon, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		c.Icon = domain.Icon(icon)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// ListAvailableItems returns every product flagged available.
func (r *CatalogRepository) ListAvailableItems(ctx context.Context) (_ []domain.MenuItem, err error) {
	ctx, end := database.TraceQuery(ctx, "ListAvailableItems", listAvailableItemsQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listAvailableItemsQuery)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

func scanItemRow(rows pgx.Rows) (domain.MenuItem, error) {
	var (
		item                   domain.MenuItem
		price, options         string
		hasAddOn               bool
		addOnLabel, addOnExtra string
	)

	err := rows.Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.Description,
		&price,
		&item.ImageURL,
		&item.OptionsTitle,
		&options,
		&hasAddOn,
		&addOnLabel,
		&addOnExtra,
	)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("scan item row: %w", err)
	}

	item.Available = true

	if item.Price, err = domain.ParseMoney(price); err != nil {
		return domain.MenuItem{}, fmt.Errorf("item %s: %w", item.ID, err)
	}

	if item.Variants, err = domain.DecodeVariants([]byte(options)); err != nil {
		return domain.MenuItem{}, fmt.Errorf("item %s: %w", item.ID, err)
	}

	if hasAddOn && addOnLabel != "" {
		surcharge, err := domain.ParseMoney(addOnExtra)
		if err != nil {
			return domain.MenuItem{}, fmt.Errorf("item %s add-on: %w", item.ID, err)
		}
		item.AddOn = &domain.AddOn{Label: addOnLabel, Surcharge: surcharge}
	}

	return item, nil
}
