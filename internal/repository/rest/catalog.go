// Package rest reads the catalog from a PostgREST endpoint such as a hosted
// Supabase project.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/httpclient"
)

const upstreamName = "catalog-rest"

// Getter issues GET requests. *httpclient.CircuitBreakerClient satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// CatalogRepository implements repository.CatalogRepository over PostgREST.
type CatalogRepository struct {
	client  Getter
	baseURL string
}

// NewCatalogRepository creates a repository reading from baseURL, e.g.
// "https://<project>.supabase.co/rest/v1".
func NewCatalogRepository(client Getter, baseURL string) *CatalogRepository {
	return &CatalogRepository{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// AuthHeaders returns the headers PostgREST gateways expect for an API key.
func AuthHeaders(apiKey string) map[string]string {
	if apiKey == "" {
		return nil
	}
	return map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
		"Accept":        "application/json",
	}
}

// flexString decodes a JSON string or number into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type categoryRow struct {
	ID        flexString `json:"id"`
	Name      string     `json:"nome"`
	Key       string     `json:"id_singular"`
	Icon      string     `json:"icone_lucide"`
	SortOrder int        `json:"ordem"`
}

type itemRow struct {
	ID             flexString      `json:"id"`
	CategoryID     flexString      `json:"categoria_id"`
	Name           string          `json:"nome"`
	Description    string          `json:"descricao"`
	Price          domain.Money    `json:"preco"`
	ImageURL       string          `json:"url_imagem"`
	Available      *bool           `json:"disponivel"`
	OptionsTitle   string          `json:"options_title"`
	Options        json.RawMessage `json:"options"`
	HasAddOn       bool            `json:"has_checkbox_option"`
	AddOnLabel     string          `json:"checkbox_label"`
	AddOnSurcharge domain.Money    `json:"checkbox_surcharge"`
}

// ListCategories returns every category ordered by its sort key.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "ordem.asc")

	var rows []categoryRow
	if err := r.fetch(ctx, "categorias", q, &rows); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.Category{
			ID:        string(row.ID),
			Key:       row.Key,
			Name:      row.Name,
			Icon:      domain.Icon(row.Icon),
			SortOrder: row.SortOrder,
		})
	}
	return categories, nil
}

// ListAvailableItems returns every product flagged available.
func (r *CatalogRepository) ListAvailableItems(ctx context.Context) ([]domain.MenuItem, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("disponivel", "eq.true")

	var rows []itemRow
	if err := r.fetch(ctx, "produtos", q, &rows); err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(rows))
	for _, row := range rows {
		if row.Available != nil && !*row.Available {
			continue
		}
		variants, err := domain.DecodeVariants(row.Options)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.ID, err)
		}
		item := domain.MenuItem{
			ID:           string(row.ID),
			CategoryID:   string(row.CategoryID),
			Name:         row.Name,
			Description:  row.Description,
			Price:        row.Price,
			Available:    true,
			ImageURL:     row.ImageURL,
			OptionsTitle: row.OptionsTitle,
			Variants:     variants,
		}
		if row.HasAddOn && row.AddOnLabel != "" {
			item.AddOn = &domain.AddOn{Label: row.AddOnLabel, Surcharge: row.AddOnSurcharge}
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *CatalogRepository) fetch(ctx context.Context, table string, q url.Values, out any) error {
	endpoint := r.baseURL + "/" + table + "?" + q.Encode()

	resp, err := r.client.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}
