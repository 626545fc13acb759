package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Luiza-Bandeira/VarandaJK/pkg/slug"
)

// Category is a menu tab.
type Category struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Icon      Icon   `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// Variant is one mutually exclusive option of an item, e.g. a size.
type Variant struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Price *Money `json:"price,omitempty"`
}

// AddOn is an optional extra with a fixed surcharge.
type AddOn struct {
	Label     string `json:"label"`
	Surcharge Money  `json:"surcharge"`
}

// ShortLabel is the label up to the first "(" so "Queijo (+R$ 3,00)" reads
// "Queijo" in the order message.
func (a AddOn) ShortLabel() string {
	return shortAddOnLabel(a.Label)
}

func shortAddOnLabel(label string) string {
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return "Opção selecionada"
	}
	return label
}

// MenuItem is a product card.
type MenuItem struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        Money     `json:"price"`
	Available    bool      `json:"available"`
	ImageURL     string    `json:"image_url,omitempty"`
	OptionsTitle string    `json:"options_title,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
	AddOn        *AddOn    `json:"add_on,omitempty"`
}

// Variant returns the variant with the given value.
func (m MenuItem) Variant(value string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Value == value {
			return v, true
		}
	}
	return Variant{}, false
}

// Menu is the loaded catalog: ordered tabs plus the available items of each tab.
type Menu struct {
	Categories      []Category            `json:"categories"`
	ItemsByCategory map[string][]MenuItem `json:"items_by_category"`

	items map[string]MenuItem
}

// NewMenu orders categories by sort key, fills missing keys and icons, drops
// unavailable items and groups the rest by category id.
func NewMenu(categories []Category, items []MenuItem) *Menu {
	cats := make([]Category, len(categories))
	copy(cats, categories)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].SortOrder < cats[j].SortOrder })

	for i := range cats {
		if cats[i].Key == "" {
			cats[i].Key = slug.Generate(cats[i].Name)
		}
		cats[i].Icon = ResolveIcon(string(cats[i].Icon))
	}

	m := &Menu{
		Categories:      cats,
		ItemsByCategory: make(map[string][]MenuItem, len(cats)),
		items:           make(map[string]MenuItem, len(items)),
	}
	for _, item := range items {
		if !item.Available {
			continue
		}
		m.ItemsByCategory[item.CategoryID] = append(m.ItemsByCategory[item.CategoryID], item)
		m.items[item.ID] = item
	}
	return m
}

// Item looks up an available item by id.
func (m *Menu) Item(id string) (MenuItem, bool) {
	item, ok := m.items[id]
	return item, ok
}

// ItemCount is the number of available items.
func (m *Menu) ItemCount() int {
	return len(m.items)
}

// DecodeVariants parses a catalog options document, a JSON array of
// {value, label[, price]}. Empty and null documents yield no variants.
func DecodeVariants(raw []byte) ([]Variant, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var variants []Variant
	if err := json.Unmarshal(raw, &variants); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	out := variants[:0]
	for _, v := range variants {
		if v.Value == "" {
			continue
		}
		if v.Label == "" {
			v.Label = v.Value
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
