package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMenu_OrdersAndGroups(t *testing.T) {
	categories := []Category{
		{ID: "2", Name: "Bebidas", Icon: "CupSoda", SortOrder: 3},
		{ID: "1", Key: "lanches", Name: "Lanches", Icon: "Sandwich", SortOrder: 1},
		{ID: "3", Name: "Porções Especiais", Icon: "unknown-icon", SortOrder: 2},
	}
	items := []MenuItem{
		{ID: "10", CategoryID: "1", Name: "X-Tudo", Price: 2500, Available: true},
		{ID: "11", CategoryID: "1", Name: "X-Salada", Price: 2000, Available: false},
		{ID: "12", CategoryID: "2", Name: "Refrigerante", Price: 600, Available: true},
		{ID: "13", CategoryID: "1", Name: "X-Bacon", Price: 2700, Available: true},
	}

	m := NewMenu(categories, items)

	require.Len(t, m.Categories, 3)
	assert.Equal(t, []string{"1", "3", "2"}, []string{m.Categories[0].ID, m.Categories[1].ID, m.Categories[2].ID})
	assert.Equal(t, "lanches", m.Categories[0].Key)
	assert.Equal(t, "porcoes-especiais", m.Categories[1].Key)
	assert.Equal(t, DefaultIcon, m.Categories[1].Icon)
	assert.Equal(t, IconCupSoda, m.Categories[2].Icon)

	require.Len(t, m.ItemsByCategory["1"], 2)
	assert.Equal(t, "X-Tudo", m.ItemsByCategory["1"][0].Name)
	assert.Equal(t, "X-Bacon", m.ItemsByCategory["1"][1].Name)
	assert.Empty(t, m.ItemsByCategory["3"])
	assert.Equal(t, 3, m.ItemCount())

	_, ok := m.Item("11")
	assert.False(t, ok, "unavailable items are not addressable")

	item, ok := m.Item("12")
	require.True(t, ok)
	assert.Equal(t, "Refrigerante", item.Name)
}

func TestNewMenu_DoesNotMutateInput(t *testing.T) {
	categories := []Category{{ID: "b", SortOrder: 2}, {ID: "a", SortOrder: 1}}

	_ = NewMenu(categories, nil)

	assert.Equal(t, "b", categories[0].ID)
}

func TestAddOn_ShortLabel(t *testing.T) {
	assert.Equal(t, "Com Queijo", AddOn{Label: "Com Queijo (+R$ 3,00)"}.ShortLabel())
	assert.Equal(t, "Bacon extra", AddOn{Label: "  Bacon extra  "}.ShortLabel())
	assert.Equal(t, "Opção selecionada", AddOn{Label: "(+R$ 2,00)"}.ShortLabel())
}

func TestResolveIcon(t *testing.T) {
	tests := []struct {
		in   string
		want Icon
	}{
		{"Pizza", IconPizza},
		{" beer ", IconBeer},
		{"ICECREAM", IconIceCream},
		{"", DefaultIcon},
		{"Rocket", DefaultIcon},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIcon(tt.in))
		})
	}
}

func TestIcon_AssetPath(t *testing.T) {
	assert.Equal(t, "/static/icons/cup-soda.svg", IconCupSoda.AssetPath())
	assert.Equal(t, "/static/icons/utensils-crossed.svg", Icon("nope").AssetPath())
}

func TestSupportedIcons(t *testing.T) {
	icons := SupportedIcons()
	require.Len(t, icons, 12)
	assert.Equal(t, IconUtensilsCrossed, icons[0].ID)
	assert.Equal(t, IconCake, icons[11].ID)
}

func TestDecodeVariants(t *testing.T) {
	got, err := DecodeVariants([]byte(`[{"value":"p","label":"Pequena"},{"value":"g","label":"Grande","price":"45.90"},{"value":"m"},{"label":"sem valor"}]`))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Pequena", got[0].Label)
	assert.Nil(t, got[0].Price)
	require.NotNil(t, got[1].Price)
	assert.Equal(t, Money(4590), *got[1].Price)
	assert.Equal(t, "m", got[2].Label)

	for _, raw := range []string{"", "null", " [] "} {
		got, err := DecodeVariants([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	_, err = DecodeVariants([]byte(`{"value":"x"}`))
	assert.Error(t, err)
}
