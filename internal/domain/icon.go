package domain

import "strings"

// Icon identifies one of the category icons shipped with the frontend.
type Icon string

const (
	IconUtensilsCrossed Icon = "UtensilsCrossed"
	IconBeef            Icon = "Beef"
	IconSandwich        Icon = "Sandwich"
	IconPizza           Icon = "Pizza"
	IconDrumstick       Icon = "Drumstick"
	IconSalad           Icon = "Salad"
	IconSoup            Icon = "Soup"
	IconCupSoda         Icon = "CupSoda"
	IconBeer            Icon = "Beer"
	IconCoffee          Icon = "Coffee"
	IconIceCream        Icon = "IceCream"
	IconCake            Icon = "Cake"
)

// DefaultIcon is used for unknown or empty icon names.
const DefaultIcon = IconUtensilsCrossed

const iconAssetDir = "/static/icons/"

var iconAssets = map[Icon]string{
	IconUtensilsCrossed: "utensils-crossed.svg",
	IconBeef:            "beef.svg",
	IconSandwich:        "sandwich.svg",
	IconPizza:           "pizza.svg",
	IconDrumstick:       "drumstick.svg",
	IconSalad:           "salad.svg",
	IconSoup:            "soup.svg",
	IconCupSoda:         "cup-soda.svg",
	IconBeer:            "beer.svg",
	IconCoffee:          "coffee.svg",
	IconIceCream:        "ice-cream.svg",
	IconCake:            "cake.svg",
}

var iconOrder = []Icon{
	IconUtensilsCrossed, IconBeef, IconSandwich, IconPizza, IconDrumstick, IconSalad,
	IconSoup, IconCupSoda, IconBeer, IconCoffee, IconIceCream, IconCake,
}

// ResolveIcon maps a catalog icon name to a supported Icon. Matching ignores
// case and surrounding whitespace; anything else falls back to DefaultIcon.
func ResolveIcon(name string) Icon {
	name = strings.TrimSpace(name)
	if _, ok := iconAssets[Icon(name)]; ok {
		return Icon(name)
	}
	for _, icon := range iconOrder {
		if strings.EqualFold(string(icon), name) {
			return icon
		}
	}
	return DefaultIcon
}

// AssetPath returns the static path of the icon image.
func (i Icon) AssetPath() string {
	file, ok := iconAssets[i]
	if !ok {
		file = iconAssets[DefaultIcon]
	}
	return iconAssetDir + file
}

// IconAsset pairs an icon id with its asset path.
type IconAsset struct {
	ID   Icon   `json:"id"`
	Path string `json:"path"`
}

// SupportedIcons lists every icon in a stable order.
func SupportedIcons() []IconAsset {
	out := make([]IconAsset, 0, len(iconOrder))
	for _, icon := range iconOrder {
		out = append(out, IconAsset{ID: icon, Path: icon.AssetPath()})
	}
	return out
}
