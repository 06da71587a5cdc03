package types

// ProductVariant is one selectable size/flavour of a product. Price is the
// full unit price in minor units, not a delta on the base price.
type ProductVariant struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	PriceMinor int64  `json:"price_minor"`
}

// ProductVariants is stored as a jsonb column on products.
type ProductVariants []ProductVariant

// Find returns the variant with the given key, if any.
func (v ProductVariants) Find(key string) (ProductVariant, bool) {
	for _, variant := range v {
		if variant.Key == key {
			return variant, true
		}
	}
	return ProductVariant{}, false
}

// ProductAddon is an optional extra (sauce, topping) priced per unit.
type ProductAddon struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	PriceMinor int64  `json:"price_minor"`
}

// ProductAddons is stored as a jsonb column on products.
type ProductAddons []ProductAddon

// Find returns the addon with the given key, if any.
func (a ProductAddons) Find(key string) (ProductAddon, bool) {
	for _, addon := range a {
		if addon.Key == key {
			return addon, true
		}
	}
	return ProductAddon{}, false
}

// LineAddon snapshots a chosen addon on a cart line or order line.
type LineAddon struct {
	PriceMinor int64 `json:"price_minor"`
	Quantity   int   `json:"quantity"`
}

// LineAddons maps addon key to the chosen quantity and captured price.
type LineAddons map[string]LineAddon
