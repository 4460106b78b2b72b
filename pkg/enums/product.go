package enums

// ProductCategory mirrors the catalog's top-level category field.
type ProductCategory string

const (
	ProductCategoryMens   ProductCategory = "mens"
	ProductCategoryWomens ProductCategory = "womens"
	ProductCategoryUnisex ProductCategory = "unisex"
)

var productCategories = map[ProductCategory]struct{}{
	ProductCategoryMens:   {},
	ProductCategoryWomens: {},
	ProductCategoryUnisex: {},
}

// IsValid reports whether the category is part of the catalog taxonomy.
func (c ProductCategory) IsValid() bool {
	_, ok := productCategories[c]
	return ok
}
