package enums

import "fmt"

// BlogCategory groups blog posts on the public site.
type BlogCategory string

const (
	BlogCategoryGuides BlogCategory = "guias"
	BlogCategoryCases  BlogCategory = "casos"
	BlogCategoryFAQ    BlogCategory = "faq"
)

var validBlogCategories = []BlogCategory{
	BlogCategoryGuides,
	BlogCategoryCases,
	BlogCategoryFAQ,
}

// String implements fmt.Stringer.
func (b BlogCategory) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BlogCategory) IsValid() bool {
	for _, candidate := range validBlogCategories {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBlogCategory converts raw input into a BlogCategory.
func ParseBlogCategory(value string) (BlogCategory, error) {
	for _, candidate := range validBlogCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid blog category %q", value)
}

// BlogCategories lists the categories in display order.
func BlogCategories() []BlogCategory {
	out := make([]BlogCategory, len(validBlogCategories))
	copy(out, validBlogCategories)
	return out
}
