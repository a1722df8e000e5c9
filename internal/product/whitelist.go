package product

import (
	"errors"
	"fmt"
)

// Validation errors carry the operator-facing (Arabic) message directly;
// handlers return them verbatim as 400 bodies.
var ErrNoImages = errors.New("يجب إرفاق صورة واحدة على الأقل")

// ValidateSubcategory enforces the category -> subcategory whitelist.
// A category listed in rules must receive one of its allowed values; a
// category with no rules must not receive a subcategory at all.
func ValidateSubcategory(rules map[string][]string, category, subcategory string) error {
	allowed, ok := rules[category]
	if !ok || len(allowed) == 0 {
		if subcategory != "" {
			return fmt.Errorf("الفئة %s لا تقبل تصنيفًا فرعيًا", category)
		}
		return nil
	}
	if subcategory == "" {
		if category == "حناء بودر" {
			return errors.New("يجب تحديد حجم الحناء")
		}
		return fmt.Errorf("يجب تحديد النوع للفئة %s", category)
	}
	for _, v := range allowed {
		if v == subcategory {
			return nil
		}
	}
	return fmt.Errorf("النوع %s غير صالح للفئة %s", subcategory, category)
}

// DisplayName suffixes the subcategory onto the name for whitelisted
// categories, matching how sized products are presented in the storefront.
func DisplayName(rules map[string][]string, name, category, subcategory string) string {
	if allowed, ok := rules[category]; ok && len(allowed) > 0 && subcategory != "" {
		return name + " - " + subcategory
	}
	return name
}
