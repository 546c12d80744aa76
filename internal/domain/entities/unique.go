package entities

// uniqueGroups - объявленные unique-группы по kind.
// Кандидат конфликтует, если совпадают ВСЕ поля хотя бы одной группы.
var uniqueGroups = map[Kind][][]string{
	KindProduct:          {{"product_name"}},
	KindAttribute:        {{"attribute_name"}},
	KindProductAttribute: {{"product_id", "attribute_id"}},
	KindCategory:         {{"category_name"}},
	KindVendor:           {{"company_name"}},
	KindUser:             {{"first_name", "last_name"}, {"email"}, {"phone"}},
	KindPhoto:            {{"url"}},
	KindRole:             {{"value"}},
	KindUserRole:         {{"user_id", "role_id"}},
	KindRefreshToken:     {{"user_id"}},
}

// UniqueGroups returns a copy of the unique field groups declared for kind.
func UniqueGroups(kind Kind) [][]string {
	groups := uniqueGroups[kind]
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = append([]string(nil), g...)
	}
	return out
}

// UniqueFields returns the flattened set of fields taking part in any unique group.
func UniqueFields(kind Kind) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range uniqueGroups[kind] {
		for _, f := range g {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
