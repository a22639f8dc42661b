package models

import "gorm.io/datatypes"

// StringList is a list of strings stored as a JSON column.
type StringList = datatypes.JSONSlice[string]

// Contains reports whether v is present in list.
func Contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Without returns list with every occurrence of v removed.
func Without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
