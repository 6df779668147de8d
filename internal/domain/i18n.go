package domain

// I18NString is a name localized into the three catalog locales.
// All entity names in the catalog carry all three; empty strings mean
// the translation has not been provided yet.
type I18NString struct {
	Chinese  string `json:"chinese"`
	English  string `json:"english"`
	Japanese string `json:"japanese"`
}

// IsEmpty reports whether no locale has a value.
func (s I18NString) IsEmpty() bool {
	return s.Chinese == "" && s.English == "" && s.Japanese == ""
}
