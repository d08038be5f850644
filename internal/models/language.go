package models

// BaseLanguage is the language the backend always generates instructions
// in. Jobs targeting it need no translation lookup.
const BaseLanguage = "en"

// Language is one entry of the closed target-language set offered at
// submission time.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists every target language a job can be submitted with, in
// display order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "hi", Name: "Hindi"},
}

// ValidLanguage reports whether code is part of the closed set.
func ValidLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}
