package speech

import "strings"

type Language string

const (
	LanguageAuto      = Language("")
	LanguageEnglishUS = Language("en-US")
	LanguageFrench    = Language("fr-FR")
	LanguageGerman    = Language("de-DE")
	LanguageRussian   = Language("ru-RU")
)

type LanguageFamily string

func (l Language) Family() LanguageFamily {
	words := strings.SplitN(string(l), "-", 2)
	return LanguageFamily(words[0])
}

func (l Language) IsAuto() bool {
	return l == LanguageAuto
}
