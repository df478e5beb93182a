package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextContainsAlphaNum(t *testing.T) {
	assert.True(t, Text("hello").ContainsAlphaNum())
	assert.True(t, Text("x2").ContainsAlphaNum())
	assert.False(t, Text("...").ContainsAlphaNum())
	assert.False(t, Text("- - -").ContainsAlphaNum())
	assert.False(t, Text("").ContainsAlphaNum())
}

func TestLanguageFamily(t *testing.T) {
	assert.Equal(t, LanguageFamily("en"), LanguageEnglishUS.Family())
	assert.Equal(t, LanguageFamily("ru"), LanguageRussian.Family())
	assert.Equal(t, LanguageFamily(""), LanguageAuto.Family())
}

func TestLanguageIsAuto(t *testing.T) {
	assert.True(t, LanguageAuto.IsAuto())
	assert.False(t, LanguageGerman.IsAuto())
}
