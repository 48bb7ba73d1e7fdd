package i18n

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var verbPattern = regexp.MustCompile(`%(\[\d\])?[sdvq]`)

func TestTablesAreComplete(t *testing.T) {
	for id, en := range messagesEN {
		zh, ok := messagesZH[id]
		if !assert.True(t, ok, "missing zh message for %s", id) {
			continue
		}
		assert.Len(t, verbPattern.FindAllString(zh, -1), len(verbPattern.FindAllString(en, -1)),
			"argument count differs for %s", id)
	}
	for id := range messagesZH {
		assert.True(t, Has(id), "zh message %s has no en text", id)
	}
}

func TestTranslate(t *testing.T) {
	defer SetLanguage(GetLanguage())

	SetLanguage(LangEnglish)
	assert.Equal(t, "file 'a.kite' not found", T(ErrFileNotFound, "a.kite"))
	assert.Equal(t, "Type Mismatch Error", T(TitleTypeMismatch))

	SetLanguageFromString("zh-CN")
	assert.Equal(t, LangChinese, GetLanguage())
	assert.Equal(t, "文件 'a.kite' 不存在", T(ErrFileNotFound, "a.kite"))

	assert.Equal(t, "no.such.id", T("no.such.id"))

	SetLanguageFromString("fr")
	assert.Equal(t, LangEnglish, GetLanguage())
}

func TestDetectLanguage(t *testing.T) {
	defer SetLanguage(GetLanguage())

	t.Setenv("KITE_LANG", "zh_CN.UTF-8")
	assert.Equal(t, LangChinese, DetectLanguage())

	t.Setenv("KITE_LANG", "en_US.UTF-8")
	assert.Equal(t, LangEnglish, DetectLanguage())
}
