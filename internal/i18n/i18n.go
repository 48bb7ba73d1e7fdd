// Package i18n 提供诊断消息的多语言支持
package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Language 语言类型
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// 全局语言设置
var (
	currentLang Language = LangEnglish
	mu          sync.RWMutex
)

// SetLanguage 设置当前语言
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	currentLang = lang
}

// SetLanguageFromString 从字符串设置语言
func SetLanguageFromString(lang string) {
	switch strings.ToLower(lang) {
	case "zh", "zh-cn", "zh_cn", "zh-tw", "zh-hk", "chinese":
		SetLanguage(LangChinese)
	default:
		SetLanguage(LangEnglish)
	}
}

// DetectLanguage 根据 KITE_LANG / LANG 环境变量设置语言
func DetectLanguage() Language {
	for _, key := range []string{"KITE_LANG", "LC_ALL", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(v), "zh") {
			SetLanguage(LangChinese)
		} else {
			SetLanguage(LangEnglish)
		}
		break
	}
	return GetLanguage()
}

// GetLanguage 获取当前语言
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// Has 判断消息 ID 是否存在英文文本
func Has(msgID string) bool {
	_, ok := messagesEN[msgID]
	return ok
}

// T 翻译消息（支持格式化参数）
func T(msgID string, args ...interface{}) string {
	mu.RLock()
	lang := currentLang
	mu.RUnlock()

	var messages map[string]string
	switch lang {
	case LangChinese:
		messages = messagesZH
	default:
		messages = messagesEN
	}

	if msg, ok := messages[msgID]; ok {
		return format(msg, args)
	}

	// 回退到英文
	if msg, ok := messagesEN[msgID]; ok {
		return format(msg, args)
	}

	// 找不到翻译则返回原始 ID
	return msgID
}

func format(msg string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
