package i18n

import (
	"fmt"
	"strings"

	"github.com/piezasya/loyalty/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 未匹配时使用的语言
const DefaultLocale = constants.LocaleEsES

// ResolveLocale 解析请求语言：优先 lang 参数，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale, ok := Normalize(c.Query("lang")); ok {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale, ok := Normalize(tag); ok {
			return locale
		}
	}
	return DefaultLocale
}

// Normalize 将语言标签归一化为受支持的语言
func Normalize(tag string) (string, bool) {
	tag = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if tag == "" {
		return "", false
	}
	for _, locale := range constants.SupportedLocales {
		if strings.ToLower(locale) == tag {
			return locale, true
		}
	}
	primary := strings.SplitN(tag, "-", 2)[0]
	for _, locale := range constants.SupportedLocales {
		if strings.HasPrefix(strings.ToLower(locale), primary+"-") {
			return locale, true
		}
	}
	return "", false
}

// T 翻译消息键，缺失时依次回退到默认语言、英文、键本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	if msg, ok := lookup(DefaultLocale, key); ok {
		return msg
	}
	if msg, ok := lookup(constants.LocaleEnUS, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := catalog[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}
