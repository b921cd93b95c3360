package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{name: "default", url: "/", want: "es-ES"},
		{name: "query wins", url: "/?lang=zh-CN", header: "en-US", want: "zh-CN"},
		{name: "header primary tag", url: "/", header: "en;q=0.9,fr;q=0.8", want: "en-US"},
		{name: "unsupported header", url: "/", header: "fr-FR", want: "es-ES"},
		{name: "underscore", url: "/?lang=en_us", want: "en-US"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", tc.url, nil)
			if tc.header != "" {
				c.Request.Header.Set("Accept-Language", tc.header)
			}
			if got := ResolveLocale(c); got != tc.want {
				t.Fatalf("ResolveLocale=%s want %s", got, tc.want)
			}
		})
	}
}

func TestTranslateFallsBack(t *testing.T) {
	if got := T("en-US", "error.insufficient_points"); got != "Insufficient points" {
		t.Fatalf("unexpected en-US message: %s", got)
	}
	if got := T("xx-XX", "error.insufficient_points"); got != T(DefaultLocale, "error.insufficient_points") {
		t.Fatalf("unknown locale should fall back to default, got %s", got)
	}
	if got := T("en-US", "error.not_a_key"); got != "error.not_a_key" {
		t.Fatalf("missing key should echo key, got %s", got)
	}
}

func TestCatalogsShareKeys(t *testing.T) {
	base := catalog[DefaultLocale]
	for locale, table := range catalog {
		for key := range base {
			if _, ok := table[key]; !ok {
				t.Fatalf("locale %s missing key %s", locale, key)
			}
		}
	}
}
