package filtergraph

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Overlay describes the optional drawtext layers: a product title card shown
// during a leading window and a persistent buy-URL lower third.
type Overlay struct {
	Title         string
	TitleStart    float64
	TitleEnd      float64
	BuyURL        string
	FontFile      string
	FontColor     string
	TitleFontSize int
	URLFontSize   int
}

func (o Overlay) active() bool {
	return strings.TrimSpace(o.Title) != "" || strings.TrimSpace(o.BuyURL) != ""
}

// filters renders the overlay as a comma-joined drawtext chain.
func (o Overlay) filters() string {
	var parts []string

	if title := strings.TrimSpace(o.Title); title != "" {
		opts := []string{
			fmt.Sprintf("text='%s'", escapeDrawText(title)),
			fmt.Sprintf("fontsize=%d", positiveOr(o.TitleFontSize, 64)),
			fmt.Sprintf("fontcolor=%s", fallback(o.FontColor, "white")),
			"bordercolor=black",
			"borderw=2",
			"x=(w-text_w)/2",
			"y=(h-text_h)/2",
		}
		if o.TitleEnd > o.TitleStart {
			enable := fmt.Sprintf("between(t,%s,%s)", formatFloat(o.TitleStart), formatFloat(o.TitleEnd))
			opts = append(opts, fmt.Sprintf("enable='%s'", escapeFilterValue(enable)))
		}
		if font := strings.TrimSpace(o.FontFile); font != "" {
			opts = append(opts, fmt.Sprintf("fontfile='%s'", escapePath(font)))
		}
		parts = append(parts, "drawtext="+strings.Join(opts, ":"))
	}

	if url := strings.TrimSpace(o.BuyURL); url != "" {
		opts := []string{
			fmt.Sprintf("text='%s'", escapeDrawText(url)),
			fmt.Sprintf("fontsize=%d", positiveOr(o.URLFontSize, 36)),
			fmt.Sprintf("fontcolor=%s", fallback(o.FontColor, "white")),
			"bordercolor=black",
			"borderw=2",
			"x=(w-text_w)/2",
			"y=h-text_h-40",
		}
		if font := strings.TrimSpace(o.FontFile); font != "" {
			opts = append(opts, fmt.Sprintf("fontfile='%s'", escapePath(font)))
		}
		parts = append(parts, "drawtext="+strings.Join(opts, ":"))
	}

	return strings.Join(parts, ",")
}

func positiveOr(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// escapeDrawText escapes text for a single-quoted drawtext value.
func escapeDrawText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")

	const newlinePlaceholder = "\x00"
	value = strings.ReplaceAll(value, "\n", newlinePlaceholder)

	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, newlinePlaceholder, `\n`)
	value = strings.ReplaceAll(value, "'", "''")
	return value
}

func escapePath(value string) string {
	value = filepath.Clean(value)
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValue(value string) string {
	value = escapeFilterValueNoQuotes(value)
	value = strings.ReplaceAll(value, "'", `\'`)
	return value
}

func escapeFilterValueNoQuotes(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, ",", `\,`)
	return value
}
