package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

var (
	boldExpr   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicExpr = regexp.MustCompile(`(^|[^*])\*([^*]+?)\*`)
	headerExpr = regexp.MustCompile(`(?m)^#{1,6}\s*`)
)

// RenderLongForm builds the archive page content as a semantic HTML block
// list: images first, then paragraphs and bullet lists, a trailing
// call-to-action link last.
func RenderLongForm(post *domain.Post, images []domain.GeneratedImage, cfg config.PublishConfig) string {
	var b strings.Builder

	for _, img := range images {
		b.WriteString(fmt.Sprintf("<img src=%q/>", img.URL))
	}

	if post.Subtitle != "" {
		b.WriteString("<h4>" + escapeHTML(post.Subtitle) + "</h4>")
	}

	var list []string
	flushList := func() {
		if len(list) == 0 {
			return
		}
		b.WriteString("<ul>")
		for _, item := range list {
			b.WriteString("<li>" + inlineMarkup(item) + "</li>")
		}
		b.WriteString("</ul>")
		list = nil
	}

	for _, para := range strings.Split(post.LongForm, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "#") {
			flushList()
			heading := strings.TrimSpace(headerExpr.ReplaceAllString(para, ""))
			b.WriteString("<h3>" + escapeHTML(heading) + "</h3>")
			continue
		}
		if items, ok := bulletItems(para); ok {
			list = append(list, items...)
			continue
		}
		flushList()
		b.WriteString("<p>" + inlineMarkup(para) + "</p>")
	}
	flushList()

	b.WriteString(fmt.Sprintf("<p><a href=%q>%s</a></p>", cfg.ChannelURL, escapeHTML(cfg.PromoLine)))
	return b.String()
}

// FormatCaption translates markdown-style emphasis and bullets into the
// channel's lightweight HTML markup. Special characters are escaped before
// the emphasis tags are inserted so the inserted tags survive.
func FormatCaption(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if marker, ok := bulletMarker(trimmed); ok {
			out = append(out, "• "+inlineMarkup(strings.TrimSpace(trimmed[len(marker):])))
			continue
		}
		out = append(out, inlineMarkup(headerExpr.ReplaceAllString(line, "")))
	}
	return strings.Join(out, "\n")
}

// inlineMarkup escapes HTML first, then rewrites the (escape-stable) markdown
// emphasis markers into tags, so user text can never be parsed as markup.
func inlineMarkup(text string) string {
	text = escapeHTML(text)
	text = boldExpr.ReplaceAllString(text, "<b>$1</b>")
	text = italicExpr.ReplaceAllString(text, "$1<i>$2</i>")
	return text
}

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

func bulletMarker(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return marker, true
		}
	}
	return "", false
}

func bulletItems(para string) ([]string, bool) {
	lines := strings.Split(para, "\n")
	var items []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		marker, ok := bulletMarker(trimmed)
		if !ok {
			return nil, false
		}
		items = append(items, strings.TrimSpace(trimmed[len(marker):]))
	}
	return items, len(items) > 0
}
