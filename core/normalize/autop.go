package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// allBlocks lists the block-level tags autop never wraps in a paragraph.
const allBlocks = `(?:table|thead|tfoot|caption|col|colgroup|tbody|tr|td|th|div|dl|dd|dt|ul|ol|li|pre|form|map|area|blockquote|address|math|style|p|h[1-6]|hr|fieldset|legend|section|article|aside|hgroup|header|footer|nav|figure|figcaption|details|menu|summary)`

var (
	prePattern         = regexp.MustCompile(`(?s)<pre[^>]*>.*?</pre>`)
	prePlaceholder     = regexp.MustCompile(`<pre wp-pre-tag-(\d+)></pre>`)
	doubleBreak        = regexp.MustCompile(`<br\s*/?>\s*<br\s*/?>`)
	blockOpen          = regexp.MustCompile(`(<` + allBlocks + `[\s/>])`)
	blockClose         = regexp.MustCompile(`(</` + allBlocks + `>)`)
	newlineRun         = regexp.MustCompile(`\n\n+`)
	blankLine          = regexp.MustCompile(`\n\s*\n`)
	emptyParagraph     = regexp.MustCompile(`<p>\s*</p>`)
	paragraphOpenBlock = regexp.MustCompile(`<p>\s*(</?` + allBlocks + `[^>]*>)`)
	blockParagraphEnd  = regexp.MustCompile(`(</?` + allBlocks + `[^>]*>)\s*</p>`)
	lineBreak          = regexp.MustCompile(`(<br[^>]*>)?\s*\n`)
	blockThenBreak     = regexp.MustCompile(`(</?` + allBlocks + `[^>]*>)\s*<br />`)
	breakThenBlock     = regexp.MustCompile(`<br />(\s*</?(?:p|li|div|dl|dd|dt|th|pre|td|ul|ol)[^>]*>)`)
)

// Autop replaces double line breaks with paragraphs and single line breaks
// with <br />, leaving block-level markup and <pre> contents alone.
// Autop(Autop(s)) == Autop(s).
func Autop(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text += "\n"

	var pres []string
	text = prePattern.ReplaceAllStringFunc(text, func(m string) string {
		pres = append(pres, m)
		return fmt.Sprintf("<pre wp-pre-tag-%d></pre>", len(pres)-1)
	})

	text = doubleBreak.ReplaceAllString(text, "\n\n")
	text = blockOpen.ReplaceAllString(text, "\n\n$1")
	text = blockClose.ReplaceAllString(text, "$1\n\n")
	text = newlineRun.ReplaceAllString(text, "\n\n")

	var b strings.Builder
	for _, chunk := range blankLine.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(chunk)
		b.WriteString("</p>\n")
	}
	text = b.String()

	text = emptyParagraph.ReplaceAllString(text, "")
	text = paragraphOpenBlock.ReplaceAllString(text, "$1")
	text = blockParagraphEnd.ReplaceAllString(text, "$1")

	text = lineBreak.ReplaceAllStringFunc(text, func(m string) string {
		if strings.HasPrefix(m, "<br") {
			return m
		}
		return "<br />\n"
	})
	text = blockThenBreak.ReplaceAllString(text, "$1")
	text = breakThenBlock.ReplaceAllString(text, "$1")

	if len(pres) > 0 {
		text = prePlaceholder.ReplaceAllStringFunc(text, func(m string) string {
			i, err := strconv.Atoi(prePlaceholder.FindStringSubmatch(m)[1])
			if err != nil || i >= len(pres) {
				return m
			}
			return pres[i]
		})
	}

	return strings.TrimSuffix(text, "\n")
}
