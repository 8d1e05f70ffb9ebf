package format

import "strings"

const (
	docBegin = "---\n"
	docEnd   = "...\n"
)

// Frame 给编码体加上文档首尾标记。
// body 末尾自带换行,标记之间因此会出现一个空行,这是约定的完整文档形态。
func Frame(body string) string {
	return docBegin + body + "\n" + docEnd
}

// Strip 去掉文本外层的文档标记,没有标记时原样返回。
func Strip(text string) string {
	text = strings.TrimPrefix(text, docBegin)
	if rest, ok := strings.CutSuffix(text, docEnd); ok {
		text = strings.TrimSuffix(rest, "\n")
	}
	return text
}
