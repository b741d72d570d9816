package mathtex

import (
	"regexp"
	"strings"
)

var (
	bmatrixPattern   = regexp.MustCompile(`(?s)\\begin\{bmatrix\}(.*?)\\end\{bmatrix\}`)
	pmatrixPattern   = regexp.MustCompile(`(?s)\\begin\{pmatrix\}(.*?)\\end\{pmatrix\}`)
	matrixRowPattern = regexp.MustCompile(`(?:\\\\|\\cr|\\0|\\n)`)
)

// FlattenMatrices turns bmatrix / pmatrix environments into bracketed ASCII,
// rows separated by "; " and columns by ", ".
func FlattenMatrices(s string) string {
	s = bmatrixPattern.ReplaceAllStringFunc(s, func(m string) string {
		return "[" + flattenMatrixBody(bmatrixPattern.FindStringSubmatch(m)[1]) + "]"
	})
	return pmatrixPattern.ReplaceAllStringFunc(s, func(m string) string {
		return "(" + flattenMatrixBody(pmatrixPattern.FindStringSubmatch(m)[1]) + ")"
	})
}

func flattenMatrixBody(body string) string {
	body = matrixRowPattern.ReplaceAllString(body, "; ")
	body = strings.ReplaceAll(body, "&", ", ")
	return collapse(body)
}
