package protocol

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	headerMessageType = "x-ps3-clan"
	headerVersion     = "1.00"
	contentType       = "application/x-ps3-clan"

	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
)

// Write sends a clan envelope carrying pre-rendered inner XML. The inner
// content must already be escaped; view renderers in this package take care
// of that.
func Write(w http.ResponseWriter, code ResultCode, inner string) {
	w.Header().Set("Message-Type", headerMessageType)
	w.Header().Set("Version", headerVersion)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code.HTTPStatus())
	fmt.Fprintf(w, `%s<clan result="%s">%s</clan>`, xmlDeclaration, code, inner)
}

// WriteResult sends an empty envelope carrying only the result code.
func WriteResult(w http.ResponseWriter, code ResultCode) {
	Write(w, code, "")
}

// List wraps rendered items in the paging envelope the client expects.
// results is the number of items in this page, total the full count.
func List(items []string, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<list results="%d" total="%d">`, len(items), total)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString("</list>")
	return b.String()
}
