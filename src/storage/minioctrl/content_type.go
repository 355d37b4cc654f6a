package minioctrl

import "docsearch/src/core/document"

func contentTypeFor(key string) string {
	switch document.Ext(key) {
	case ".pdf":
		return "application/pdf"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
