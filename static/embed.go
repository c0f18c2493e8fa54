// Package static holds the browser assets of the run page.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed css/*.css js/*.js
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}

// Handler serves the assets, from dir when it is set so they can be edited
// without a rebuild.
func Handler(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	return http.FileServer(http.FS(embedded))
}
