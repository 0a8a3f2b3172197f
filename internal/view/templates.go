package view

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/pkg/money"
	"github.com/fekuna/omnipos-storefront-service/web"
)

var funcs = template.FuncMap{
	"money": func(c money.Cents) string {
		return "$" + c.String()
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Templates parses every embedded page. Each template is named after its
// file, e.g. "cart.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(web.FS, "templates/*.html")
}

// Static serves the embedded stylesheet and friends.
func Static() (http.FileSystem, error) {
	sub, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
