package serverapp

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"scoundrel/internal/page"
)

func (a *api) indexPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(page.IndexPage(a.manager.List())).ServeHTTP(w, r)
}

func (a *api) runPage(w http.ResponseWriter, r *http.Request) {
	s, err := a.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		templ.Handler(page.NotFoundPage(), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
		return
	}
	templ.Handler(page.RunPage(s.View())).ServeHTTP(w, r)
}
