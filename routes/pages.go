package routes

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

// Pages are the front-end routes answered with index.html.
var Pages = []string{
	"/",
	"/login",
	"/dashboard",
	"/rencana-strategis",
	"/analisis-swot",
	"/matriks-tows",
	"/sasaran-strategi",
	"/manajemen-risiko/input-data",
	"/manajemen-risiko/residual",
	"/monitoring-evaluasi",
	"/peluang",
	"/risk-profile",
	"/laporan",
	"/master-data",
}

const indexFile = "index.html"

// PageHandler serves the page table from dir: page routes get index.html,
// existing files are served as-is and everything else is 404.
func PageHandler(dir string) http.Handler {
	pages := make(map[string]bool, len(Pages))
	for _, p := range Pages {
		pages[p] = true
	}
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		p := path.Clean("/" + r.URL.Path)
		if p != "/" {
			p = strings.TrimSuffix(p, "/")
		}
		if pages[p] {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, filepath.Join(dir, indexFile))
			return
		}

		if isFile(root, p) {
			files.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func isFile(root http.Dir, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

// RegisterPages mounts the page handler as the router's catch-all. Register it last.
func RegisterPages(r *mux.Router, dir string) {
	r.PathPrefix("/").Handler(PageHandler(dir))
}
