package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/handlers"
	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
)

type Options struct {
	Handler     *handlers.Handler
	WebSocket   http.HandlerFunc
	Auth        func(http.Handler) http.Handler
	StaticDir   string
	CORSOrigins []string
	Log         *zap.Logger
}

// NewRouter registers API routes first and the page catch-all last, then wraps
// the router in recovery, request logging and CORS.
func NewRouter(o Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)

	RegisterRoutes(r, o.Handler, o.WebSocket, o.Auth)
	RegisterPages(r, o.StaticDir)

	var h http.Handler = r
	h = middleware.CORS(o.CORSOrigins)(h)
	h = middleware.Logging(o.Log)(h)
	h = middleware.Recovery(o.Log)(h)
	return h
}
