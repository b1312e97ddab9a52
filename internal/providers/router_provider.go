package providers

import (
	"net/http"

	"aisd/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// add merges handlers registered for the same path so one mux pattern can
// serve several methods.
func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	for i, route := range rp.routes {
		if route.Url == url {
			rp.routes[i].Handler = methodHandler(method, handler, route.Handler)
			return
		}
	}
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: methodHandler(method, handler, nil),
	})
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func methodHandler(method string, handler http.Handler, fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			if fallback != nil {
				fallback.ServeHTTP(w, r)
				return
			}
			WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}
		handler.ServeHTTP(w, r)
	})
}
