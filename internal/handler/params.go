package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// pathUUID binds a uuid path parameter the way generated oapi-codegen
// routers do. On failure it writes a 400 and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badParam(w, name, err)
		return uuid.Nil, false
	}
	return id, true
}

// pathInt binds an integer path parameter.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var n int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &n,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badParam(w, name, err)
		return 0, false
	}
	return n, true
}

// queryInt binds an optional integer query parameter; nil when absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	var n *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &n); err != nil {
		badParam(w, name, err)
		return nil, false
	}
	return n, true
}

// tripScope resolves the caller and the {tripId} path parameter shared by
// every trip-scoped route.
func tripScope(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	owner, ok := userID(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	tripID, ok := pathUUID(w, r, "tripId")
	return owner, tripID, ok
}
