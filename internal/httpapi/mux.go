package httpapi

import "net/http"

// NewMux returns a mux with /healthz registered. A nil check always reports ok.
func NewMux(check CheckFunc) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, check)
	return mux
}
