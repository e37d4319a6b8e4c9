package facade

import (
	"net/http"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// wrap recovers a panic inside handler and converts it to the façade's
// last-error-key channel plus a generic false/empty response, per
// spec.md §7 ("Panics at FFI boundaries are caught and converted to
// Unknown"). The Unix-socket HTTP server has no other caller to report a
// panic to, so this is the engine's only panic boundary.
func (f *Facade) wrap(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := pkgerr.Recover(rec)
				f.log.Error("facade: recovered panic in handler", "path", r.URL.Path, "err", err)
				f.failErr(err)
				writeJSON(w, http.StatusOK, false)
			}
		}()
		handler(w, r)
	}
}
