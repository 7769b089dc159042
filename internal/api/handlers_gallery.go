package api

import (
	"net/http"
	"strconv"
)

// GalleryHandler handles GET /gallery. Sold items are listed only with
// ?include_sold=true.
func (h *HandlerProvider) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	includeSold, _ := strconv.ParseBool(r.URL.Query().Get("include_sold"))

	list := h.catalog.ListAvailable
	if includeSold {
		list = h.catalog.ListAll
	}

	out, err := list(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(out))
}
