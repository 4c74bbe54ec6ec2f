package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	httpmiddleware "github.com/wolfman30/medspa-booking-wizard/internal/http/middleware"
	"github.com/wolfman30/medspa-booking-wizard/internal/tenancy"
)

// requireOrgID rejects tenant routes without a well-formed X-Org-Id and
// stores the normalized id in the request context.
func requireOrgID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(tenancy.OrgHeader))
		if raw == "" {
			writeOrgError(w, "missing "+tenancy.OrgHeader)
			return
		}
		orgID, err := uuid.Parse(raw)
		if err != nil {
			writeOrgError(w, "invalid "+tenancy.OrgHeader)
			return
		}
		ctx := tenancy.WithOrgID(r.Context(), orgID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeOrgError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func orgIDFromRequest(r *http.Request) (string, bool) {
	return tenancy.OrgIDFromContext(r.Context())
}

// tenantClientKey buckets rate limits per tenant and client address.
func tenantClientKey(r *http.Request) string {
	orgID, _ := orgIDFromRequest(r)
	return orgID + "|" + httpmiddleware.ClientIP(r)
}
