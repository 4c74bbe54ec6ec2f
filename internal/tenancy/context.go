package tenancy

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const orgKey ctxKey = "medspa.org_id"

// OrgHeader carries the tenant on every booking API request.
const OrgHeader = "X-Org-Id"

// WithOrgID stores the org id in context.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgKey, strings.TrimSpace(orgID))
}

// OrgIDFromContext extracts the org id if present.
func OrgIDFromContext(ctx context.Context) (string, bool) {
	orgID, ok := ctx.Value(orgKey).(string)
	return orgID, ok && orgID != ""
}

// OrgIDFromRequest prefers the context value set by middleware and falls back
// to the raw header.
func OrgIDFromRequest(r *http.Request) (string, bool) {
	if orgID, ok := OrgIDFromContext(r.Context()); ok {
		return orgID, true
	}
	orgID := strings.TrimSpace(r.Header.Get(OrgHeader))
	return orgID, orgID != ""
}
