// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// DefaultLanding is where an operator goes after signing in without a
// return address.
const DefaultLanding = "/dashboard"

// loopPaths never make sense as a return address.
var loopPaths = []string{"/login", "/logout"}

// ReturnTo extracts and validates the "return" query parameter that
// RequireSignedIn appends when it sends a browser to /login.
//
// Unsafe values (absolute URLs, scheme-relative URLs) and the sign-in pages
// themselves give fallback.
func ReturnTo(r *http.Request, fallback string) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", fallback)
	for _, p := range loopPaths {
		if ret == p || strings.HasPrefix(ret, p+"/") || strings.HasPrefix(ret, p+"?") {
			return fallback
		}
	}
	return ret
}
