package http

import (
	"net/http"
	"strings"

	apperrors "hallbook/pkg/errors"
)

// HeaderUserID carries the authenticated caller's id. Authentication happens in
// front of this service; the engine only trusts the forwarded identity.
const HeaderUserID = "X-User-ID"

func ExtractUserID(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return "", apperrors.Unauthorized("Missing " + HeaderUserID + " header")
	}
	return userID, nil
}
