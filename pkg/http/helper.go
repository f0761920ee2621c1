package http

import (
	"net/http"
	"rentora/pkg/config"
	apperrors "rentora/pkg/errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
)

// Actor is the authenticated party resolved by the fronting identity provider
// and forwarded via headers. This service never issues or verifies credentials.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func ExtractActor(r *http.Request) (Actor, error) {
	id := r.Header.Get(HeaderUserID)
	if id == "" {
		return Actor{}, apperrors.InvalidInput("missing " + HeaderUserID + " header")
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return Actor{}, apperrors.InvalidInput(HeaderUserID + " must be a valid object id")
	}

	return Actor{
		ID:   id,
		Role: r.Header.Get(HeaderUserRole),
	}, nil
}

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}
