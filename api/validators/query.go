package validators

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter, returning the
// fallback when the parameter is absent.
func ParseQueryInt(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be an integer")
	}
	return parsed, nil
}

// ParseQueryIntPtr reads an optional integer query parameter, returning nil
// when absent.
func ParseQueryIntPtr(values url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be an integer")
	}
	return &parsed, nil
}

// ParseQueryString reads an optional string query parameter, returning nil
// when absent or blank.
func ParseQueryString(values url.Values, name string) *string {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// ParsePathUUID parses a path parameter that must be a UUID.
func ParsePathUUID(raw, name string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a valid UUID")
	}
	return parsed, nil
}
