package utils

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/trustvault/audit-management-api/internal/system/constants"
)

// ValidateActorHeadersArePresent validates org, user and role headers on the request.
func ValidateActorHeadersArePresent(r *http.Request) error {
	if err := ValidateOrgID(r.Header.Get(constants.HeaderOrgID)); err != nil {
		return err
	}
	if err := ValidateUserID(r.Header.Get(constants.HeaderUserID)); err != nil {
		return err
	}
	if r.Header.Get(constants.HeaderUserRole) == "" {
		return fmt.Errorf("user role is required")
	}
	return nil
}

// ValidateOrgID validates organization ID
func ValidateOrgID(orgID string) error {
	if orgID == "" {
		return fmt.Errorf("organization ID is required")
	}
	if len(orgID) > 255 {
		return fmt.Errorf("organization ID too long (max 255 chars)")
	}
	return nil
}

// ValidateUserID validates user ID
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if len(userID) > 255 {
		return fmt.Errorf("user ID too long (max 255 chars)")
	}
	return nil
}

// ValidateRequired validates a field is not empty
func ValidateRequired(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePagination validates limit and offset
func ValidatePagination(limit, offset int) error {
	if limit < 1 || limit > constants.MaxPageSize {
		return fmt.Errorf("limit must be between 1 and %d", constants.MaxPageSize)
	}
	if offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	return nil
}

// ValidateUUID validates UUID format using existing IsValidUUID
func ValidateUUID(id string) error {
	if !IsValidUUID(id) {
		return fmt.Errorf("invalid UUID format: %s", id)
	}
	return nil
}

// ValidateResourceID validates an entity identifier path parameter.
func ValidateResourceID(fieldName, id string) error {
	if err := ValidateRequired(fieldName, id); err != nil {
		return err
	}
	if len(id) > 100 {
		return fmt.Errorf("%s too long (max 100 chars)", fieldName)
	}
	return ValidateUUID(id)
}

// IsValidURI reports whether the given string parses as an absolute URI.
func IsValidURI(uri string) bool {
	parsed, err := url.Parse(uri)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}
