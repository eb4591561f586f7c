package utils

import "strconv"

// ParseString converts a row value to its string form. Returns "" for NULL.
func ParseString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

// ParseStringPtr converts a nullable row value to *string. Returns nil for NULL.
func ParseStringPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := ParseString(v)
	return &s
}

// ParseInt64 converts a row value to int64. Returns 0 for NULL or non-numeric.
func ParseInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(val), 10, 64)
		return n
	default:
		return 0
	}
}

// ParseInt64Ptr converts a nullable row value to *int64. Returns nil for NULL.
func ParseInt64Ptr(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n := ParseInt64(v)
	return &n
}

// ParseInt converts a row value to int.
func ParseInt(v interface{}) int {
	return int(ParseInt64(v))
}

// ParseBool converts a row value to bool. Drivers surface boolean columns as
// integers or numeric strings depending on the database.
func ParseBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int64:
		return val != 0
	case string:
		return val == "1" || val == "true"
	case []byte:
		s := string(val)
		return s == "1" || s == "true"
	default:
		return false
	}
}
