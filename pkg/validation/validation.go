package validation

import "strings"

func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 2 && len(name) <= 200
}

func ValidatePin(pin string) bool {
	if len(pin) < 4 || len(pin) > 12 {
		return false
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func ValidateAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	return addr != "" && len(addr) <= 500
}

func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func ValidateLimit(limit, min, max int) bool {
	return limit >= min && limit <= max
}
