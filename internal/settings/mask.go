// internal/settings/mask.go
package settings

// MaskSecret redacts a stored secret for display. Secrets longer than 8
// characters keep their first and last 4 characters; anything shorter is
// fully masked so the visible parts never cover the whole value. The empty
// string stays empty (callers render it as null).
func MaskSecret(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) > 8:
		return value[:4] + "..." + value[len(value)-4:]
	default:
		return "****"
	}
}
