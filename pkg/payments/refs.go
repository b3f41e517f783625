package payments

import (
	"fmt"
	"strings"
)

// External-reference kinds carried on checkout preferences so the webhook can
// route an approved payment back to the right record.
const (
	RefWebsiteBot  = "website"
	RefWhatsAppBot = "whatsapp"
	RefStaffUser   = "staff"
)

// ExternalRef encodes a kind/id pair for use as a preference's
// external_reference.
func ExternalRef(kind, id string) string {
	return kind + ":" + id
}

// ParseExternalRef splits an external_reference back into kind and id.
func ParseExternalRef(ref string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(ref), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed external reference %q", ref)
	}
	switch parts[0] {
	case RefWebsiteBot, RefWhatsAppBot, RefStaffUser:
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("unknown external reference kind %q", parts[0])
}
