package k8s

import "strings"

// dnsLabelMaxLength is the RFC 1123 limit for a single DNS label.
const dnsLabelMaxLength = 63

// SanitizeToDNSLabel converts an arbitrary string to a lowercase alphanumeric
// string with hyphens as the only separator. Consecutive hyphens are collapsed,
// leading/trailing hyphens are trimmed, and the result is capped at 63
// characters per RFC 1123.
//
// This is the shared sanitization kernel used to derive Kubernetes resource
// names and service DNS labels from user-provided service names.
func SanitizeToDNSLabel(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}

	var builder strings.Builder

	prevHyphen := false

	for _, char := range trimmed {
		switch {
		case (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9'):
			builder.WriteRune(char)

			prevHyphen = false
		default:
			if !prevHyphen {
				builder.WriteRune('-')

				prevHyphen = true
			}
		}
	}

	label := strings.Trim(builder.String(), "-")
	if len(label) > dnsLabelMaxLength {
		label = strings.TrimRight(label[:dnsLabelMaxLength], "-")
	}

	return label
}
