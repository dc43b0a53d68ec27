package utils

import "strings"

const whatsappPrefix = "whatsapp:"

// NormalizeWhatsAppNumber strips the transport prefix and surrounding space
// so the same customer always maps to the same key.
func NormalizeWhatsAppNumber(from string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(from), whatsappPrefix))
}

// WhatsAppAddress formats number as a Twilio WhatsApp address.
func WhatsAppAddress(number string) string {
	number = NormalizeWhatsAppNumber(number)
	if number == "" {
		return ""
	}
	return whatsappPrefix + number
}
