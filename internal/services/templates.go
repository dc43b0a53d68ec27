package services

import (
	"fmt"
	"strings"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// MessageTemplate is a fixed customer-facing message with named placeholders
type MessageTemplate struct {
	Text        string
	Description string
	Parameters  []string
}

// Template names
const (
	TplPromptName        = "prompt_name"
	TplPromptAddress     = "prompt_address"
	TplPromptPhone       = "prompt_phone"
	TplPromptItems       = "prompt_items"
	TplClarify           = "clarify"
	TplOrderSummary      = "order_summary"
	TplOrderConfirmed    = "order_confirmed"
	TplConfirmRetry      = "confirm_retry"
	TplOrderCancelled    = "order_cancelled"
	TplNoActiveOrder     = "no_active_order"
	TplReceiptNotReady   = "receipt_not_ready"
	TplNoRecentOrder     = "no_recent_order"
	TplMenuFallback      = "menu_fallback"
	TplLocationReceived  = "location_received"
	TplReplyFallback     = "reply_fallback"
	TplStatusConfirmed   = "status_confirm"
	TplStatusDispatched  = "status_dispatched"
	TplStatusDelivered   = "status_delivered"
	TplStatusPending     = "status_pending"
	TplStatusCancelled   = "status_cancelled"
	TplOrderStatusUpdate = "order_status_update"
	TplMenuAttached      = "menu_attached"
)

// MessageTemplates maps template names to their text
var MessageTemplates = map[string]MessageTemplate{
	// Field prompts, one per turn
	TplPromptName: {
		Text:        "Aapka naam share kar dein, taki order confirm ho sake! 😊",
		Description: "Ask for the customer's name",
	},
	TplPromptAddress: {
		Text:        "Delivery address likh dein ya WhatsApp ka location button use kar ke apni location share kar dein! 🏠📍",
		Description: "Ask for the delivery address or a location pin",
	},
	TplPromptPhone: {
		Text:        "Aapka contact number mil sakta hai, taki rider aap se raabta kar sake? 📞",
		Description: "Ask for a contact number for the rider",
	},
	TplPromptItems: {
		Text:        "Aap kya order karna chahenge? (item aur quantity likhein) 🍽️",
		Description: "Ask what the customer wants to order",
	},

	// Order flow
	TplClarify: {
		Text:        "Maaf kijiye, mujhe aapka message sahi samajh nahi aaya. Thoda clearly likh dein, please.",
		Description: "Generic clarification after an extraction failure",
	},
	TplOrderSummary: {
		Text: "Aapka order summary:\n- Naam: {name}\n- Item: {items}\n- Address: {address}\n- Phone: {phone}\n- Payment: {payment_type}\n" +
			"Agar sab theek hai to 'confirm' likhein, warna jo galat hai woh batayein.",
		Description: "Summary asking for explicit confirmation",
		Parameters:  []string{"name", "items", "address", "phone", "payment_type"},
	},
	TplOrderConfirmed: {
		Text: "Shukriya! Aapka order confirm ho gaya hai. {restaurant} se kuch hi dair mein aapka order deliver ho jayega! 🍗🚚✨\n" +
			"Aapka order yeh address par deliver hoga: {address} 🏠\n" +
			"Agar yeh address galat hai ya aapne order nahi diya, to reply karein: 'Cancel' ya 'Galat'.",
		Description: "Order placed, names the delivery address and how to cancel",
		Parameters:  []string{"restaurant", "address"},
	},
	TplConfirmRetry: {
		Text:        "Agar sab theek hai to 'confirm' ya koi bhi positive jawab dein (jaise 'haan', 'ok', 'theek hai', 'yes', etc.), warna jo galat hai woh batayein.",
		Description: "Confirmation was not recognised",
	},
	TplReplyFallback: {
		Text:        "Sorry, I am unable to reply right now.",
		Description: "Used when the reply generator fails",
	},

	// Cancel and receipt
	TplOrderCancelled: {
		Text:        "Aapka order cancel kar diya gaya hai. Shukriya!",
		Description: "Order cancelled by the customer",
	},
	TplNoActiveOrder: {
		Text:        "Koi active order nahi mila. Shukriya!",
		Description: "Cancel requested without an order",
	},
	TplReceiptNotReady: {
		Text:        "Aapki order ki raseed abhi available nahi hai.",
		Description: "Receipt declined for an incomplete order",
	},
	TplNoRecentOrder: {
		Text:        "Koi recent order nahi mila. Pehle order karein!",
		Description: "Receipt requested without any order",
	},

	// Menu and location
	TplMenuAttached: {
		Text:        "Yeh raha hamara menu! (PDF attached)",
		Description: "Sent right before the menu document",
	},
	TplMenuFallback: {
		Text:        "Maaf kijiye, menu PDF abhi available nahi hai. Text menu bhej raha hoon.",
		Description: "Sent before the text menu when the PDF cannot be delivered",
	},
	TplLocationReceived: {
		Text:        "Location mil gayi! Address: {address}",
		Description: "Acknowledges a shared location pin",
		Parameters:  []string{"address"},
	},

	// Status notifications
	TplStatusConfirmed: {
		Text:        "Aapka order confirm ho gaya hai! ✅",
		Description: "Staff confirmed the order",
	},
	TplStatusDispatched: {
		Text:        "Aapka order dispatch ho gaya hai! 🛵",
		Description: "Rider is on the way",
	},
	TplStatusDelivered: {
		Text:        "Aapka order deliver ho gaya hai! 🎉",
		Description: "Order delivered",
	},
	TplStatusPending: {
		Text:        "Aapka order abhi pending hai. ⏳",
		Description: "Order back to pending",
	},
	TplStatusCancelled: {
		Text:        "Aapka order cancel kar diya gaya hai. Shukriya!",
		Description: "Order cancelled by staff",
	},
	TplOrderStatusUpdate: {
		Text:        "Aapke order ka status update hua hai: {status}",
		Description: "Status without a dedicated message",
		Parameters:  []string{"status"},
	},
}

// fieldPrompts maps each required field to its prompt
var fieldPrompts = map[models.Field]string{
	models.FieldName:    TplPromptName,
	models.FieldAddress: TplPromptAddress,
	models.FieldPhone:   TplPromptPhone,
	models.FieldItems:   TplPromptItems,
}

// statusTemplates maps order statuses to their notification
var statusTemplates = map[string]string{
	models.OrderStatusConfirmed:  TplStatusConfirmed,
	models.OrderStatusDispatched: TplStatusDispatched,
	models.OrderStatusDelivered:  TplStatusDelivered,
	models.OrderStatusPending:    TplStatusPending,
	models.OrderStatusCancelled:  TplStatusCancelled,
}

// RenderTemplate fills in a template's parameters
func RenderTemplate(templateName string, params map[string]string) (string, error) {
	template, err := GetTemplateInfo(templateName)
	if err != nil {
		return "", err
	}

	// Validate required parameters
	pairs := make([]string, 0, 2*len(template.Parameters))
	for _, requiredParam := range template.Parameters {
		value, ok := params[requiredParam]
		if !ok {
			return "", fmt.Errorf("missing required parameter: %s", requiredParam)
		}
		pairs = append(pairs, "{"+requiredParam+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(template.Text), nil
}

// MustRender renders a template known to exist with the given params.
// It panics on a programming error such as a missing parameter.
func MustRender(templateName string, params map[string]string) string {
	text, err := RenderTemplate(templateName, params)
	if err != nil {
		panic(err)
	}
	return text
}

// FieldPrompt returns the fixed prompt for a missing field.
func FieldPrompt(field models.Field) string {
	name, ok := fieldPrompts[field]
	if !ok {
		name = TplClarify
	}
	return MustRender(name, nil)
}

// StatusMessage returns the customer notification for status.
func StatusMessage(status string) string {
	if name, ok := statusTemplates[status]; ok {
		return MustRender(name, nil)
	}
	return MustRender(TplOrderStatusUpdate, map[string]string{"status": status})
}

// GetTemplateInfo returns information about a template
func GetTemplateInfo(templateName string) (*MessageTemplate, error) {
	template, exists := MessageTemplates[templateName]
	if !exists {
		return nil, fmt.Errorf("template '%s' not found", templateName)
	}
	return &template, nil
}
