package booking

import (
	"net/url"
	"strings"

	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

const deepLinkBase = "https://wa.me/"

// FormatMessage renders the WhatsApp text for a completed draft. Optional
// values that are absent leave an empty line so the layout never shifts.
func FormatMessage(d Draft, c *catalog.Catalog) (string, error) {
	services := make([]string, 0, len(d.SelectedServices))
	for _, id := range d.SelectedServices {
		s, err := c.Service(id)
		if err != nil {
			return "", errs.New("failed to format booking message").Wrap(err)
		}
		services = append(services, "• "+s.Title)
	}

	frequency, err := c.FrequencyLabel(string(d.Frequency))
	if err != nil {
		return "", errs.New("failed to format booking message").Wrap(err)
	}
	collection, err := c.CollectionInstructionLabel(string(d.CollectionInstruction))
	if err != nil {
		return "", errs.New("failed to format booking message").Wrap(err)
	}
	delivery, err := c.DeliveryInstructionLabel(string(d.DeliveryInstruction))
	if err != nil {
		return "", errs.New("failed to format booking message").Wrap(err)
	}

	lines := []string{
		"*New Pickup Request | طلب استلام جديد* 🧺",
		"",
		"👤 *Customer Details:*",
		"Name: " + d.Contact.Name,
		"Phone: " + d.Contact.Phone,
		optional("Email: ", d.Contact.Email),
		"",
		"📍 *Location:*",
		d.Address,
		optional("Area: ", d.Area),
		"",
		"🚚 *Collection:*",
		"📅 " + d.CollectionDate,
		"⏰ " + d.CollectionTime,
		"ℹ️ " + collection,
		"",
		"📦 *Delivery:*",
		"📅 " + d.DeliveryDate,
		"⏰ " + d.DeliveryTime,
		"ℹ️ " + delivery,
		"",
		"📋 *Order Details:*",
		"Frequency: " + frequency,
		"Services:",
		strings.Join(services, "\n"),
		"",
		optional("📝 *Note:* ", d.DriverNote),
	}
	return strings.Join(lines, "\n"), nil
}

func optional(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

// DeepLink builds the wa.me URL that opens a chat with number pre-filled
// with message.
func DeepLink(number, message string) string {
	return deepLinkBase + number + "?text=" + EncodeComponent(message)
}

// EncodeComponent percent-encodes s for use as a single query value. Spaces
// become %20 rather than '+', so both query and plain percent decoding give s back.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
