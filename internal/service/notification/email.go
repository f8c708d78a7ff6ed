package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/mypts/profile-api/internal/model"
)

// emailPlan is the resolved template choice for one notification.
type emailPlan struct {
	Template string
	Subject  string
	Data     map[string]interface{}
}

// buildEmailPlan selects the email template, subject, and template data for
// a notification. Selection order: connection markers or types, booking requests,
// event/booking markers, reminders (by related entity kind), transaction
// system notifications (by transaction kind), security alerts, then the
// generic template.
func (d *Dispatcher) buildEmailPlan(n *model.Notification, user *model.User) emailPlan {
	plan := emailPlan{
		Template: "notification-email",
		Subject:  n.Title,
		Data:     d.baseTemplateData(n, user),
	}
	meta := n.Metadata

	switch {
	case meta.Has("connectionType") || meta.Has("connectionReason") || meta.Has("source") ||
		n.Type == model.TypeConnectionRequest || n.Type == model.TypeProfileConnectionRequest:
		plan.Template = "connection-request"
		plan.Subject = fmt.Sprintf("New Connection Request - %s", n.Title)

	case n.Type == model.TypeBookingRequest:
		plan.Template = "event-notification"
		plan.Subject = fmt.Sprintf("New Booking Request - %s", n.Title)
		d.fillBookingData(plan.Data, n, user)

	case meta.Has("eventType") || meta.Has("eventName") || meta.Has("eventDate") || meta.Has("bookingId"):
		plan.Template = "event-notification"
		if strings.EqualFold(meta.GetString("eventType", ""), "booking") {
			plan.Subject = fmt.Sprintf("Booking Notification - %s", n.Title)
		} else {
			plan.Subject = fmt.Sprintf("Event Notification - %s", n.Title)
		}
		d.fillEventData(plan.Data, n, user)

	case n.Type == model.TypeReminder:
		itemTitle := meta.GetString("itemTitle", n.Title)
		plan.Data["itemTitle"] = itemTitle
		relatedModel := ""
		if n.RelatedTo != nil {
			relatedModel = n.RelatedTo.Model
		}
		switch relatedModel {
		case model.RelatedTask:
			plan.Template = "task-reminder"
			plan.Subject = fmt.Sprintf("Task Reminder: %s", itemTitle)
		case model.RelatedEvent:
			plan.Template = "event-notification"
			if strings.EqualFold(meta.GetString("eventType", ""), "booking") {
				plan.Subject = fmt.Sprintf("Booking Reminder: %s", itemTitle)
			} else {
				plan.Subject = fmt.Sprintf("Event Reminder: %s", itemTitle)
			}
			d.fillEventData(plan.Data, n, user)
		case model.RelatedBooking:
			plan.Template = "event-notification"
			plan.Subject = fmt.Sprintf("Booking Reminder: %s", itemTitle)
			d.fillEventData(plan.Data, n, user)
		default:
			plan.Template = "general-reminder"
			plan.Subject = fmt.Sprintf("Reminder: %s", itemTitle)
		}

	case n.Type == model.TypeSystemNotification && n.RelatedToTransaction():
		plan.Data["transactionId"] = n.RelatedTo.ID.String()
		plan.Data["amount"] = meta.GetString("amount", "0")
		plan.Data["status"] = meta.GetString("status", "Unknown")
		plan.Data["timestamp"] = meta.GetString("timestamp", time.Now().Format(time.RFC3339))
		switch meta.GetString("transactionType", "") {
		case model.TxBuy:
			plan.Template = "purchase-confirmation-email"
			plan.Subject = fmt.Sprintf("Purchase Confirmation - %s", d.cfg.AppName)
		case model.TxSell:
			plan.Template = "sale-confirmation-email"
			plan.Subject = fmt.Sprintf("Sale Confirmation - %s", d.cfg.AppName)
		default:
			plan.Template = "transaction-notification"
		}

	case n.Type == model.TypeSecurityAlert:
		plan.Template = "security-alert-email"
		plan.Data["timestamp"] = meta.GetString("timestamp", time.Now().Format(time.RFC3339))
	}

	return plan
}

func (d *Dispatcher) baseTemplateData(n *model.Notification, user *model.User) map[string]interface{} {
	data := map[string]interface{}{
		"title":         n.Title,
		"message":       n.Message,
		"actionUrl":     "",
		"actionText":    "",
		"metadata":      n.Metadata,
		"appName":       d.cfg.AppName,
		"year":          time.Now().Year(),
		"baseUrl":       d.cfg.ClientURL,
		"recipientName": recipientName(user),
	}
	if n.Action != nil {
		data["actionUrl"] = n.Action.URL
		data["actionText"] = n.Action.Text
	}
	return data
}

// fillBookingData shapes the event block for booking-request emails. The
// booking payload may sit under metadata.metadata depending on which
// producer built the notification.
func (d *Dispatcher) fillBookingData(data map[string]interface{}, n *model.Notification, user *model.User) {
	booking := n.Metadata.GetMap("metadata")
	if booking == nil {
		booking = n.Metadata
	}

	name := booking.GetString("itemTitle", "Service Booking")
	if svc := booking.GetMap("service"); svc != nil {
		name = svc.GetString("name", name)
	}

	organizer := ""
	if requester := booking.GetMap("requester"); requester != nil {
		organizer = requester.GetString("name", "")
	}

	data["event"] = map[string]interface{}{
		"name":      name,
		"type":      "BOOKING",
		"startTime": formatDateTime(booking.GetString("startTime", "")),
		"endTime":   formatDateTime(booking.GetString("endTime", "")),
		"location":  resolveLocation(booking),
		"organizer": organizer,
		"status":    booking.GetString("status", "pending"),
	}
	data["greeting"] = fmt.Sprintf("Hello %s,", recipientName(user))
	data["description"] = "You have received a new booking request. Here are the details:"
	if n.Action == nil {
		data["actionText"] = "View Booking"
	}
}

func (d *Dispatcher) fillEventData(data map[string]interface{}, n *model.Notification, user *model.User) {
	meta := n.Metadata
	data["event"] = map[string]interface{}{
		"name":      meta.GetString("eventName", meta.GetString("itemTitle", n.Title)),
		"type":      strings.ToUpper(meta.GetString("eventType", "event")),
		"startTime": formatDateTime(meta.GetString("startTime", meta.GetString("eventDate", ""))),
		"endTime":   formatDateTime(meta.GetString("endTime", "")),
		"location":  resolveLocation(meta),
		"organizer": meta.GetString("organizer", ""),
		"status":    meta.GetString("status", "confirmed"),
	}
	data["greeting"] = fmt.Sprintf("Hello %s,", recipientName(user))
	data["description"] = n.Message
}

// resolveLocation accepts either a plain string location or a structured
// {name, address} object and renders one display string.
func resolveLocation(meta model.Map) string {
	if loc := meta.GetMap("location"); loc != nil {
		parts := make([]string, 0, 2)
		if name := loc.GetString("name", ""); name != "" {
			parts = append(parts, name)
		}
		if addr := loc.GetString("address", ""); addr != "" {
			parts = append(parts, addr)
		}
		return strings.Join(parts, ", ")
	}
	return meta.GetString("location", "")
}

// formatDateTime renders an RFC3339 timestamp as a reader-friendly string;
// unparseable input passes through unchanged.
func formatDateTime(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Format("Monday, January 2, 2006 03:04 PM")
}

func recipientName(user *model.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return "User"
}
