package notification

import (
	"github.com/mypts/profile-api/internal/model"
)

// categoryAllowed is the single preference gate shared by every channel.
// The rule: absent preferences allow delivery, only an explicit false
// blocks it. Transaction-linked system notifications branch on the
// transaction kind, security alerts on the security flag.
func categoryAllowed(n *model.Notification, prefs model.CategoryPreferences) bool {
	switch {
	case n.Type == model.TypeSystemNotification && n.RelatedToTransaction():
		switch n.Metadata.GetString("transactionType", "") {
		case model.TxBuy:
			return allowed(prefs.PurchaseConfirmations)
		case model.TxSell:
			return allowed(prefs.SaleConfirmations)
		default:
			return allowed(prefs.Transactions)
		}
	case n.Type == model.TypeSecurityAlert:
		return allowed(prefs.Security)
	case n.Type == model.TypeConnectionRequest || n.Type == model.TypeProfileConnectionRequest:
		return allowed(prefs.ConnectionRequests)
	case n.Type == model.TypeMessageReceived:
		return allowed(prefs.Messages)
	default:
		return true
	}
}

func allowed(flag *bool) bool {
	return flag == nil || *flag
}
