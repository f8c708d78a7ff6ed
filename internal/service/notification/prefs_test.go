package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mypts/profile-api/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestCategoryAllowedDefaults(t *testing.T) {
	n := simpleNotification(uuid.New())

	assert.True(t, categoryAllowed(n, model.CategoryPreferences{}))
}

func TestCategoryAllowedTransactionBranches(t *testing.T) {
	cases := []struct {
		name    string
		txType  string
		prefs   model.CategoryPreferences
		allowed bool
	}{
		{"purchase blocked", model.TxBuy, model.CategoryPreferences{PurchaseConfirmations: boolPtr(false)}, false},
		{"purchase allowed explicitly", model.TxBuy, model.CategoryPreferences{PurchaseConfirmations: boolPtr(true)}, true},
		{"purchase ignores sale flag", model.TxBuy, model.CategoryPreferences{SaleConfirmations: boolPtr(false)}, true},
		{"sale blocked", model.TxSell, model.CategoryPreferences{SaleConfirmations: boolPtr(false)}, false},
		{"generic transaction blocked", "ADJUSTMENT", model.CategoryPreferences{Transactions: boolPtr(false)}, false},
		{"generic transaction default", "ADJUSTMENT", model.CategoryPreferences{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := transactionNotification(uuid.New(), tc.txType)
			assert.Equal(t, tc.allowed, categoryAllowed(n, tc.prefs))
		})
	}
}

func TestCategoryAllowedSecurityAlerts(t *testing.T) {
	n := simpleNotification(uuid.New())
	n.Type = model.TypeSecurityAlert

	assert.True(t, categoryAllowed(n, model.CategoryPreferences{}))
	assert.False(t, categoryAllowed(n, model.CategoryPreferences{Security: boolPtr(false)}))
}

func TestCategoryAllowedConnectionRequests(t *testing.T) {
	for _, typ := range []model.NotificationType{model.TypeConnectionRequest, model.TypeProfileConnectionRequest} {
		n := simpleNotification(uuid.New())
		n.Type = typ

		assert.False(t, categoryAllowed(n, model.CategoryPreferences{ConnectionRequests: boolPtr(false)}), string(typ))
		assert.True(t, categoryAllowed(n, model.CategoryPreferences{}), string(typ))
	}
}

func TestCategoryAllowedMessages(t *testing.T) {
	n := simpleNotification(uuid.New())
	n.Type = model.TypeMessageReceived

	assert.False(t, categoryAllowed(n, model.CategoryPreferences{Messages: boolPtr(false)}))
}

func TestCategoryAllowedUncategorizedTypesIgnoreFlags(t *testing.T) {
	n := simpleNotification(uuid.New())
	n.Type = model.TypeBadgeEarned

	prefs := model.CategoryPreferences{
		Transactions:       boolPtr(false),
		Security:           boolPtr(false),
		ConnectionRequests: boolPtr(false),
		Messages:           boolPtr(false),
	}
	assert.True(t, categoryAllowed(n, prefs))
}
