package constants

// Purchase statuses as understood by the upstream API.
const (
	PurchaseStatusInCart              = -1
	PurchaseStatusAll                 = 0
	PurchaseStatusWaitForConfirmation = 1
	PurchaseStatusWaitForIssue        = 2
	PurchaseStatusInShippingProcess   = 3
	PurchaseStatusDelivered           = 4
	PurchaseStatusCancelled           = 5
)

// ValidPurchaseStatus reports whether s is a status the upstream accepts.
func ValidPurchaseStatus(s int) bool {
	return s >= PurchaseStatusInCart && s <= PurchaseStatusCancelled
}
