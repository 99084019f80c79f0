package constants

// DocumentStatus is the canonical status for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocStatusUploaded   DocumentStatus = "uploaded"
	DocStatusProcessing DocumentStatus = "processing"
	DocStatusCompleted  DocumentStatus = "completed"
	DocStatusFailed     DocumentStatus = "failed"
)

// DocumentStatuses returns the valid document statuses as strings.
func DocumentStatuses() []string {
	return []string{
		string(DocStatusUploaded),
		string(DocStatusProcessing),
		string(DocStatusCompleted),
		string(DocStatusFailed),
	}
}

// OrderStatus is the canonical status for rows in orders.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// OrderStatuses returns the valid order statuses as strings.
func OrderStatuses() []string {
	out := make([]string, len(validOrderStatuses))
	for i, s := range validOrderStatuses {
		out[i] = string(s)
	}
	return out
}

// IsValidOrderStatus reports whether s is an accepted order status value.
func IsValidOrderStatus(s string) bool {
	for _, v := range validOrderStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}
