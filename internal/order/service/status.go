package service

// Order status values. The enumeration order matters for UI display only;
// any value may be set from any other (flat transition model, no legality
// check).
const (
	StatusNotProcessed = "Not processed"
	StatusReceived     = "Received"
	StatusProcessing   = "Processing"
	StatusShipped      = "Shipped"
	StatusDelivered    = "Delivered"
	StatusCancelled    = "Cancelled"
)

var statusValues = []string{
	StatusNotProcessed,
	StatusReceived,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// StatusValues returns the order status enumeration in display order.
func StatusValues() []string {
	values := make([]string, len(statusValues))
	copy(values, statusValues)
	return values
}

func isValidStatus(status string) bool {
	for _, v := range statusValues {
		if v == status {
			return true
		}
	}
	return false
}
