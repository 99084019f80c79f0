package constants

// Activity actions recorded in the activity log.
const (
	ActionCreate = "CREATE"
	ActionRead   = "READ"
	ActionList   = "LIST"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Entity type tags for activity log rows.
const (
	EntityPatient  = "patient"
	EntityOrder    = "order"
	EntityDocument = "document"
)
