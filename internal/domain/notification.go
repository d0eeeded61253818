package domain

// ChangeOperation identifies the kind of write a ChangeNotification reports.
type ChangeOperation string

// Change operations, one per successful write path.
const (
	ChangeCreated ChangeOperation = "created"
	ChangeUpdated ChangeOperation = "updated"
	ChangeDeleted ChangeOperation = "deleted"
)

// ChangeNotificationName is the stable identity under which change
// subscribers register.
const ChangeNotificationName = "entity.changed"

// ChangeNotification is published exactly once after a durable write
// succeeds. Subscribers run independently; a failing subscriber never rolls
// back the committed write.
type ChangeNotification struct {
	EntityType string          `json:"entity_type"`
	Operation  ChangeOperation `json:"operation"`
	Payload    any             `json:"payload"`
	TenantID   string          `json:"tenant_id"`
}

// NotificationName returns the stable identity used for subscriber fan-out.
func (ChangeNotification) NotificationName() string { return ChangeNotificationName }
