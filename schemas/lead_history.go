package schemas

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	LEAD_ACTION_PICKED     = "Picked lead"
	LEAD_ACTION_UNASSIGNED = "Unassigned"
)

// LeadHistory is one entry of a lead's append-only audit trail.
type LeadHistory struct {
	Action string        `json:"action" bson:"action"`
	By     bson.ObjectID `json:"by" bson:"by"`
	Date   time.Time     `json:"date" bson:"date"`
}

func NewLeadHistory(action string, by bson.ObjectID, at time.Time) LeadHistory {
	return LeadHistory{Action: action, By: by, Date: at}
}

func LeadActionMovedTo(stage string) string {
	return fmt.Sprintf("Moved to %s", stage)
}

func LeadActionAssignedTo(username string) string {
	return fmt.Sprintf("Assigned to %s", username)
}
