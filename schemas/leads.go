package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	LEAD_DEFAULT_SOURCE = "Website"
)

type Lead struct {
	ID         bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name       string         `json:"name" bson:"name"`
	Email      string         `json:"email" bson:"email"`
	Phone      string         `json:"phone,omitempty" bson:"phone,omitempty"`
	Message    string         `json:"message,omitempty" bson:"message,omitempty"`
	StageID    bson.ObjectID  `json:"stageId" bson:"stage_id"`
	Stage      string         `json:"stage" bson:"stage"`
	AssignedTo *bson.ObjectID `json:"assignedTo" bson:"assigned_to"`
	History    []LeadHistory  `json:"history" bson:"history"`
	Source     string         `json:"source" bson:"source"`
	CreatedAt  time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updated_at"`
}

// IsAssignedTo reports whether userID currently owns the lead.
func (l *Lead) IsAssignedTo(userID bson.ObjectID) bool {
	return l.AssignedTo != nil && *l.AssignedTo == userID
}

// LeadView is a Lead with its assignee resolved for API responses.
type LeadView struct {
	Lead
	Assignee *UserRef `json:"assignee,omitempty"`
}

type LeadAnalytics struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	ConversionRate float64 `json:"conversionRate"`
}

// NewLeadAnalytics computes the conversion rate, 0 when there are no leads.
func NewLeadAnalytics(total, completed int64) LeadAnalytics {
	a := LeadAnalytics{Total: total, Completed: completed}
	if total > 0 {
		a.ConversionRate = float64(completed) / float64(total) * 100
	}
	return a
}
