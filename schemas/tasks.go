package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	TASK_STATUS_TODO        = "To Do"
	TASK_STATUS_IN_PROGRESS = "In Progress"
	TASK_STATUS_DONE        = "Done"
	TASK_STATUS_BACKLOG     = "Backlog"
)

type Task struct {
	ID          bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	AssignedTo  *bson.ObjectID `json:"assignedTo" bson:"assigned_to"`
	CreatedBy   bson.ObjectID  `json:"createdBy" bson:"created_by"`
	Status      string         `json:"status" bson:"status"`
	TimeTaken   float64        `json:"timeTaken" bson:"time_taken"`
	Deadline    *time.Time     `json:"deadline,omitempty" bson:"deadline,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"created_at"`
}

type TaskView struct {
	Task
	Assignee *UserRef `json:"assignee,omitempty"`
}

// LeaderboardEntry ranks a user by completed tasks.
type LeaderboardEntry struct {
	User           *UserRef      `json:"user"`
	UserID         bson.ObjectID `json:"userId" bson:"_id"`
	TasksCompleted int           `json:"tasksCompleted" bson:"tasks_completed"`
	TotalTime      float64       `json:"totalTime" bson:"total_time"`
	AvgTime        float64       `json:"avgTime" bson:"-"`
	Score          int           `json:"score" bson:"-"`
}

// TaskUpdate carries the editable task fields; nil fields are left alone.
type TaskUpdate struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	AssignedTo  *bson.ObjectID `json:"assignedTo,omitempty"`
	Status      *string        `json:"status,omitempty" validate:"omitempty,oneof='To Do' 'In Progress' Done Backlog"`
	TimeTaken   *float64       `json:"timeTaken,omitempty" validate:"omitempty,gte=0"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.AssignedTo == nil &&
		u.Status == nil && u.TimeTaken == nil && u.Deadline == nil
}
