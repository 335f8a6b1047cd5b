package leads

import (
	"context"
	"slices"
	"sync"
	"time"

	"opsdesk/notifications"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type memoryLeadStore struct {
	mu    sync.Mutex
	leads map[bson.ObjectID]schemas.Lead
}

func newMemoryLeadStore() *memoryLeadStore {
	return &memoryLeadStore{leads: make(map[bson.ObjectID]schemas.Lead)}
}

func (s *memoryLeadStore) Insert(_ context.Context, lead *schemas.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.ID = bson.NewObjectID()
	s.leads[lead.ID] = clone(*lead)
	return nil
}

func (s *memoryLeadStore) FindByID(_ context.Context, id bson.ObjectID) (*schemas.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	l = clone(l)
	return &l, nil
}

func (s *memoryLeadStore) List(_ context.Context, visibleTo *bson.ObjectID) ([]schemas.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []schemas.Lead{}
	for _, l := range s.leads {
		if visibleTo != nil && l.AssignedTo != nil && *l.AssignedTo != *visibleTo {
			continue
		}
		list = append(list, clone(l))
	}
	slices.SortFunc(list, func(a, b schemas.Lead) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return list, nil
}

func (s *memoryLeadStore) Pick(_ context.Context, id, userID bson.ObjectID, at time.Time) (*schemas.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if l.AssignedTo != nil {
		return nil, ErrLeadAlreadyAssigned
	}
	l.AssignedTo = &userID
	l.UpdatedAt = at
	l.History = append(l.History, schemas.NewLeadHistory(schemas.LEAD_ACTION_PICKED, userID, at))
	s.leads[id] = l
	l = clone(l)
	return &l, nil
}

func (s *memoryLeadStore) Assign(_ context.Context, id bson.ObjectID, assignee *bson.ObjectID, entry schemas.LeadHistory) (*schemas.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	l.AssignedTo = assignee
	l.UpdatedAt = entry.Date
	l.History = append(l.History, entry)
	s.leads[id] = l
	l = clone(l)
	return &l, nil
}

func (s *memoryLeadStore) MoveStage(_ context.Context, id bson.ObjectID, owner *bson.ObjectID, stage schemas.Stage, entry schemas.LeadHistory) (*schemas.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	if owner != nil && l.AssignedTo != nil && !l.IsAssignedTo(*owner) {
		return nil, ErrLeadNotOwned
	}
	l.StageID = stage.ID
	l.Stage = stage.Name
	l.UpdatedAt = entry.Date
	l.History = append(l.History, entry)
	s.leads[id] = l
	l = clone(l)
	return &l, nil
}

func (s *memoryLeadStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.leads)), nil
}

func (s *memoryLeadStore) CountByStage(_ context.Context, stageID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, l := range s.leads {
		if l.StageID == stageID {
			n++
		}
	}
	return n, nil
}

func (s *memoryLeadStore) RenameStage(_ context.Context, stageID bson.ObjectID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, l := range s.leads {
		if l.StageID == stageID {
			l.Stage = name
			s.leads[id] = l
		}
	}
	return nil
}

func clone(l schemas.Lead) schemas.Lead {
	l.History = slices.Clone(l.History)
	return l
}

type memoryStageStore struct {
	mu     sync.Mutex
	stages []schemas.Stage
}

func (s *memoryStageStore) List(_ context.Context) ([]schemas.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := slices.Clone(s.stages)
	slices.SortFunc(list, func(a, b schemas.Stage) int { return a.Order - b.Order })
	return list, nil
}

func (s *memoryStageStore) SeedDefaults(_ context.Context, stages []schemas.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range stages {
		if s.indexOfName(st.Name) >= 0 {
			continue
		}
		st.ID = bson.NewObjectID()
		s.stages = append(s.stages, st)
	}
	return nil
}

func (s *memoryStageStore) indexOfName(name string) int {
	return slices.IndexFunc(s.stages, func(st schemas.Stage) bool { return st.Name == name })
}

func (s *memoryStageStore) FindByID(_ context.Context, id bson.ObjectID) (*schemas.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.stages, func(st schemas.Stage) bool { return st.ID == id })
	if i < 0 {
		return nil, ErrStageNotFound
	}
	st := s.stages[i]
	return &st, nil
}

func (s *memoryStageStore) FindByName(_ context.Context, name string) (*schemas.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfName(name)
	if i < 0 {
		return nil, ErrStageNotFound
	}
	st := s.stages[i]
	return &st, nil
}

func (s *memoryStageStore) Append(_ context.Context, name string) (*schemas.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfName(name) >= 0 {
		return nil, ErrStageExists
	}
	order := 0
	for _, st := range s.stages {
		order = max(order, st.Order+1)
	}
	st := schemas.Stage{ID: bson.NewObjectID(), Name: name, Order: order}
	s.stages = append(s.stages, st)
	return &st, nil
}

func (s *memoryStageStore) Rename(_ context.Context, id bson.ObjectID, name string) (*schemas.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j := s.indexOfName(name); j >= 0 && s.stages[j].ID != id {
		return nil, ErrStageExists
	}
	i := slices.IndexFunc(s.stages, func(st schemas.Stage) bool { return st.ID == id })
	if i < 0 {
		return nil, ErrStageNotFound
	}
	s.stages[i].Name = name
	st := s.stages[i]
	return &st, nil
}

func (s *memoryStageStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.stages, func(st schemas.Stage) bool { return st.ID == id })
	if i < 0 {
		return ErrStageNotFound
	}
	s.stages = slices.Delete(s.stages, i, i+1)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	jobs []notifications.LeadCreated
}

func (n *recordingNotifier) NotifyLeadCreated(_ context.Context, job notifications.LeadCreated) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
}
