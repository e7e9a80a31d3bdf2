package service

import (
	"context"
	"sync"
	"time"

	"github.com/skillbridge/skillbridge-api/internal/analyzer"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
)

type fakeContextStore struct {
	mu        sync.Mutex
	contexts  map[string]*model.UserContext
	conflicts int
	saveErr   error
	saves     int
}

func newFakeContextStore() *fakeContextStore {
	return &fakeContextStore{contexts: make(map[string]*model.UserContext)}
}

func (f *fakeContextStore) GetOrCreate(_ context.Context, userID string) (*model.UserContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uc, ok := f.contexts[userID]
	if !ok {
		uc = model.NewUserContext(userID)
		f.contexts[userID] = uc
	}
	return uc.Clone(), nil
}

func (f *fakeContextStore) Save(_ context.Context, uc *model.UserContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		f.contexts[uc.UserID].Version++
		return store.ErrVersionConflict
	}
	cur, ok := f.contexts[uc.UserID]
	if ok && cur.Version != uc.Version {
		return store.ErrVersionConflict
	}
	uc.Version++
	f.contexts[uc.UserID] = uc.Clone()
	return nil
}

func (f *fakeContextStore) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.contexts, userID)
	return nil
}

type fakeChatStore struct {
	mu    sync.Mutex
	turns []model.ChatTurn
	err   error
}

func (f *fakeChatStore) Create(_ context.Context, t *model.ChatTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.turns = append(f.turns, *t)
	return nil
}

func (f *fakeChatStore) History(_ context.Context, userID, sessionID string, limit int) ([]model.ChatTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ChatTurn
	for _, t := range f.turns {
		if t.UserID == userID && (sessionID == "" || t.SessionID == sessionID) {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	chats    []*model.ChatTurnEvent
	analyses []*model.AnalysisEvent
	err      error
}

func (f *fakePublisher) PublishChatTurn(_ context.Context, ev *model.ChatTurnEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, ev)
	return f.err
}

func (f *fakePublisher) PublishAnalysis(_ context.Context, ev *model.AnalysisEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, ev)
	return f.err
}

type fakeResumes struct {
	mu       sync.Mutex
	resumes  map[string]*model.Resume
	statuses []model.ResumeStatus
}

func newFakeResumes(rs ...*model.Resume) *fakeResumes {
	f := &fakeResumes{resumes: make(map[string]*model.Resume)}
	for _, r := range rs {
		f.resumes[r.ID] = r
	}
	return f
}

func (f *fakeResumes) Create(_ context.Context, r *model.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes[r.ID] = r
	return nil
}

func (f *fakeResumes) Get(_ context.Context, id, userID string) (*model.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok || r.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResumes) ListByUser(_ context.Context, userID string) ([]model.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Resume
	for _, r := range f.resumes {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResumes) SetStatus(_ context.Context, id string, status model.ResumeStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeResumes) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.resumes, id)
	return nil
}

func (f *fakeResumes) DeleteByUser(_ context.Context, userID string) ([]model.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Resume
	for id, r := range f.resumes {
		if r.UserID == userID {
			out = append(out, *r)
			delete(f.resumes, id)
		}
	}
	return out, nil
}

type fakeAnalyses struct {
	mu       sync.Mutex
	records  []*model.Analysis
	deleted  []string
	now      func() time.Time
	updateFn func(a *model.Analysis) error
}

func (f *fakeAnalyses) Create(_ context.Context, a *model.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = model.NewID()
	}
	a.CreatedAt = f.clock()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeAnalyses) Update(_ context.Context, a *model.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateFn != nil {
		if err := f.updateFn(a); err != nil {
			return err
		}
	}
	a.UpdatedAt = f.clock()
	for i, r := range f.records {
		if r.ID == a.ID {
			cp := *a
			f.records[i] = &cp
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeAnalyses) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now().UTC()
}

func (f *fakeAnalyses) find(match func(*model.Analysis) bool) (*model.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if match(f.records[i]) {
			cp := *f.records[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAnalyses) LatestForResume(_ context.Context, resumeID, userID string) (*model.Analysis, error) {
	return f.find(func(a *model.Analysis) bool { return a.ResumeID == resumeID && a.UserID == userID })
}

func (f *fakeAnalyses) LatestCompletedForResume(_ context.Context, resumeID, userID string) (*model.Analysis, error) {
	return f.find(func(a *model.Analysis) bool {
		return a.ResumeID == resumeID && a.UserID == userID && a.Status == model.AnalysisCompleted
	})
}

func (f *fakeAnalyses) CompletedSince(_ context.Context, resumeID, userID string, since time.Time) (*model.Analysis, error) {
	return f.find(func(a *model.Analysis) bool {
		return a.ResumeID == resumeID && a.UserID == userID &&
			a.Status == model.AnalysisCompleted && !a.UpdatedAt.Before(since)
	})
}

func (f *fakeAnalyses) DeleteByResume(_ context.Context, resumeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, resumeID)
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []model.AnalysisHistory
	err     error
}

func (f *fakeHistory) Create(_ context.Context, h *model.AnalysisHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if h.ID == "" {
		h.ID = model.NewID()
	}
	f.entries = append(f.entries, *h)
	return nil
}

func (f *fakeHistory) ActiveSince(_ context.Context, userID string, since time.Time) ([]model.AnalysisHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnalysisHistory
	for _, h := range f.entries {
		if h.UserID == userID && h.Status == model.HistoryActive && !h.AnalysisDate.Before(since) {
			out = append(out, h)
		}
	}
	return out, f.err
}

func (f *fakeHistory) Recent(ctx context.Context, userID string, limit int) ([]model.AnalysisHistory, error) {
	all, err := f.Active(ctx, userID)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, err
}

func (f *fakeHistory) Active(_ context.Context, userID string) ([]model.AnalysisHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnalysisHistory
	for i := len(f.entries) - 1; i >= 0; i-- {
		h := f.entries[i]
		if h.UserID == userID && h.Status == model.HistoryActive {
			out = append(out, h)
		}
	}
	return out, f.err
}

func (f *fakeHistory) Get(_ context.Context, id, userID string) (*model.AnalysisHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.entries {
		if h.ID == id && h.UserID == userID {
			cp := h
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeHistory) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range f.entries {
		if h.ID == id && h.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeAnalyzer struct {
	healthErr  error
	result     *analyzer.Result
	err        error
	analyzed   []string
	healthHits int
}

func (f *fakeAnalyzer) Health(context.Context) error {
	f.healthHits++
	return f.healthErr
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (*analyzer.Result, error) {
	f.analyzed = append(f.analyzed, text)
	return f.result, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractFile(context.Context, string, string) (string, error) {
	return f.text, f.err
}

type fakeGoals struct {
	weeks []store.WeeklyGoals
	goals map[string]*model.LearningGoal
}

func (f *fakeGoals) WeeklyProgress(context.Context, string, time.Time) ([]store.WeeklyGoals, error) {
	return f.weeks, nil
}

func (f *fakeGoals) Create(_ context.Context, g *model.LearningGoal) error {
	if f.goals == nil {
		f.goals = make(map[string]*model.LearningGoal)
	}
	if g.ID == "" {
		g.ID = model.NewID()
	}
	cp := *g
	f.goals[g.ID] = &cp
	return nil
}

func (f *fakeGoals) Get(_ context.Context, id, userID string) (*model.LearningGoal, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGoals) Update(_ context.Context, g *model.LearningGoal) error {
	cp := *g
	f.goals[g.ID] = &cp
	return nil
}

func (f *fakeGoals) List(_ context.Context, userID string) ([]model.LearningGoal, error) {
	var out []model.LearningGoal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = model.NewID()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "token-" + userID, nil }

type fakeFormats map[string]bool

func (f fakeFormats) Supports(mime string) bool { return f[mime] }
