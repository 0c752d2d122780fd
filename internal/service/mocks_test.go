package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/internal/langfuse"
	"github.com/gymbro/gymbro-api/internal/llm"
	"github.com/gymbro/gymbro-api/pkg/pagination"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	profiles map[uuid.UUID]*domain.Profile
	err      error
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if m.err != nil {
		return m.err
	}
	profile.UpdatedAt = time.Now()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

// MockRoutineRepository is a mock implementation of RoutineRepository
type MockRoutineRepository struct {
	routines []*domain.Routine
	now      time.Time
	err      error
}

func NewMockRoutineRepository() *MockRoutineRepository {
	return &MockRoutineRepository{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *MockRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	if m.err != nil {
		return m.err
	}
	if routine.ID == uuid.Nil {
		routine.ID = uuid.New()
	}
	// Monotonic timestamps so ordering is deterministic
	m.now = m.now.Add(time.Minute)
	routine.CreatedAt = m.now
	m.routines = append(m.routines, routine)
	return nil
}

func (m *MockRoutineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.routines {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRoutineRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *domain.Routine
	for _, r := range m.routines {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (m *MockRoutineRepository) GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekNumber int) (*domain.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}
	var newest *domain.Routine
	for _, r := range m.routines {
		if r.UserID != userID || r.WeekNumber != weekNumber {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	return newest, nil
}

func (m *MockRoutineRepository) List(ctx context.Context, userID uuid.UUID, filter domain.RoutineFilter) ([]domain.Routine, error) {
	if m.err != nil {
		return nil, m.err
	}

	var result []domain.Routine
	for _, r := range m.routines {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Cursor != "" {
		cursor, err := pagination.DecodeCursor(filter.Cursor)
		if err == nil && cursor != nil {
			var filtered []domain.Routine
			for _, r := range result {
				if r.CreatedAt.Before(cursor.CreatedAt) {
					filtered = append(filtered, r)
				}
			}
			result = filtered
		}
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	if len(result) > limit+1 {
		result = result[:limit+1]
	}
	return result, nil
}

// MockCompletionRepository is a mock implementation of CompletionRepository
type MockCompletionRepository struct {
	completions map[uuid.UUID]map[[2]int]*domain.ExerciseCompletion
	err         error
}

func NewMockCompletionRepository() *MockCompletionRepository {
	return &MockCompletionRepository{completions: make(map[uuid.UUID]map[[2]int]*domain.ExerciseCompletion)}
}

func (m *MockCompletionRepository) Set(ctx context.Context, completion *domain.ExerciseCompletion) error {
	if m.err != nil {
		return m.err
	}
	byCoord, ok := m.completions[completion.RoutineID]
	if !ok {
		byCoord = make(map[[2]int]*domain.ExerciseCompletion)
		m.completions[completion.RoutineID] = byCoord
	}
	byCoord[[2]int{completion.DayIndex, completion.ExerciseIndex}] = completion
	return nil
}

func (m *MockCompletionRepository) ListByRoutine(ctx context.Context, routineID uuid.UUID) ([]domain.ExerciseCompletion, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.ExerciseCompletion
	for _, c := range m.completions[routineID] {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayIndex != result[j].DayIndex {
			return result[i].DayIndex < result[j].DayIndex
		}
		return result[i].ExerciseIndex < result[j].ExerciseIndex
	})
	return result, nil
}

// MockGenerator is a mock implementation of llm.Generator
type MockGenerator struct {
	plan      *domain.WeeklyRoutine
	diet      *domain.WeeklyDiet
	text      string
	err       error
	planCalls int
	dietCalls int
	textCalls int
	lastPlan  llm.PlanInput
	lastDiet  llm.PlanInput
	lastText  llm.TextInput
}

func (m *MockGenerator) GeneratePlan(ctx context.Context, in llm.PlanInput) (*domain.WeeklyRoutine, error) {
	m.planCalls++
	m.lastPlan = in
	if m.err != nil {
		return nil, m.err
	}
	// Copy so post-processing does not mutate the fixture
	cp := *m.plan
	cp.Days = append([]domain.DayRoutine(nil), m.plan.Days...)
	return &cp, nil
}

func (m *MockGenerator) GenerateDiet(ctx context.Context, in llm.PlanInput) (*domain.WeeklyDiet, error) {
	m.dietCalls++
	m.lastDiet = in
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.diet
	cp.Days = append([]domain.DietDay(nil), m.diet.Days...)
	return &cp, nil
}

func (m *MockGenerator) RewriteText(ctx context.Context, in llm.TextInput) (string, error) {
	m.textCalls++
	m.lastText = in
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// MockTracer is a mock implementation of langfuse.Client
type MockTracer struct {
	enabled bool
	traces  []langfuse.TraceInput
	scores  []langfuse.ScoreInput
	err     error
}

func (m *MockTracer) IsEnabled() bool {
	return m.enabled
}

func (m *MockTracer) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.traces = append(m.traces, in)
	return "trace-" + uuid.NewString(), nil
}

func (m *MockTracer) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	if m.err != nil {
		return m.err
	}
	m.scores = append(m.scores, in)
	return nil
}

// fakeCounter is an in-memory ratelimit.Counter
type fakeCounter struct {
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return redis.NewDurationResult(f.ttls[key], nil)
}

// fakeStore is an in-memory cache.Store without expiry
type fakeStore struct {
	items map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.items[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	raw, _ := value.([]byte)
	f.items[key] = raw
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	n := int64(0)
	if v, ok := f.items[key]; ok {
		n, _ = strconv.ParseInt(string(v), 10, 64)
	}
	n++
	f.items[key] = []byte(strconv.FormatInt(n, 10))
	return redis.NewIntResult(n, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.items, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Helper functions
func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}
