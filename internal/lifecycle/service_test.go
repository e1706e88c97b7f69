package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =========== Fake Store ===========

// fakeStore is an in-memory single-tenant Store. WithinTx snapshots the data
// and restores it when the callback fails, mimicking a rollback.
type fakeStore struct {
	mu   sync.Mutex
	data map[EntityType][][]any

	locked map[string]bool

	// failDelete aborts DeleteByTenant/DeleteByMembers for the given entity.
	failDelete map[EntityType]error
	// failCopy aborts CopyRows for the given entity.
	failCopy map[EntityType]error
	// shortCopy makes CopyRows report one row fewer than submitted.
	shortCopy map[EntityType]bool

	memberIDCalls int
	deleteSeq     []EntityType
}

func newFakeStore() *fakeStore {
	data := make(map[EntityType][][]any, entityCount)
	for _, e := range AllEntities() {
		data[e] = nil
	}
	return &fakeStore{
		data:       data,
		locked:     make(map[string]bool),
		failDelete: make(map[EntityType]error),
		failCopy:   make(map[EntityType]error),
		shortCopy:  make(map[EntityType]bool),
	}
}

func (s *fakeStore) Counts(ctx context.Context, tenantID string) (Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(Counts, entityCount)
	for _, e := range AllEntities() {
		counts[e] = int64(len(s.data[e]))
	}
	return counts, nil
}

func (s *fakeStore) MemberIDs(ctx context.Context, tenantID string) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberIDCalls++
	var ids []uuid.UUID
	for _, row := range s.data[EntityLoyaltyMembers] {
		ids = append(ids, row[0].(uuid.UUID))
	}
	return ids, nil
}

func (s *fakeStore) DeleteByTenant(ctx context.Context, e EntityType, tenantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSeq = append(s.deleteSeq, e)
	if err := s.failDelete[e]; err != nil {
		return 0, err
	}
	n := int64(len(s.data[e]))
	s.data[e] = nil
	return n, nil
}

func (s *fakeStore) DeleteByMembers(ctx context.Context, e EntityType, memberIDs []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSeq = append(s.deleteSeq, e)
	if err := s.failDelete[e]; err != nil {
		return 0, err
	}
	set := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		set[id] = true
	}
	col := memberColumnIndex(e)
	var kept [][]any
	var n int64
	for _, row := range s.data[e] {
		if set[row[col].(uuid.UUID)] {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.data[e] = kept
	return n, nil
}

// memberColumnIndex finds the position of the loyalty-member FK column in
// the entity's insert-order column list.
func memberColumnIndex(e EntityType) int {
	for i, c := range e.Columns() {
		if c == memberColumn[e] {
			return i
		}
	}
	return -1
}

func (s *fakeStore) CopyRows(ctx context.Context, e EntityType, rows [][]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failCopy[e]; err != nil {
		return 0, err
	}
	s.data[e] = append(s.data[e], rows...)
	if s.shortCopy[e] && len(rows) > 0 {
		return int64(len(rows) - 1), nil
	}
	return int64(len(rows)), nil
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := make(map[EntityType][][]any, len(s.data))
	for e, rows := range s.data {
		snapshot[e] = append([][]any(nil), rows...)
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeStore) TryLock(ctx context.Context, tenantID string) (func(), bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked[tenantID] {
		return nil, false, nil
	}
	s.locked[tenantID] = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locked, tenantID)
	}, true, nil
}

// =========== Helpers ===========

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := New(store, Options{
		Timeout:    30 * time.Second,
		ChunkSize:  500,
		RandomSeed: 42,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

// seedFake populates the fake store with one generated dataset.
func seedFake(t *testing.T, store *fakeStore, tenantID string) *Dataset {
	t.Helper()
	d := NewDataGenerator(7).Generate(tenantID)
	plan, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	for _, e := range plan.InsertionOrder() {
		if _, err := store.CopyRows(context.Background(), e, d.Rows(e)); err != nil {
			t.Fatalf("CopyRows(%s): %v", e, err)
		}
	}
	return d
}

// =========== Purge ===========

func TestServicePurgeDeletesEverything(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	svc := newTestService(t, store)

	res, err := svc.Purge(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if !res.Remaining.Zero() {
		t.Errorf("expected no remaining rows, got %v", res.Remaining.JSONMap())
	}
	if res.Deleted.Total() == 0 {
		t.Error("expected nonzero deleted total")
	}
	// Reconciliation identity: before == deleted + remaining, per entity.
	for _, e := range AllEntities() {
		if res.Before[e] != res.Deleted[e]+res.Remaining[e] {
			t.Errorf("%s: before=%d, deleted=%d, remaining=%d",
				e, res.Before[e], res.Deleted[e], res.Remaining[e])
		}
	}
}

func TestServicePurgeEmptyTenant(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	res, err := svc.Purge(context.Background(), "clinic-empty")
	if err != nil {
		t.Fatalf("Purge on empty tenant: %v", err)
	}
	if res.Deleted.Total() != 0 {
		t.Errorf("expected zero deletions, got %d", res.Deleted.Total())
	}
	// Every entity must still be present in the report, as an explicit zero.
	m := res.Deleted.JSONMap()
	if len(m) != int(entityCount) {
		t.Errorf("expected %d entries, got %d", entityCount, len(m))
	}
}

func TestServicePurgeRespectsDeletionOrder(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	svc := newTestService(t, store)

	if _, err := svc.Purge(context.Background(), "clinic-a"); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	pos := make(map[EntityType]int, len(store.deleteSeq))
	for i, e := range store.deleteSeq {
		pos[e] = i
	}
	for child, parents := range dependencies {
		for _, parent := range parents {
			if pos[child] > pos[parent] {
				t.Errorf("%s deleted after its parent %s", child, parent)
			}
		}
	}
}

func TestServicePurgeRollsBackOnFailure(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	store.failDelete[EntityPatients] = errors.New("boom")
	svc := newTestService(t, store)

	before, _ := store.Counts(context.Background(), "clinic-a")

	_, err := svc.Purge(context.Background(), "clinic-a")
	if err == nil {
		t.Fatal("expected purge to fail")
	}

	after, _ := store.Counts(context.Background(), "clinic-a")
	for _, e := range AllEntities() {
		if before[e] != after[e] {
			t.Errorf("%s: count changed from %d to %d despite rollback", e, before[e], after[e])
		}
	}
}

func TestServicePurgeResolvesMemberSetOnce(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	svc := newTestService(t, store)

	if _, err := svc.Purge(context.Background(), "clinic-a"); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if store.memberIDCalls != 1 {
		t.Errorf("expected exactly 1 member id resolution, got %d", store.memberIDCalls)
	}
}

func TestServicePurgeLockContention(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	release, ok, err := store.TryLock(context.Background(), "clinic-a")
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer release()

	_, err = svc.Purge(context.Background(), "clinic-a")
	if CodeOf(err) != CodeOperationInProgress {
		t.Errorf("expected OPERATION_IN_PROGRESS, got %v (err=%v)", CodeOf(err), err)
	}

	// A different tenant is not blocked.
	if _, err := svc.Purge(context.Background(), "clinic-b"); err != nil {
		t.Errorf("other tenant should not be locked out: %v", err)
	}
}

func TestServicePurgeReleasesLock(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	if _, err := svc.Purge(context.Background(), "clinic-a"); err != nil {
		t.Fatalf("first purge: %v", err)
	}
	if _, err := svc.Purge(context.Background(), "clinic-a"); err != nil {
		t.Errorf("second purge should reacquire the lock: %v", err)
	}
}

// =========== Seed ===========

func TestServiceSeedCreatesDataset(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	res, err := svc.Seed(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	created := res.Created.JSONMap()
	if created["staff"] != 5 {
		t.Errorf("staff = %d, want 5", created["staff"])
	}
	if created["patients"] != 12 {
		t.Errorf("patients = %d, want 12", created["patients"])
	}
	if created["loyaltyRewards"] != 8 {
		t.Errorf("loyaltyRewards = %d, want 8", created["loyaltyRewards"])
	}
	if created["appointments"] == 0 {
		t.Error("expected at least one appointment")
	}

	// Read-back snapshot must agree with the reported counts.
	for _, e := range AllEntities() {
		if res.Stored[e] != res.Created[e] {
			t.Errorf("%s: created=%d stored=%d", e, res.Created[e], res.Stored[e])
		}
	}
}

func TestServiceSeedReplacesExistingData(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")
	svc := newTestService(t, store)

	res, err := svc.Seed(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	// The stored counts equal exactly one fresh dataset, not the old rows
	// plus the new ones.
	stored, _ := store.Counts(context.Background(), "clinic-a")
	for _, e := range AllEntities() {
		if stored[e] != res.Created[e] {
			t.Errorf("%s: stored=%d created=%d; leftover rows from before the seed",
				e, stored[e], res.Created[e])
		}
	}
}

func TestServiceSeedIdempotentStructure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	first, err := svc.Seed(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	second, err := svc.Seed(context.Background(), "clinic-a")
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	// Same seed, same structure: identical per-entity counts.
	for _, e := range AllEntities() {
		if first.Created[e] != second.Created[e] {
			t.Errorf("%s: first=%d second=%d", e, first.Created[e], second.Created[e])
		}
	}
}

func TestServiceSeedInsertFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.failCopy[EntityAppointments] = errors.New("connection reset")
	svc := newTestService(t, store)

	_, err := svc.Seed(context.Background(), "clinic-a")
	if err == nil {
		t.Fatal("expected seed to fail")
	}
	var engineErr *Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if engineErr.Entity != "appointments" {
		t.Errorf("entity = %q, want appointments", engineErr.Entity)
	}
}

func TestServiceSeedShortWriteSurfaces(t *testing.T) {
	store := newFakeStore()
	store.shortCopy[EntityPatients] = true
	svc := newTestService(t, store)

	_, err := svc.Seed(context.Background(), "clinic-a")
	if err == nil {
		t.Fatal("expected seed to fail on short write")
	}
	if CodeOf(err) != CodeInternal {
		t.Errorf("code = %v, want INTERNAL", CodeOf(err))
	}
}

func TestServiceSeedLockContention(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	release, ok, err := store.TryLock(context.Background(), "clinic-a")
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer release()

	_, err = svc.Seed(context.Background(), "clinic-a")
	if CodeOf(err) != CodeOperationInProgress {
		t.Errorf("expected OPERATION_IN_PROGRESS, got %v", CodeOf(err))
	}
}

func TestServiceSeedReferentialConsistencyInStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	if _, err := svc.Seed(context.Background(), "clinic-a"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	// Every member_id in the loyalty child tables must exist among the
	// stored members.
	members := make(map[uuid.UUID]bool)
	for _, row := range store.data[EntityLoyaltyMembers] {
		members[row[0].(uuid.UUID)] = true
	}
	for _, e := range []EntityType{EntityLoyaltyPointsHistory, EntityLoyaltyRedemptions, EntityLoyaltyReferrals} {
		idx := memberColumnIndex(e)
		for _, row := range store.data[e] {
			if !members[row[idx].(uuid.UUID)] {
				t.Errorf("%s row references unknown member %v", e, row[idx])
			}
		}
	}
}

func TestNewAppliesDefaultTimeout(t *testing.T) {
	svc, err := New(newFakeStore(), Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc.opts.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", svc.opts.Timeout, defaultTimeout)
	}
}
