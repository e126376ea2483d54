package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"usina-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// In-memory fakes shared by the service tests.

type assignCall struct {
	method      string
	kind        string
	count       int
	franchiseID int
	phoneID     int
}

type fakeAssigner struct {
	mu     sync.Mutex
	calls  []assignCall
	err    error
	nextID int // phone id handed out by auto/franchise paths
}

func (f *fakeAssigner) record(c assignCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAssigner) AssignAuto(ctx context.Context, kind string, count int, serverID *int) (*models.AssignmentResult, error) {
	f.record(assignCall{method: "auto", kind: kind, count: count})
	if f.err != nil {
		return nil, f.err
	}
	return &models.AssignmentResult{FranchiseID: 10, PhoneID: f.phoneID(), NewCount: count, SelectedByGoal: true}, nil
}

func (f *fakeAssigner) AssignToFranchise(ctx context.Context, kind string, count, franchiseID int, serverID *int) (*models.AssignmentResult, error) {
	f.record(assignCall{method: "franchise", kind: kind, count: count, franchiseID: franchiseID})
	if f.err != nil {
		return nil, f.err
	}
	return &models.AssignmentResult{FranchiseID: franchiseID, PhoneID: f.phoneID(), NewCount: count}, nil
}

func (f *fakeAssigner) AssignToPhone(ctx context.Context, kind string, count, franchiseID, phoneID int, serverID *int) (*models.AssignmentResult, error) {
	f.record(assignCall{method: "phone", kind: kind, count: count, franchiseID: franchiseID, phoneID: phoneID})
	if f.err != nil {
		return nil, f.err
	}
	return &models.AssignmentResult{FranchiseID: franchiseID, PhoneID: phoneID, NewCount: count}, nil
}

func (f *fakeAssigner) phoneID() int {
	if f.nextID == 0 {
		return 1
	}
	return f.nextID
}

func (f *fakeAssigner) lastCall() assignCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeLeadStore struct {
	mu    sync.Mutex
	leads map[int]*models.Lead
	next  int
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: map[int]*models.Lead{}}
}

func (f *fakeLeadStore) Create(ctx context.Context, lead *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	lead.ID = f.next
	cp := *lead
	f.leads[lead.ID] = &cp
	return nil
}

func (f *fakeLeadStore) Get(ctx context.Context, id int) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *lead
	return &cp, nil
}

func (f *fakeLeadStore) ListByDate(ctx context.Context, date time.Time, franchiseID *int) ([]*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Lead
	for _, lead := range f.leads {
		if franchiseID != nil && (lead.FranchiseID == nil || *lead.FranchiseID != *franchiseID) {
			continue
		}
		cp := *lead
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeLeadStore) UpdateStatus(ctx context.Context, id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return pgx.ErrNoRows
	}
	lead.Status = status
	return nil
}

func (f *fakeLeadStore) SetAssignment(ctx context.Context, id, franchiseID, phoneID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return pgx.ErrNoRows
	}
	lead.FranchiseID = &franchiseID
	lead.FranchisePhoneID = &phoneID
	return nil
}

type fakeConversionStore struct {
	mu          sync.Mutex
	conversions []*models.Conversion
}

func (f *fakeConversionStore) Create(ctx context.Context, conv *models.Conversion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv.ID = len(f.conversions) + 1
	cp := *conv
	f.conversions = append(f.conversions, &cp)
	return nil
}

func (f *fakeConversionStore) ExistsForLead(ctx context.Context, leadID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversions {
		if c.LeadID != nil && *c.LeadID == leadID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConversionStore) ListByDate(ctx context.Context, date time.Time) ([]*models.Conversion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Conversion, len(f.conversions))
	copy(out, f.conversions)
	return out, nil
}

type fakeServerResolver struct {
	servers map[string]*models.Server
}

func (f *fakeServerResolver) GetByExternalID(ctx context.Context, externalID string) (*models.Server, error) {
	s, ok := f.servers[externalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type fakeAdStore struct {
	mu    sync.Mutex
	ads   map[string]*models.ServerAd // today's rows, key serverID/adID
	known map[string]string           // ads seen on earlier days, key -> status
	next  int
}

func adKey(serverID int, adID string) string { return fmt.Sprintf("%d/%s", serverID, adID) }

func (f *fakeAdStore) GetByAd(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ad, ok := f.ads[adKey(serverID, adID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ad
	return &cp, nil
}

func (f *fakeAdStore) ResolveForDate(ctx context.Context, serverID int, adID string, date time.Time) (*models.ServerAd, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := adKey(serverID, adID)
	if ad, ok := f.ads[key]; ok {
		cp := *ad
		return &cp, nil
	}
	status, ok := f.known[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	f.next++
	ad := &models.ServerAd{ID: 1000 + f.next, ServerID: serverID, AdID: adID, Date: date, Status: status}
	if f.ads == nil {
		f.ads = map[string]*models.ServerAd{}
	}
	f.ads[key] = ad
	cp := *ad
	return &cp, nil
}

func (f *fakeAdStore) IncrementCounters(ctx context.Context, id, leadsDelta, loadsDelta int, spentDelta float64) (*models.ServerAd, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ad := range f.ads {
		if ad.ID == id {
			ad.Leads += leadsDelta
			ad.Loads += loadsDelta
			ad.Spent += spentDelta
			cp := *ad
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeEventDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeEventDeduper) MarkSeen(ctx context.Context, eventID, eventType string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeEventDeduper) Forget(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, eventID)
	return nil
}

type fakeFranchiseReader struct {
	franchises map[int]*models.Franchise
}

func (f *fakeFranchiseReader) Get(ctx context.Context, id int) (*models.Franchise, error) {
	fr, ok := f.franchises[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return fr, nil
}

type fakePhoneMatcher struct {
	byNumber map[string]*models.FranchisePhone // key franchiseID/number
	active   map[int][]*models.FranchisePhone
}

func (f *fakePhoneMatcher) FindByNumber(ctx context.Context, franchiseID int, e164 string) (*models.FranchisePhone, error) {
	p, ok := f.byNumber[fmt.Sprintf("%d/%s", franchiseID, e164)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakePhoneMatcher) ListActive(ctx context.Context, franchiseID int) ([]*models.FranchisePhone, error) {
	return f.active[franchiseID], nil
}

type fakeSelector struct {
	franchiseID int
	err         error
}

func (f *fakeSelector) SelectTarget(ctx context.Context) (int, error) {
	return f.franchiseID, f.err
}
