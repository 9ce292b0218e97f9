package preview

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/gedcom"
	"github.com/rootlinehq/rootline/internal/metrics"
	"github.com/rootlinehq/rootline/internal/models"
)

const (
	defaultSessionTTL  = 2 * time.Hour
	sessionSweepPeriod = 5 * time.Minute

	defaultPageLimit = 50
	defaultSortField = "surname"
)

// session is the mutable state behind one SessionKey. The embedded mutex
// makes writers per-key: concurrent requests for unrelated sessions never
// contend.
type session struct {
	mu           sync.RWMutex
	individuals  []models.PreviewIndividual
	families     []models.Family
	decisions    map[string]string // individual id -> resolution
	lastAccessed time.Time
}

// MemoryStore is the in-process Repository implementation. Sessions for
// one upload are grouped so the upload container can be garbage-collected
// when its last user entry is removed.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*session // upload id -> user id -> session
	log      *logrus.Logger
	ttl      time.Duration
}

// Compile-time check: *MemoryStore must satisfy Repository.
var _ Repository = (*MemoryStore)(nil)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithTTL overrides the idle-session eviction TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// NewMemoryStore creates a MemoryStore and starts its eviction loop. The
// provided context controls the lifetime of the background goroutine.
func NewMemoryStore(ctx context.Context, log *logrus.Logger, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]map[string]*session),
		log:      log,
		ttl:      defaultSessionTTL,
	}

	for _, o := range opts {
		o(s)
	}

	go s.evictLoop(ctx)

	return s
}

// evictLoop periodically removes sessions idle longer than the TTL.
func (s *MemoryStore) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.evictIdle(now)
		}
	}
}

func (s *MemoryStore) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uploadID, users := range s.sessions {
		for userID, sess := range users {
			sess.mu.RLock()
			idle := now.Sub(sess.lastAccessed)
			sess.mu.RUnlock()

			if idle > s.ttl {
				delete(users, userID)
				s.log.WithFields(logrus.Fields{
					"upload_id": uploadID,
					"user_id":   userID,
				}).Debug("evicted idle preview session")
			}
		}

		if len(users) == 0 {
			delete(s.sessions, uploadID)
		}
	}

	metrics.ActiveSessions.Set(float64(s.countLocked()))
}

// countLocked tallies sessions. Caller must hold s.mu.
func (s *MemoryStore) countLocked() int {
	n := 0
	for _, users := range s.sessions {
		n += len(users)
	}

	return n
}

// Store implements Repository.
func (s *MemoryStore) Store(key SessionKey, parsed *models.ParsingResult, matches []models.DuplicateMatch) (models.ImportSummary, error) {
	matchByID := make(map[string]models.DuplicateMatch, len(matches))
	for _, m := range matches {
		matchByID[m.SourceIndividualID] = m
	}

	sess := &session{
		individuals:  make([]models.PreviewIndividual, 0, len(parsed.Individuals)),
		families:     parsed.Families,
		decisions:    make(map[string]string),
		lastAccessed: time.Now(),
	}

	for _, ind := range parsed.Individuals {
		pi := models.PreviewIndividual{Individual: ind, Status: models.StatusNew}
		if m, ok := matchByID[ind.ID]; ok {
			pi.Status = models.StatusDuplicate
			pi.Match = &m
		}

		sess.individuals = append(sess.individuals, pi)
	}

	summary := summarize(sess)

	s.mu.Lock()
	users, ok := s.sessions[key.UploadID]
	if !ok {
		users = make(map[string]*session)
		s.sessions[key.UploadID] = users
	}
	users[key.UserID] = sess
	metrics.ActiveSessions.Set(float64(s.countLocked()))
	s.mu.Unlock()

	return summary, nil
}

// get returns the session for key, touching its last-access time.
func (s *MemoryStore) get(key SessionKey) (*session, error) {
	s.mu.RLock()
	sess := s.sessions[key.UploadID][key.UserID]
	s.mu.RUnlock()

	if sess == nil {
		return nil, models.ErrSessionNotFound
	}

	sess.mu.Lock()
	sess.lastAccessed = time.Now()
	sess.mu.Unlock()

	return sess, nil
}

// summarize recomputes the per-status counts. Callers must hold at least a
// read lock on the session, or own it exclusively.
func summarize(sess *session) models.ImportSummary {
	summary := models.ImportSummary{Total: len(sess.individuals)}

	for i := range sess.individuals {
		switch sess.individuals[i].Status {
		case models.StatusDuplicate:
			summary.Duplicates++
		default:
			summary.New++
		}
	}

	for _, resolution := range sess.decisions {
		if resolution == models.ResolutionSkip {
			summary.Existing++
		}
	}

	return summary
}

// sortableField maps a requested sort field to an accessor. Unknown fields
// fall back to the default.
func sortableField(field string) func(*models.PreviewIndividual) string {
	switch field {
	case "given_name":
		return func(pi *models.PreviewIndividual) string { return pi.GivenName }
	case "surname":
		return func(pi *models.PreviewIndividual) string { return pi.Surname }
	case "birth_date":
		return func(pi *models.PreviewIndividual) string {
			if pi.Birth != nil && pi.Birth.Date != nil {
				return pi.Birth.Date.Normalized
			}
			return ""
		}
	case "status":
		return func(pi *models.PreviewIndividual) string { return pi.Status }
	case "id":
		return func(pi *models.PreviewIndividual) string { return pi.ID }
	default:
		return nil
	}
}

// GetIndividuals implements Repository.
func (s *MemoryStore) GetIndividuals(key SessionKey, query models.ListQuery) (*models.IndividualPage, error) {
	sess, err := s.get(key)
	if err != nil {
		return nil, err
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = defaultPageLimit
	}

	keyFn := sortableField(query.SortBy)
	if keyFn == nil {
		keyFn = sortableField(defaultSortField)
	}

	descending := strings.EqualFold(query.SortOrder, "desc")

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	filtered := make([]models.PreviewIndividual, 0, len(sess.individuals))
	needle := strings.ToLower(strings.TrimSpace(query.Search))

	for i := range sess.individuals {
		pi := &sess.individuals[i]
		if needle != "" && !matchesSearch(pi, needle) {
			continue
		}

		filtered = append(filtered, *pi)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := keyFn(&filtered[i]), keyFn(&filtered[j])
		if descending {
			return a > b
		}
		return a < b
	})

	total := len(filtered)
	start := (query.Page - 1) * query.Limit
	if start > total {
		start = total
	}

	end := start + query.Limit
	if end > total {
		end = total
	}

	stats := sessionStatistics(sess)

	return &models.IndividualPage{
		Individuals: filtered[start:end],
		PageInfo:    models.NewPageInfo(query.Page, query.Limit, total),
		Summary:     summarize(sess),
		Statistics:  stats,
	}, nil
}

// matchesSearch reports whether any name field contains the lowercase
// needle as a substring.
func matchesSearch(pi *models.PreviewIndividual, needle string) bool {
	return strings.Contains(strings.ToLower(pi.GivenName), needle) ||
		strings.Contains(strings.ToLower(pi.Surname), needle)
}

// sessionStatistics rebuilds a ParsingResult view so statistics are always
// recomputed from current session contents.
func sessionStatistics(sess *session) models.Statistics {
	result := models.ParsingResult{Families: sess.families}
	result.Individuals = make([]models.Individual, len(sess.individuals))
	for i := range sess.individuals {
		result.Individuals[i] = sess.individuals[i].Individual
	}

	return gedcom.ExtractStatistics(&result)
}

// GetIndividual implements Repository.
func (s *MemoryStore) GetIndividual(key SessionKey, individualID string) (*models.IndividualDetail, error) {
	sess, err := s.get(key)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	var found *models.PreviewIndividual
	for i := range sess.individuals {
		if sess.individuals[i].ID == individualID {
			found = &sess.individuals[i]
			break
		}
	}

	if found == nil {
		return nil, models.ErrPersonNotFound
	}

	byID := make(map[string]*models.PreviewIndividual, len(sess.individuals))
	for i := range sess.individuals {
		byID[sess.individuals[i].ID] = &sess.individuals[i]
	}

	detail := &models.IndividualDetail{PreviewIndividual: *found}

	for i := range sess.families {
		fam := &sess.families[i]

		// Parents come from the child-of family; the role is inferred
		// from the husband/wife slot.
		if fam.ID == found.ChildOfFamily {
			if ref, ok := relativeRef(byID, fam.HusbandID, "father"); ok {
				detail.Parents = append(detail.Parents, ref)
			}
			if ref, ok := relativeRef(byID, fam.WifeID, "mother"); ok {
				detail.Parents = append(detail.Parents, ref)
			}
		}

		// Spouses and children come from families where this individual
		// fills a parent slot.
		if fam.HusbandID == found.ID || fam.WifeID == found.ID {
			spouseID := fam.HusbandID
			if spouseID == found.ID {
				spouseID = fam.WifeID
			}

			if ref, ok := relativeRef(byID, spouseID, ""); ok {
				detail.Spouses = append(detail.Spouses, ref)
			}

			for _, childID := range fam.ChildIDs {
				if ref, ok := relativeRef(byID, childID, ""); ok {
					detail.Children = append(detail.Children, ref)
				}
			}
		}
	}

	return detail, nil
}

func relativeRef(byID map[string]*models.PreviewIndividual, id, role string) (models.RelativeRef, bool) {
	if id == "" {
		return models.RelativeRef{}, false
	}

	pi, ok := byID[id]
	if !ok {
		return models.RelativeRef{}, false
	}

	return models.RelativeRef{
		ID:        pi.ID,
		GivenName: pi.GivenName,
		Surname:   pi.Surname,
		Role:      role,
	}, true
}

// GetTree implements Repository.
func (s *MemoryStore) GetTree(key SessionKey) ([]models.TreeRelationship, error) {
	sess, err := s.get(key)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	var rels []models.TreeRelationship

	for i := range sess.families {
		fam := &sess.families[i]

		if fam.HusbandID != "" && fam.WifeID != "" {
			rels = append(rels, models.TreeRelationship{
				Type:     models.TreeRelSpouse,
				FromID:   fam.HusbandID,
				ToID:     fam.WifeID,
				FamilyID: fam.ID,
			})
		}

		for _, childID := range fam.ChildIDs {
			for _, parentID := range []string{fam.HusbandID, fam.WifeID} {
				if parentID == "" {
					continue
				}

				rels = append(rels, models.TreeRelationship{
					Type:     models.TreeRelParentChild,
					FromID:   parentID,
					ToID:     childID,
					FamilyID: fam.ID,
				})
			}
		}
	}

	return rels, nil
}

// GetStatistics implements Repository.
func (s *MemoryStore) GetStatistics(key SessionKey) (*models.Statistics, error) {
	sess, err := s.get(key)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	stats := sessionStatistics(sess)

	return &stats, nil
}

// SaveDecisions implements Repository. The whole batch is validated before
// any entry is stored; previously saved decisions survive a rejected batch
// untouched.
func (s *MemoryStore) SaveDecisions(key SessionKey, decisions []models.ResolutionDecision) (models.ImportSummary, error) {
	sess, err := s.get(key)
	if err != nil {
		return models.ImportSummary{}, err
	}

	for i := range decisions {
		if err := decisions[i].Validate(); err != nil {
			return models.ImportSummary{}, err
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, d := range decisions {
		sess.decisions[d.IndividualID] = d.Resolution
	}

	return summarize(sess), nil
}

// GetDecisions implements Repository.
func (s *MemoryStore) GetDecisions(key SessionKey) ([]models.ResolutionDecision, error) {
	sess, err := s.get(key)
	if err != nil {
		return nil, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	decisions := make([]models.ResolutionDecision, 0, len(sess.decisions))
	for id, resolution := range sess.decisions {
		decisions = append(decisions, models.ResolutionDecision{IndividualID: id, Resolution: resolution})
	}

	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].IndividualID < decisions[j].IndividualID
	})

	return decisions, nil
}

// Clear implements Repository.
func (s *MemoryStore) Clear(key SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, ok := s.sessions[key.UploadID]
	if !ok {
		return models.ErrSessionNotFound
	}

	if _, ok := users[key.UserID]; !ok {
		return models.ErrSessionNotFound
	}

	delete(users, key.UserID)
	if len(users) == 0 {
		delete(s.sessions, key.UploadID)
	}

	metrics.ActiveSessions.Set(float64(s.countLocked()))

	return nil
}

// ActiveSessions implements Repository.
func (s *MemoryStore) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countLocked()
}
