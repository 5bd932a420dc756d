// Package usecasetest содержит in-memory реализации репозиториев для тестов use case'ов.
// Хранилище копирует сущности при записи и чтении, а WithinTx откатывает
// все изменения, если fn вернула ошибку.
package usecasetest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/repository"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// ErrInjected: ошибка, которую тест подставляет через FailOn.
var ErrInjected = errors.New("injected failure")

type Store struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]entity.Job
	proposals   map[uuid.UUID]entity.Proposal
	invitations map[uuid.UUID]entity.Invitation
	users       map[uuid.UUID]entity.User
	outbox      []entity.OutboxEvent
	failures    map[string]error
	Commits     int
	Rollbacks   int
}

func NewStore() *Store {
	return &Store{
		jobs:        make(map[uuid.UUID]entity.Job),
		proposals:   make(map[uuid.UUID]entity.Proposal),
		invitations: make(map[uuid.UUID]entity.Invitation),
		users:       make(map[uuid.UUID]entity.User),
		failures:    make(map[string]error),
	}
}

// FailOn заставляет метод (например "proposals.RejectOthers") возвращать err.
// nil в err означает STORE_UNAVAILABLE.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = apperror.Wrap(ErrInjected, apperror.ErrCodeStoreUnavailable, "хранилище недоступно")
	}
	s.failures[method] = err
}

func (s *Store) failure(method string) error {
	return s.failures[method]
}

func (s *Store) Jobs() *JobRepo               { return &JobRepo{s} }
func (s *Store) Proposals() *ProposalRepo     { return &ProposalRepo{s} }
func (s *Store) Invitations() *InvitationRepo { return &InvitationRepo{s} }
func (s *Store) Users() *UserRepo             { return &UserRepo{s} }
func (s *Store) Outbox() *OutboxRepo          { return &OutboxRepo{s} }
func (s *Store) Tx() *TxManager               { return &TxManager{s} }

// AddUser кладёт пользователя напрямую.
func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = cloneUser(*u)
}

// AddJob кладёт заказ напрямую.
func (s *Store) AddJob(j *entity.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = cloneJob(*j)
}

func (s *Store) AddProposal(p *entity.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = cloneProposal(*p)
}

func (s *Store) AddInvitation(i *entity.Invitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[i.ID] = cloneInvitation(*i)
}

// Events возвращает события outbox указанного вида в порядке постановки.
func (s *Store) Events(kind entity.OutboxKind) []entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []entity.OutboxEvent
	for _, e := range s.outbox {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}

// Notifications декодирует все поставленные в outbox уведомления.
func (s *Store) Notifications() []entity.NotificationDraft {
	var result []entity.NotificationDraft
	for _, e := range s.Events(entity.OutboxNotificationCreate) {
		var d entity.NotificationDraft
		if err := json.Unmarshal(e.Payload, &d); err == nil {
			result = append(result, d)
		}
	}
	return result
}

// JobCards декодирует все поставленные в outbox карточки заказов.
func (s *Store) JobCards() []entity.JobCard {
	var result []entity.JobCard
	for _, e := range s.Events(entity.OutboxChatJobCard) {
		var c entity.JobCard
		if err := json.Unmarshal(e.Payload, &c); err == nil {
			result = append(result, c)
		}
	}
	return result
}

type snapshot struct {
	jobs        map[uuid.UUID]entity.Job
	proposals   map[uuid.UUID]entity.Proposal
	invitations map[uuid.UUID]entity.Invitation
	users       map[uuid.UUID]entity.User
	outbox      []entity.OutboxEvent
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		jobs:        make(map[uuid.UUID]entity.Job, len(s.jobs)),
		proposals:   make(map[uuid.UUID]entity.Proposal, len(s.proposals)),
		invitations: make(map[uuid.UUID]entity.Invitation, len(s.invitations)),
		users:       make(map[uuid.UUID]entity.User, len(s.users)),
		outbox:      append([]entity.OutboxEvent{}, s.outbox...),
	}
	for k, v := range s.jobs {
		snap.jobs[k] = cloneJob(v)
	}
	for k, v := range s.proposals {
		snap.proposals[k] = cloneProposal(v)
	}
	for k, v := range s.invitations {
		snap.invitations[k] = cloneInvitation(v)
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = snap.jobs
	s.proposals = snap.proposals
	s.invitations = snap.invitations
	s.users = snap.users
	s.outbox = snap.outbox
}

type TxManager struct{ s *Store }

func (t *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := t.s.failure("tx.Begin"); err != nil {
		return err
	}
	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		t.s.mu.Lock()
		t.s.Rollbacks++
		t.s.mu.Unlock()
		return err
	}
	t.s.mu.Lock()
	t.s.Commits++
	t.s.mu.Unlock()
	return nil
}

type JobRepo struct{ s *Store }

var _ repository.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Create(ctx context.Context, job *entity.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.Create"); err != nil {
		return err
	}
	r.s.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (r *JobRepo) Update(ctx context.Context, job *entity.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.Update"); err != nil {
		return err
	}
	if _, ok := r.s.jobs[job.ID]; !ok {
		return apperror.ErrJobNotFound
	}
	r.s.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return apperror.ErrJobNotFound
	}
	delete(r.s.jobs, id)
	for pid, p := range r.s.proposals {
		if p.JobID == id {
			delete(r.s.proposals, pid)
		}
	}
	for iid, i := range r.s.invitations {
		if i.JobID == id {
			delete(r.s.invitations, iid)
		}
	}
	return nil
}

func (r *JobRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.FindByID"); err != nil {
		return nil, err
	}
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, apperror.ErrJobNotFound
	}
	j := cloneJob(job)
	return &j, nil
}

func (r *JobRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return r.FindByID(ctx, id)
}

func (r *JobRepo) FindByClientID(ctx context.Context, clientID uuid.UUID) ([]*entity.Job, error) {
	jobs, _, err := r.List(ctx, repository.JobFilter{ClientID: &clientID, Limit: repository.MaxJobLimit})
	return jobs, err
}

func (r *JobRepo) List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, int, error) {
	filter = filter.Normalize()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.List"); err != nil {
		return nil, 0, err
	}

	var matched []entity.Job
	for _, j := range r.s.jobs {
		if matchesFilter(j, filter) {
			matched = append(matched, cloneJob(j))
		}
	}
	sortJobs(matched, filter.SortBy)

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	result := make([]*entity.Job, 0, end-start)
	for i := start; i < end; i++ {
		j := matched[i]
		result = append(result, &j)
	}
	return result, total, nil
}

func matchesFilter(j entity.Job, f repository.JobFilter) bool {
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.BudgetMin != nil && j.Budget.Min < *f.BudgetMin {
		return false
	}
	if f.BudgetMax != nil && j.Budget.Max > *f.BudgetMax {
		return false
	}
	if f.ExperienceLevel != "" && string(j.ExperienceLevel) != f.ExperienceLevel {
		return false
	}
	if f.Status != "" && string(j.Status) != f.Status {
		return false
	}
	if f.ClientID != nil && j.ClientID != *f.ClientID {
		return false
	}
	if f.FeaturedOnly && !j.Featured {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func sortJobs(jobs []entity.Job, by repository.JobSort) {
	sort.SliceStable(jobs, func(a, b int) bool {
		switch by {
		case repository.SortBudgetHigh:
			return jobs[a].Budget.Max > jobs[b].Budget.Max
		case repository.SortBudgetLow:
			return jobs[a].Budget.Min < jobs[b].Budget.Min
		case repository.SortProposals:
			return jobs[a].ProposalsCount > jobs[b].ProposalsCount
		default:
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
	})
}

func (r *JobRepo) IncrementProposalsCount(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("jobs.IncrementProposalsCount"); err != nil {
		return err
	}
	job, ok := r.s.jobs[id]
	if !ok {
		return apperror.ErrJobNotFound
	}
	job.ProposalsCount++
	r.s.jobs[id] = job
	return nil
}

func (r *JobRepo) CountByStatus(ctx context.Context, clientID *uuid.UUID) (repository.JobStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats repository.JobStats
	for _, j := range r.s.jobs {
		if clientID != nil && j.ClientID != *clientID {
			continue
		}
		switch j.Status {
		case valueobject.JobStatusActive:
			stats.Active++
		case valueobject.JobStatusInProgress:
			stats.InProgress++
		case valueobject.JobStatusCompleted:
			stats.Completed++
		case valueobject.JobStatusCancelled:
			stats.Cancelled++
		}
		stats.Total++
	}
	return stats, nil
}

type ProposalRepo struct{ s *Store }

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

func (r *ProposalRepo) Create(ctx context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("proposals.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.proposals {
		if existing.JobID == p.JobID && existing.FreelancerID == p.FreelancerID {
			return apperror.New(apperror.ErrCodeConflict, "вы уже откликнулись на этот заказ")
		}
	}
	r.s.proposals[p.ID] = cloneProposal(*p)
	return nil
}

func (r *ProposalRepo) UpdateStatus(ctx context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("proposals.UpdateStatus"); err != nil {
		return err
	}
	stored, ok := r.s.proposals[p.ID]
	if !ok {
		return apperror.ErrProposalNotFound
	}
	if stored.Status != valueobject.ProposalStatusPending {
		return apperror.InvalidTransition("предложение уже рассмотрено")
	}
	stored.Status = p.Status
	stored.UpdatedAt = p.UpdatedAt
	r.s.proposals[p.ID] = stored
	return nil
}

func (r *ProposalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return nil, apperror.ErrProposalNotFound
	}
	c := cloneProposal(p)
	return &c, nil
}

func (r *ProposalRepo) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Proposal, error) {
	return r.findWhere(func(p entity.Proposal) bool { return p.JobID == jobID }), nil
}

func (r *ProposalRepo) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Proposal, error) {
	return r.findWhere(func(p entity.Proposal) bool { return p.FreelancerID == freelancerID }), nil
}

func (r *ProposalRepo) FindByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*entity.Proposal, error) {
	found := r.findWhere(func(p entity.Proposal) bool { return p.JobID == jobID && p.FreelancerID == freelancerID })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *ProposalRepo) RejectOthers(ctx context.Context, jobID, exceptID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("proposals.RejectOthers"); err != nil {
		return nil, err
	}
	var rejected []uuid.UUID
	for id, p := range r.s.proposals {
		if p.JobID == jobID && id != exceptID && p.Status == valueobject.ProposalStatusPending {
			p.Status = valueobject.ProposalStatusRejected
			p.UpdatedAt = time.Now()
			r.s.proposals[id] = p
			rejected = append(rejected, p.FreelancerID)
		}
	}
	return rejected, nil
}

func (r *ProposalRepo) findWhere(match func(entity.Proposal) bool) []*entity.Proposal {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Proposal
	for _, p := range r.s.proposals {
		if match(p) {
			c := cloneProposal(p)
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(a, b int) bool { return result[a].CreatedAt.After(result[b].CreatedAt) })
	return result
}

type InvitationRepo struct{ s *Store }

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("invitations.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.invitations {
		if existing.JobID == inv.JobID && existing.FreelancerID == inv.FreelancerID {
			return apperror.New(apperror.ErrCodeConflict, "исполнитель уже приглашён на этот заказ")
		}
	}
	r.s.invitations[inv.ID] = cloneInvitation(*inv)
	return nil
}

func (r *InvitationRepo) UpdateResponse(ctx context.Context, inv *entity.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.invitations[inv.ID]
	if !ok {
		return apperror.ErrInvitationNotFound
	}
	if stored.Status != valueobject.InvitationStatusPending {
		return apperror.InvalidTransition("на приглашение уже дан ответ")
	}
	r.s.invitations[inv.ID] = cloneInvitation(*inv)
	return nil
}

func (r *InvitationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, apperror.ErrInvitationNotFound
	}
	c := cloneInvitation(inv)
	return &c, nil
}

func (r *InvitationRepo) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]*entity.Invitation, error) {
	return r.findWhere(func(i entity.Invitation) bool { return i.JobID == jobID }), nil
}

func (r *InvitationRepo) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Invitation, error) {
	return r.findWhere(func(i entity.Invitation) bool { return i.FreelancerID == freelancerID }), nil
}

func (r *InvitationRepo) findWhere(match func(entity.Invitation) bool) []*entity.Invitation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.Invitation
	for _, inv := range r.s.invitations {
		if match(inv) {
			c := cloneInvitation(inv)
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(a, b int) bool { return result[a].InvitedAt.After(result[b].InvitedAt) })
	return result
}

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
		}
	}
	r.s.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *UserRepo) UpdateUserType(ctx context.Context, id uuid.UUID, userType valueobject.UserType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperror.ErrUserNotFound
	}
	u.UserType = userType
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) ListFreelancers(ctx context.Context, limit int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.ListFreelancers"); err != nil {
		return nil, err
	}
	var result []*entity.User
	for _, u := range r.s.users {
		if u.UserType == valueobject.UserTypeFreelancer {
			c := cloneUser(u)
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(a, b int) bool { return result[a].Rating > result[b].Rating })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type OutboxRepo struct{ s *Store }

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

func (r *OutboxRepo) Enqueue(ctx context.Context, event *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.Enqueue"); err != nil {
		return err
	}
	r.s.outbox = append(r.s.outbox, *event)
	return nil
}

func (r *OutboxRepo) ClaimBatch(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []*entity.OutboxEvent
	for i := range r.s.outbox {
		e := &r.s.outbox[i]
		if len(result) >= limit {
			break
		}
		if e.Status == entity.OutboxPending && !e.NextAttemptAt.After(now) {
			e.NextAttemptAt = now.Add(lease)
			c := *e
			result = append(result, &c)
		}
	}
	return result, nil
}

func (r *OutboxRepo) Save(ctx context.Context, event *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == event.ID {
			r.s.outbox[i] = *event
			return nil
		}
	}
	return apperror.New(apperror.ErrCodeNotFound, "событие не найдено")
}

func cloneJob(j entity.Job) entity.Job {
	j.Skills = append([]string{}, j.Skills...)
	j.Attachments = append([]string{}, j.Attachments...)
	if j.AssignedFreelancerID != nil {
		id := *j.AssignedFreelancerID
		j.AssignedFreelancerID = &id
	}
	return j
}

func cloneProposal(p entity.Proposal) entity.Proposal {
	p.Attachments = append([]string{}, p.Attachments...)
	return p
}

func cloneInvitation(i entity.Invitation) entity.Invitation {
	i.FreelancerSkills = append([]string{}, i.FreelancerSkills...)
	i.MatchReasons = append([]string{}, i.MatchReasons...)
	return i
}

func cloneUser(u entity.User) entity.User {
	u.Skills = append([]string{}, u.Skills...)
	return u
}
