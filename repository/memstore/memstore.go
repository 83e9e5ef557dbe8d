// Package memstore là một repository.Store chạy trong bộ nhớ.
// Transaction được tuần tự hoá bằng một mutex và làm việc trên bản sao dữ liệu,
// commit khi fn trả nil. Chỉ mục earned theo đơn hàng được kiểm tra như ở Postgres.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"restaurant_manager/model"
	"restaurant_manager/repository"
)

type state struct {
	nextID      uint
	orders      map[uint]model.Order
	tables      map[uint]model.Table
	accounts    map[uint]model.LoyaltyAccount // theo customer_id
	ledger      map[uint]model.PointTransaction
	programs    map[uint]model.LoyaltyProgram
	campaigns   map[uint]model.PromotionalCampaign
	rewards     map[uint]model.RewardItem
	redemptions map[uint]model.RewardRedemption
	audits      map[uint]model.AuditLog
}

func newState() *state {
	return &state{
		orders:      map[uint]model.Order{},
		tables:      map[uint]model.Table{},
		accounts:    map[uint]model.LoyaltyAccount{},
		ledger:      map[uint]model.PointTransaction{},
		programs:    map[uint]model.LoyaltyProgram{},
		campaigns:   map[uint]model.PromotionalCampaign{},
		rewards:     map[uint]model.RewardItem{},
		redemptions: map[uint]model.RewardRedemption{},
		audits:      map[uint]model.AuditLog{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		nextID:      s.nextID,
		orders:      cloneMap(s.orders),
		tables:      cloneMap(s.tables),
		accounts:    cloneMap(s.accounts),
		ledger:      cloneMap(s.ledger),
		programs:    cloneMap(s.programs),
		campaigns:   cloneMap(s.campaigns),
		rewards:     cloneMap(s.rewards),
		redemptions: cloneMap(s.redemptions),
		audits:      cloneMap(s.audits),
	}
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

type db struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type Store struct {
	db *db
	tx *state
}

func New() *Store {
	return &Store{db: &db{state: newState(), now: time.Now}}
}

// with chạy fn trên dữ liệu của transaction hiện tại, hoặc tự khoá nếu đang ở ngoài transaction.
func (s *Store) with(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.state)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.state.clone()
	if err := fn(&Store{db: s.db, tx: snapshot}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.state = snapshot
	return nil
}

func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }
func (s *Store) Tables() repository.TableRepository { return tableRepo{s} }
func (s *Store) Ledger() repository.LedgerRepository { return ledgerRepo{s} }
func (s *Store) Programs() repository.ProgramRepository { return programRepo{s} }
func (s *Store) Campaigns() repository.CampaignRepository { return campaignRepo{s} }
func (s *Store) Rewards() repository.RewardRepository { return rewardRepo{s} }
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

func (s *Store) stamp(dto *model.DTO, st *state) {
	if dto.ID == 0 {
		dto.ID = st.id()
	} else if dto.ID > st.nextID {
		st.nextID = dto.ID
	}
	now := s.db.now()
	if dto.CreatedAt.IsZero() {
		dto.CreatedAt = now
	}
	dto.UpdatedAt = now
}

func isActiveStatus(status string) bool {
	for _, st := range repository.ActiveOrderStatuses {
		if st == status {
			return true
		}
	}
	return false
}

// ---- orders ----

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *model.Order) error {
	return r.s.with(func(st *state) error {
		r.s.stamp(&order.DTO, st)
		if order.Status == "" {
			order.Status = "new"
		}
		st.orders[order.ID] = *order
		return nil
	})
}

func (r orderRepo) FindByID(_ context.Context, id uint) (*model.Order, error) {
	var out *model.Order
	err := r.s.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func (r orderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r orderRepo) UpdateStatus(_ context.Context, id uint, status string, completedAt *time.Time) error {
	return r.s.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		if completedAt != nil {
			at := *completedAt
			o.CompletedAt = &at
		}
		o.UpdatedAt = r.s.db.now()
		st.orders[id] = o
		return nil
	})
}

func (r orderRepo) CountActiveOrdersForTable(_ context.Context, tableID uint) (int64, error) {
	var count int64
	err := r.s.with(func(st *state) error {
		for _, o := range st.orders {
			if o.TableID != nil && *o.TableID == tableID && isActiveStatus(o.Status) {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ---- tables ----

type tableRepo struct{ s *Store }

func (r tableRepo) Create(_ context.Context, table *model.Table) error {
	return r.s.with(func(st *state) error {
		for _, t := range st.tables {
			if t.TableNumber == table.TableNumber {
				return repository.ErrDuplicate
			}
		}
		r.s.stamp(&table.DTO, st)
		if table.Status == "" {
			table.Status = "available"
		}
		st.tables[table.ID] = *table
		return nil
	})
}

func (r tableRepo) FindByID(_ context.Context, id uint) (*model.Table, error) {
	var out *model.Table
	err := r.s.with(func(st *state) error {
		t, ok := st.tables[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r tableRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Table, error) {
	return r.FindByID(ctx, id)
}

func (r tableRepo) List(_ context.Context) ([]model.Table, error) {
	var out []model.Table
	err := r.s.with(func(st *state) error {
		for _, t := range st.tables {
			out = append(out, t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r tableRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	return r.s.with(func(st *state) error {
		t, ok := st.tables[id]
		if !ok {
			return repository.ErrNotFound
		}
		t.Status = status
		t.UpdatedAt = r.s.db.now()
		st.tables[id] = t
		return nil
	})
}

func (r tableRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	err := r.s.with(func(st *state) error {
		for _, t := range st.tables {
			if t.Status == status {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ---- ledger ----

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) FindEarnedTransactionForOrder(_ context.Context, orderID uint) (*model.PointTransaction, error) {
	var out *model.PointTransaction
	err := r.s.with(func(st *state) error {
		if tx, ok := earnedFor(st, orderID); ok {
			out = &tx
			return nil
		}
		return repository.ErrNotFound
	})
	return out, err
}

func earnedFor(st *state, orderID uint) (model.PointTransaction, bool) {
	for _, tx := range st.ledger {
		if tx.Kind == "earned" && tx.OrderID != nil && *tx.OrderID == orderID {
			return tx, true
		}
	}
	return model.PointTransaction{}, false
}

func (r ledgerRepo) Append(_ context.Context, tx *model.PointTransaction) error {
	return r.s.with(func(st *state) error {
		if tx.Kind == "earned" && tx.OrderID != nil {
			if _, ok := earnedFor(st, *tx.OrderID); ok {
				return repository.ErrDuplicate
			}
		}
		r.s.stamp(&tx.DTO, st)
		st.ledger[tx.ID] = *tx
		return nil
	})
}

func (r ledgerRepo) ListForCustomer(_ context.Context, customerID uint, limit int) ([]model.PointTransaction, error) {
	var out []model.PointTransaction
	err := r.s.with(func(st *state) error {
		for _, tx := range st.ledger {
			if tx.CustomerID == customerID {
				out = append(out, tx)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r ledgerRepo) FindExpirable(_ context.Context, now time.Time) ([]model.PointTransaction, error) {
	var out []model.PointTransaction
	err := r.s.with(func(st *state) error {
		for _, tx := range st.ledger {
			if tx.Kind == "earned" && tx.PointsEarned > 0 && tx.ExpiredAt == nil &&
				tx.ExpiresAt != nil && !tx.ExpiresAt.After(now) {
				out = append(out, tx)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(*out[j].ExpiresAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ExpiresAt.Before(*out[j].ExpiresAt)
	})
	return out, err
}

func (r ledgerRepo) FindByIDForUpdate(_ context.Context, id uint) (*model.PointTransaction, error) {
	var out *model.PointTransaction
	err := r.s.with(func(st *state) error {
		tx, ok := st.ledger[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &tx
		return nil
	})
	return out, err
}

func (r ledgerRepo) MarkExpired(_ context.Context, id uint, at time.Time) error {
	return r.s.with(func(st *state) error {
		tx, ok := st.ledger[id]
		if !ok || tx.ExpiredAt != nil {
			return repository.ErrNotFound
		}
		stamp := at
		tx.ExpiredAt = &stamp
		st.ledger[id] = tx
		return nil
	})
}

func (r ledgerRepo) FindAccount(_ context.Context, customerID uint) (*model.LoyaltyAccount, error) {
	var out *model.LoyaltyAccount
	err := r.s.with(func(st *state) error {
		acc, ok := st.accounts[customerID]
		if !ok {
			return repository.ErrNotFound
		}
		out = &acc
		return nil
	})
	return out, err
}

func (r ledgerRepo) FindAccountForUpdate(ctx context.Context, customerID uint) (*model.LoyaltyAccount, error) {
	return r.FindAccount(ctx, customerID)
}

func (r ledgerRepo) GetOrCreateAccountForUpdate(_ context.Context, customerID uint, now time.Time) (*model.LoyaltyAccount, error) {
	var out *model.LoyaltyAccount
	err := r.s.with(func(st *state) error {
		acc, ok := st.accounts[customerID]
		if !ok {
			acc = model.LoyaltyAccount{CustomerID: customerID, Tier: "bronze", LastActivity: now}
			r.s.stamp(&acc.DTO, st)
			st.accounts[customerID] = acc
		}
		out = &acc
		return nil
	})
	return out, err
}

func (r ledgerRepo) SaveAccount(_ context.Context, account *model.LoyaltyAccount) error {
	return r.s.with(func(st *state) error {
		r.s.stamp(&account.DTO, st)
		st.accounts[account.CustomerID] = *account
		return nil
	})
}

// ---- programs & campaigns ----

type programRepo struct{ s *Store }

func (r programRepo) Create(_ context.Context, program *model.LoyaltyProgram) error {
	return r.s.with(func(st *state) error {
		r.s.stamp(&program.DTO, st)
		if program.Status == "" {
			program.Status = "active"
		}
		st.programs[program.ID] = *program
		return nil
	})
}

func (r programRepo) FindActive(_ context.Context) (*model.LoyaltyProgram, error) {
	var out *model.LoyaltyProgram
	err := r.s.with(func(st *state) error {
		for _, p := range st.programs {
			if p.Status == "active" && (out == nil || p.ID < out.ID) {
				p := p
				out = &p
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

type campaignRepo struct{ s *Store }

func (r campaignRepo) Create(_ context.Context, campaign *model.PromotionalCampaign) error {
	return r.s.with(func(st *state) error {
		for _, c := range st.campaigns {
			if c.Code == campaign.Code {
				return repository.ErrDuplicate
			}
		}
		r.s.stamp(&campaign.DTO, st)
		if campaign.Status == "" {
			campaign.Status = "active"
		}
		st.campaigns[campaign.ID] = *campaign
		return nil
	})
}

func (r campaignRepo) FindActive(_ context.Context, now time.Time) ([]model.PromotionalCampaign, error) {
	var out []model.PromotionalCampaign
	err := r.s.with(func(st *state) error {
		for _, c := range st.campaigns {
			if c.IsActive(now) {
				out = append(out, c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r campaignRepo) List(_ context.Context) ([]model.PromotionalCampaign, error) {
	var out []model.PromotionalCampaign
	err := r.s.with(func(st *state) error {
		for _, c := range st.campaigns {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, err
}

// ---- rewards ----

type rewardRepo struct{ s *Store }

func (r rewardRepo) Create(_ context.Context, reward *model.RewardItem) error {
	return r.s.with(func(st *state) error {
		r.s.stamp(&reward.DTO, st)
		if reward.Status == "" {
			reward.Status = "active"
		}
		st.rewards[reward.ID] = *reward
		return nil
	})
}

func (r rewardRepo) FindByID(_ context.Context, id uint) (*model.RewardItem, error) {
	var out *model.RewardItem
	err := r.s.with(func(st *state) error {
		rw, ok := st.rewards[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &rw
		return nil
	})
	return out, err
}

func (r rewardRepo) ListActive(_ context.Context, now time.Time) ([]model.RewardItem, error) {
	var out []model.RewardItem
	err := r.s.with(func(st *state) error {
		for _, rw := range st.rewards {
			if rw.Status == "active" && (rw.ExpiryDate == nil || !rw.ExpiryDate.Before(now)) {
				out = append(out, rw)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PointsRequired < out[j].PointsRequired })
	return out, err
}

func (r rewardRepo) CreateRedemption(_ context.Context, redemption *model.RewardRedemption) error {
	return r.s.with(func(st *state) error {
		for _, rd := range st.redemptions {
			if strings.EqualFold(rd.RedemptionCode, redemption.RedemptionCode) {
				return repository.ErrDuplicate
			}
		}
		r.s.stamp(&redemption.DTO, st)
		st.redemptions[redemption.ID] = *redemption
		return nil
	})
}

func (r rewardRepo) ListRedemptions(_ context.Context, customerID uint) ([]model.RewardRedemption, error) {
	var out []model.RewardRedemption
	err := r.s.with(func(st *state) error {
		for _, rd := range st.redemptions {
			if rd.CustomerID == customerID {
				rd.Reward = st.rewards[rd.RewardID]
				out = append(out, rd)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

// ---- audit ----

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	return r.s.with(func(st *state) error {
		r.s.stamp(&entry.DTO, st)
		st.audits[entry.ID] = *entry
		return nil
	})
}

// AuditLogs trả về nhật ký theo thứ tự tạo
func (s *Store) AuditLogs() []model.AuditLog {
	var out []model.AuditLog
	_ = s.with(func(st *state) error {
		for _, a := range st.audits {
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LedgerFor trả toàn bộ sổ cái của khách theo thứ tự id tăng dần
func (s *Store) LedgerFor(customerID uint) []model.PointTransaction {
	var out []model.PointTransaction
	_ = s.with(func(st *state) error {
		for _, tx := range st.ledger {
			if tx.CustomerID == customerID {
				out = append(out, tx)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
