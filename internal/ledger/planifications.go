package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"money-tracking/internal/balance"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"gorm.io/gorm"
)

// ItemInput is one planned expense or income.
type ItemInput struct {
	Amount     int64   `json:"amount"`
	Type       string  `json:"type"`
	CategoryID *string `json:"category_id"`
	Note       string  `json:"note"`
}

// PlanificationView is a planification with its items and derived totals.
type PlanificationView struct {
	models.Planification
	balance.PlanTotals
	Expired bool `json:"expired"`
}

func (s *Service) view(p models.Planification) PlanificationView {
	if p.Items == nil {
		p.Items = []models.PlanificationItem{}
	}
	return PlanificationView{
		Planification: p,
		PlanTotals:    balance.Plan(p.Items),
		Expired:       p.IsExpired(s.clock()),
	}
}

// CreatePlanification starts a pending plan with no items.
func (s *Service) CreatePlanification(ctx context.Context, title string, deadline *time.Time) (*models.Planification, error) {
	title = strings.TrimSpace(title)
	if err := util.ValidateName(title, 128); err != nil {
		return nil, invalid("title %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	p := models.Planification{
		ID:        util.NewID(),
		Title:     title,
		Status:    models.PlanificationPending,
		Deadline:  utcPtr(deadline),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storage("create planification", err)
	}
	s.scheduleReminder(&p, now)
	return &p, nil
}

// AddItem appends a line to a pending planification. Income lines always
// use the system income category.
func (s *Service) AddItem(ctx context.Context, planificationID string, in ItemInput) (*models.PlanificationItem, error) {
	if !models.ValidTransactionType(in.Type) {
		return nil, invalid("unknown item type %q", in.Type)
	}
	if err := util.ValidateAmount(in.Amount); err != nil {
		return nil, invalid("%v", err)
	}
	if utf8.RuneCountInString(in.Note) > maxNoteLen {
		return nil, invalid("note too long, max %d characters", maxNoteLen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	item := models.PlanificationItem{
		ID:              util.NewID(),
		PlanificationID: planificationID,
		Amount:          in.Amount,
		Type:            in.Type,
		Note:            in.Note,
		CreatedAt:       now,
	}
	err := s.withTx(ctx, "add planification item", func(tx *gorm.DB) error {
		p, err := findPlanification(tx, planificationID)
		if err != nil {
			return err
		}
		if p.Status != models.PlanificationPending {
			return fmt.Errorf("%w: %s", ErrPlanificationLocked, p.Title)
		}
		if item.CategoryID, err = resolveCategory(tx, in.Type, in.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return touch(tx, p.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem hard-deletes a line of a pending planification.
func (s *Service) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "remove planification item", func(tx *gorm.DB) error {
		var item models.PlanificationItem
		err := tx.Where("id = ?", itemID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("planification item %s: %w", itemID, ErrNotFound)
		}
		if err != nil {
			return storage("find planification item", err)
		}
		p, err := findPlanification(tx, item.PlanificationID)
		if err != nil {
			return err
		}
		if p.Status != models.PlanificationPending {
			return fmt.Errorf("%w: %s", ErrPlanificationLocked, p.Title)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return touch(tx, p.ID, s.clock())
	})
}

// UpdateDeadline sets or clears the deadline of a pending planification.
// A new deadline re-arms the expiry notification.
func (s *Service) UpdateDeadline(ctx context.Context, planificationID string, deadline *time.Time) (*models.Planification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	var p *models.Planification
	err := s.withTx(ctx, "update deadline", func(tx *gorm.DB) error {
		var err error
		if p, err = findPlanification(tx, planificationID); err != nil {
			return err
		}
		if p.Status != models.PlanificationPending {
			return fmt.Errorf("%w: %s", ErrPlanificationLocked, p.Title)
		}
		p.Deadline, p.ExpiryNotifiedAt, p.UpdatedAt = utcPtr(deadline), nil, now
		return tx.Model(p).Select("deadline", "expiry_notified_at", "updated_at").Updates(p).Error
	})
	if err != nil {
		return nil, err
	}
	s.notify("cancel reminders", func(n Notifier) error { return n.CancelReminders(p.ID) })
	s.scheduleReminder(p, now)
	return p, nil
}

// DeletePlanification soft-deletes a pending planification.
func (s *Service) DeletePlanification(ctx context.Context, planificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, "delete planification", func(tx *gorm.DB) error {
		p, err := findPlanification(tx, planificationID)
		if err != nil {
			return err
		}
		if p.Status != models.PlanificationPending {
			return fmt.Errorf("%w: %s", ErrPlanificationLocked, p.Title)
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		return err
	}
	s.notify("cancel reminders", func(n Notifier) error { return n.CancelReminders(planificationID) })
	return nil
}

// GetPlanification returns one planification with its items and totals.
func (s *Service) GetPlanification(ctx context.Context, planificationID string) (*PlanificationView, error) {
	var p models.Planification
	err := s.read(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Where("id = ?", planificationID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("planification %s: %w", planificationID, ErrNotFound)
	}
	if err != nil {
		return nil, storage("get planification", err)
	}
	v := s.view(p)
	return &v, nil
}

// ListPlanifications returns live planifications, newest first, optionally
// restricted to one status.
func (s *Service) ListPlanifications(ctx context.Context, status string) ([]PlanificationView, error) {
	q := s.read(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Planification
	if err := q.Find(&list).Error; err != nil {
		return nil, storage("list planifications", err)
	}
	out := make([]PlanificationView, 0, len(list))
	for _, p := range list {
		out = append(out, s.view(p))
	}
	return out, nil
}

// CheckExpired flags every pending planification whose deadline has passed
// and notifies each one once per expiry. Status is left untouched. It
// returns the number of planifications notified.
func (s *Service) CheckExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	var expired []models.Planification
	err := s.withTx(ctx, "check expired", func(tx *gorm.DB) error {
		var candidates []models.Planification
		if err := tx.Where("status = ? AND deadline IS NOT NULL AND expiry_notified_at IS NULL",
			models.PlanificationPending).Find(&candidates).Error; err != nil {
			return err
		}
		for i := range candidates {
			p := &candidates[i]
			if !p.IsExpired(now) {
				continue
			}
			if err := tx.Model(p).UpdateColumn("expiry_notified_at", now).Error; err != nil {
				return err
			}
			expired = append(expired, *p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range expired {
		s.notify("expired", func(n Notifier) error { return n.NotifyExpired(p.ID, p.Title) })
	}
	return len(expired), nil
}

// Validate settles a pending planification on accountID: every item becomes
// a transaction of its own type, and the plan moves to completed. Either all
// of it happens or none of it does. The account balance is not checked.
func (s *Service) Validate(ctx context.Context, planificationID, accountID string) error {
	if accountID == "" {
		return invalid("account id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	err := s.withTx(ctx, "validate planification", func(tx *gorm.DB) error {
		p, err := findPlanification(tx, planificationID)
		if err != nil {
			return err
		}
		if p.Status != models.PlanificationPending {
			return fmt.Errorf("%w: %s", ErrAlreadyValidated, p.Title)
		}
		if _, err := findAccount(tx, accountID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalid("unknown account %s", accountID)
			}
			return err
		}

		var items []models.PlanificationItem
		if err := tx.Where("planification_id = ?", p.ID).
			Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			txs := make([]models.Transaction, 0, len(items))
			for _, it := range items {
				txs = append(txs, settle(it, p.Title, accountID, now))
			}
			if err := tx.Create(&txs).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.Planification{}).
			Where("id = ? AND status = ?", p.ID, models.PlanificationPending).
			Updates(map[string]any{"status": models.PlanificationCompleted, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: %s", ErrAlreadyValidated, p.Title)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notify("cancel reminders", func(n Notifier) error { return n.CancelReminders(planificationID) })
	return nil
}

// RescheduleReminders hands every pending future deadline to the notifier
// again, e.g. after a restart dropped in-memory reminders.
func (s *Service) RescheduleReminders(ctx context.Context) (int, error) {
	var list []models.Planification
	err := s.read(ctx).
		Where("status = ? AND deadline IS NOT NULL", models.PlanificationPending).
		Find(&list).Error
	if err != nil {
		return 0, storage("load pending planifications", err)
	}
	now := s.clock()
	n := 0
	for i := range list {
		if list[i].Deadline.After(now) {
			s.scheduleReminder(&list[i], now)
			n++
		}
	}
	return n, nil
}

// settle turns a planification item into a ledger transaction.
func settle(it models.PlanificationItem, title, accountID string, now time.Time) models.Transaction {
	cat := it.CategoryID
	if it.Type == models.TypeIncome {
		id := models.IncomeCategoryID
		cat = &id
	}
	note := it.Note
	if note == "" {
		note = title
	}
	return models.Transaction{
		ID:         util.NewID(),
		Type:       it.Type,
		Amount:     it.Amount,
		CategoryID: cat,
		AccountID:  &accountID,
		Note:       note,
		SyncStatus: models.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Service) scheduleReminder(p *models.Planification, now time.Time) {
	if p.Deadline == nil || !p.Deadline.After(now) {
		return
	}
	s.notify("schedule reminder", func(n Notifier) error {
		return n.ScheduleDeadlineReminder(p.ID, p.Title, *p.Deadline)
	})
}

func findPlanification(db *gorm.DB, id string) (*models.Planification, error) {
	var p models.Planification
	err := db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("planification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, storage("find planification", err)
	}
	return &p, nil
}

// touch bumps updated_at on the owning planification.
func touch(tx *gorm.DB, planificationID string, now time.Time) error {
	return tx.Model(&models.Planification{}).Where("id = ?", planificationID).
		UpdateColumn("updated_at", now).Error
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
