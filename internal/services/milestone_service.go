package services

import (
	"context"

	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/ids"
	"github.com/diewo77/importdesk/internal/models"

	"gorm.io/gorm"
)

// MilestoneService is plain per-order checkpoint CRUD. Milestones never feed
// the settlement math; they only ride along in the full order read.
type MilestoneService struct {
	DB     *gorm.DB
	Events events.Publisher
}

func NewMilestoneService(db *gorm.DB, pub events.Publisher) *MilestoneService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &MilestoneService{DB: db, Events: pub}
}

func (s *MilestoneService) Create(ctx context.Context, m *models.Milestone) error {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", m.OrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return err
	}
	if m.ID == "" {
		m.ID = ids.NewMilestone()
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	s.Events.Publish(ctx, "milestone.created", m.ID, m)
	return nil
}

func (s *MilestoneService) Update(ctx context.Context, id string, patch map[string]any) (bool, error) {
	allowed := map[string]bool{"title": true, "due_date": true, "done": true, "notes": true}
	fields := map[string]any{}
	for k, v := range patch {
		if allowed[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return rowExists(ctx, s.DB, &models.Milestone{}, id)
	}
	res := s.DB.WithContext(ctx).Model(&models.Milestone{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return rowExists(ctx, s.DB, &models.Milestone{}, id)
	}
	return true, nil
}

func (s *MilestoneService) Delete(ctx context.Context, id string) (bool, error) {
	res := s.DB.WithContext(ctx).Delete(&models.Milestone{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *MilestoneService) ListByOrder(ctx context.Context, orderID string) ([]models.Milestone, error) {
	var out []models.Milestone
	err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at asc").Find(&out).Error
	return out, err
}
