// Package ledger serves the admin read side: paginated occurrence and
// charge-log listings plus the due-charge queue snapshot.
package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/haventherapy/booking/internal/models"
	"github.com/haventherapy/booking/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

type ScanOccurrencesRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanOccurrencesResponse struct {
	Items []*models.SessionOccurrence `json:"items"`
	Total int64                       `json:"total"`
}

// ScanOccurrences implements paginated/admin listing with filters
func (s *Service) ScanOccurrences(ctx context.Context, req *ScanOccurrencesRequest) (*ScanOccurrencesResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.SessionOccurrence{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count occurrences: %w", err)
	}

	var rows []*models.SessionOccurrence

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy == "" {
		req.SortBy = "scheduled_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})

	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}
	return &ScanOccurrencesResponse{Items: rows, Total: total}, nil
}

// ChargeHistory lists gateway attempts for one occurrence, newest first.
func (s *Service) ChargeHistory(ctx context.Context, occurrenceID string) ([]*models.ChargeLog, error) {
	var rows []*models.ChargeLog
	err := s.db.WithContext(ctx).
		Where("occurrence_id = ?", occurrenceID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list charge logs: %w", err)
	}
	return rows, nil
}

// DueCharges snapshots what the charge runner would pick up at now. The
// admin dashboard uses it to spot stuck or repeatedly declined charges.
func (s *Service) DueCharges(ctx context.Context, now time.Time, limit int) ([]*models.SessionOccurrence, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []*models.SessionOccurrence
	err := s.db.WithContext(ctx).
		Where("status = ? AND suspended = ? AND billed_at IS NULL AND charge_trigger_at <= ?",
			types.OccurrenceStatusScheduled, false, now).
		Order("charge_trigger_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due charges: %w", err)
	}
	return rows, nil
}
