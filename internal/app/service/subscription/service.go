// Package subscription owns the recurring-subscription state machine and
// the materialization of weekly slots into concrete session occurrences.
package subscription

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haventherapy/booking/internal/app/service/billing"
	"github.com/haventherapy/booking/internal/app/service/schedule"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/pkg/config"
)

// ValidationError reports an unmet precondition on a state transition or
// slot mutation. The subscription is left unchanged.
type ValidationError struct {
	Precondition string
	Detail       string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("precondition failed: %s", e.Precondition)
	}
	return fmt.Sprintf("precondition failed: %s: %s", e.Precondition, e.Detail)
}

// ConflictError reports colliding enabled slots; it blocks activation and
// slot edits until the client resolves the overlap.
type ConflictError struct {
	Pairs []schedule.ConflictPair
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Pairs))
	for _, p := range e.Pairs {
		msgs = append(msgs, p.Message)
	}
	return "schedule conflict: " + strings.Join(msgs, "; ")
}

type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.SugaredLogger
	engine *billing.Engine
	sink   notify.Sink

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, engine *billing.Engine, sink notify.Sink) *Service {
	return &Service{cfg: cfg, db: db, log: log, engine: engine, sink: sink, now: time.Now}
}
