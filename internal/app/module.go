package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/haventherapy/booking/internal/app/api/server"
	"github.com/haventherapy/booking/internal/app/service/billing"
	"github.com/haventherapy/booking/internal/app/service/chargerunner"
	"github.com/haventherapy/booking/internal/app/service/ledger"
	"github.com/haventherapy/booking/internal/app/service/statistics"
	"github.com/haventherapy/booking/internal/app/service/subscription"
	"github.com/haventherapy/booking/internal/platform/db"
	"github.com/haventherapy/booking/internal/platform/notify"
	"github.com/haventherapy/booking/internal/platform/payment"
	"github.com/haventherapy/booking/pkg/config"
	"github.com/haventherapy/booking/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	billing.Module,
	subscription.Module,
	statistics.Module,
	ledger.Module,
	chargerunner.Module,
	payment.Module,
	notify.Module,
)
