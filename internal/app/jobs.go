package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/servicehub/servicehub/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 10m", func() {
		a.SchedMarketplaceSnapshot()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedClearExpireData purges audit logs past the retention window
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	idays := a.appConfig.System.AuditDays
	if idays == 0 {
		idays = 365
	}
	a.gormDB.
		Where("opt_time < ? ", time.Now().
			Add(-time.Hour*24*time.Duration(idays))).Delete(domain.AuditLog{})
}

// SchedMarketplaceSnapshot logs headline marketplace counters
func (a *Application) SchedMarketplaceSnapshot() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	var offers, orders, reviews int64
	a.gormDB.Model(&domain.Offer{}).Count(&offers)
	a.gormDB.Model(&domain.Order{}).Count(&orders)
	a.gormDB.Model(&domain.Review{}).Count(&reviews)

	zap.L().Info("marketplace snapshot",
		zap.Int64("offers", offers),
		zap.Int64("orders", orders),
		zap.Int64("reviews", reviews))
}
