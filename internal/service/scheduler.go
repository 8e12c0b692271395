package service

import (
	"lms_backend/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartScheduler 启动后台定时任务，调用方负责在退出时 Stop
func StartScheduler(expireSpec string, payments *PaymentService) (*cron.Cron, error) {
	c := cron.New()

	if expireSpec != "" && payments != nil {
		_, err := c.AddFunc(expireSpec, func() {
			if _, err := payments.ExpireStalePayments(); err != nil {
				logger.Log.Error("Failed to expire stale payments", zap.Error(err))
			}
		})
		if err != nil {
			return nil, err
		}
	}

	c.Start()
	logger.Log.Info("Scheduler started", zap.String("expireSpec", expireSpec))
	return c, nil
}
