package ws

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ScheduleDailyRoomReset 每天凌晨 4 点清理已结束的房间
func (h *Hub) ScheduleDailyRoomReset(ctx context.Context) {
	for {
		duration := durationUntilNext4AM(time.Now())
		zap.L().Info("距离下次清理房间", zap.Duration("wait", duration))

		select {
		case <-ctx.Done():
			return
		case <-time.After(duration):
		}
		zap.L().Info("⏰ 清理已结束的房间")
		h.clearRooms(ctx)
	}
}

func durationUntilNext4AM(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 4, 0, 0, 0, now.Location())

	// 已过 4 点则顺延到第二天
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// clearRooms 删除已结束的房间，连接由 CloseRoom 逐个断开
func (h *Hub) clearRooms(ctx context.Context) {
	removed, err := h.svc.CleanupFinished(ctx)
	if err != nil {
		zap.L().Error("❌ 清理房间失败", zap.Error(err))
	}
	zap.L().Info("✅ 房间清理完成", zap.Int("removed", len(removed)))
}
