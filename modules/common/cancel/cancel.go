package cancel

import (
	"context"
	"log"
	"time"

	"adforge-server/modules/common/model"
)

// StatusUpdater - 상태 업데이트 인터페이스
type StatusUpdater interface {
	IsJobCancelled(jobID string) bool
	UpdateJobStatus(ctx context.Context, jobID string, status string) error
}

// CheckAndHandleCancel - 파이프라인 단계 진입 전 취소 체크
// 취소됐으면 상태를 user_cancelled로 기록하고 true 반환
func CheckAndHandleCancel(ctx context.Context, service StatusUpdater, jobID string, stage string) bool {
	if !service.IsJobCancelled(jobID) {
		return false
	}

	log.Printf("🛑 Stage %s: Job %s cancelled, stopping workflow", stage, jobID)

	if err := service.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled); err != nil {
		log.Printf("Failed to update cancelled job status: %v", err)
	}

	return true
}

// WatchJob - 취소 플래그 감시 goroutine
// 플래그가 서면 cancelFn 호출 (폴링 루프 등 진행 중인 provider 호출 중단용)
func WatchJob(ctx context.Context, service StatusUpdater, jobID string, cancelFn context.CancelFunc) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if service.IsJobCancelled(jobID) {
				log.Printf("🛑 Job %s cancel flag detected, cancelling in-flight calls", jobID)
				cancelFn()
				return
			}
		}
	}
}
