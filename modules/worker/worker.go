package worker

import (
	"context"
	"errors"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"adforge-server/modules/common/cancel"
	"adforge-server/modules/common/config"
	"adforge-server/modules/common/database"
	"adforge-server/modules/common/model"
	redisutil "adforge-server/modules/common/redis"
	"adforge-server/modules/workflow"
)

// QueueName - 비동기 워크플로우 잡 큐
const QueueName = "workflows:queue"

// Worker - Redis 큐에서 워크플로우 잡을 꺼내 실행하는 워커
type Worker struct {
	rdb      *goredis.Client
	db       *database.Client
	workflow *workflow.Service
}

// NewWorker - 워커 생성 (Redis/Supabase 미설정 시 nil)
func NewWorker(workflowSvc *workflow.Service) *Worker {
	cfg := config.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [Worker] Redis not configured, async workflows disabled")
		return nil
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [Worker] Supabase not configured, async workflows disabled")
		return nil
	}

	return &Worker{rdb: rdb, db: db, workflow: workflowSvc}
}

// Start - 큐 감시 루프 (고루틴에서 호출)
func (w *Worker) Start() {
	log.Printf("🔄 [Worker] Watching queue: %s", QueueName)
	ctx := context.Background()

	for {
		result, err := w.rdb.BRPop(ctx, 0, QueueName).Result()
		if err != nil {
			log.Printf("❌ [Worker] Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 job_id
		jobID := result[1]
		log.Printf("🎯 [Worker] Received job: %s", jobID)

		go w.processJob(ctx, jobID)
	}
}

// processJob - 단일 잡 실행
// 취소 플래그 감시 goroutine이 in-flight provider 호출을 context로 중단
func (w *Worker) processJob(ctx context.Context, jobID string) {
	job, err := w.db.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ [Worker] Failed to fetch job %s: %v", jobID, err)
		return
	}

	if cancel.CheckAndHandleCancel(ctx, w, jobID, model.StageStart) {
		return
	}

	if err := w.db.UpdateJobStatus(ctx, jobID, model.StatusProcessing); err != nil {
		log.Printf("⚠️ [Worker] Failed to mark job processing: %v", err)
	}

	jobCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	go cancel.WatchJob(jobCtx, w, jobID, cancelFn)

	req := requestFromJob(job)
	result, err := w.workflow.Run(jobCtx, req, func(stage string) {
		if err := w.db.UpdateJobStage(ctx, jobID, stage); err != nil {
			log.Printf("⚠️ [Worker] Failed to record stage %s: %v", stage, err)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || w.IsJobCancelled(jobID) {
			log.Printf("🛑 [Worker] Job %s cancelled", jobID)
			w.db.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
			return
		}
		log.Printf("❌ [Worker] Job %s failed: %v", jobID, err)
		w.db.UpdateJobError(ctx, jobID, err.Error())
		w.db.UpdateJobStatus(ctx, jobID, model.StatusFailed)
		return
	}

	if err := w.db.UpdateJobResult(ctx, jobID, result.Script, result.VeoPrompt, result.CombinedVideo); err != nil {
		log.Printf("⚠️ [Worker] Failed to record job result: %v", err)
	}
	if err := w.db.UpdateJobStatus(ctx, jobID, model.StatusCompleted); err != nil {
		log.Printf("⚠️ [Worker] Failed to mark job completed: %v", err)
	}
	log.Printf("✅ [Worker] Job %s completed", jobID)
}

// IsJobCancelled - cancel.StatusUpdater 구현
func (w *Worker) IsJobCancelled(jobID string) bool {
	return redisutil.IsJobCancelled(w.rdb, jobID)
}

// UpdateJobStatus - cancel.StatusUpdater 구현
func (w *Worker) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	return w.db.UpdateJobStatus(ctx, jobID, status)
}

// requestFromJob - job_input_data를 워크플로우 요청으로 변환
func requestFromJob(job *model.WorkflowJob) workflow.Request {
	in := job.JobInputData

	sessionID := job.SessionID
	if sessionID == "" {
		sessionID = stringField(in, "sessionId")
	}

	req := workflow.Request{
		SessionID:        sessionID,
		Prompt:           stringField(in, "prompt"),
		ProductName:      stringField(in, "productName"),
		ScriptFormat:     stringField(in, "scriptFormat"),
		CreativeStrategy: stringField(in, "creativeStrategy"),
		ExecutionStyle:   stringField(in, "executionStyle"),
		CreativeStyle:    stringField(in, "creativeStyle"),
		Mood:             stringField(in, "mood"),
		TargetAudience:   stringField(in, "targetAudience"),
		AvatarID:         stringField(in, "avatarId"),
		VoiceID:          stringField(in, "voiceId"),
		VeoDuration:      intField(in, "veoDuration", 5),
		VeoAspectRatio:   stringField(in, "veoAspectRatio"),
		VeoQuality:       stringField(in, "veoQuality"),
		OverlayPosition:  stringField(in, "overlayPosition"),
		BackgroundAudio:  boolField(in, "backgroundAudio", true),
	}
	if job.Script != nil {
		req.Script = *job.Script
	}
	if job.VeoPrompt != nil {
		req.VeoPrompt = *job.VeoPrompt
	}
	return req
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]interface{}, key string, fallback int) int {
	if m == nil {
		return fallback
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func boolField(m map[string]interface{}, key string, fallback bool) bool {
	if m == nil {
		return fallback
	}
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}
