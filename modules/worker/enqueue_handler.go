package worker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
	"adforge-server/modules/common/database"
	"adforge-server/modules/common/model"
	redisutil "adforge-server/modules/common/redis"
	"adforge-server/modules/common/utils"
)

// EnqueueHandler - 비동기 워크플로우 등록 핸들러
type EnqueueHandler struct {
	rdb *goredis.Client
	db  *database.Client
}

// EnqueueRequest - POST /api/workflows/enqueue 요청
type EnqueueRequest struct {
	SessionID string                 `json:"session_id"`
	Input     map[string]interface{} `json:"input"`
}

// EnqueueResponse - 등록 응답
type EnqueueResponse struct {
	JobID         string `json:"job_id"`
	Queue         string `json:"queue"`
	QueuePosition int64  `json:"queue_position"`
}

// NewEnqueueHandler - 핸들러 생성 (Redis/Supabase 미설정 시 nil)
func NewEnqueueHandler() *EnqueueHandler {
	cfg := config.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [Enqueue] Redis not configured")
		return nil
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [Enqueue] Supabase not configured")
		return nil
	}

	return &EnqueueHandler{rdb: rdb, db: db}
}

// RegisterRoutes - 라우트 등록
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/workflows/enqueue", h.HandleEnqueue).Methods("POST")
	r.HandleFunc("/api/workflows/{jobId}", h.HandleGetJob).Methods("GET")
	log.Println("✅ [Enqueue] Routes registered: POST /api/workflows/enqueue, GET /api/workflows/{jobId}")
}

// HandleEnqueue - 잡 레코드 생성 후 큐에 push
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apierr.NewInputError("invalid request body: %v", err))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	jobID := uuid.NewString()

	job := &model.WorkflowJob{
		JobID:        jobID,
		SessionID:    sessionID,
		JobStatus:    model.StatusPending,
		JobInputData: req.Input,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	ctx, cancelFn := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancelFn()

	if err := h.db.InsertJob(ctx, job); err != nil {
		log.Printf("❌ [Enqueue] Failed to insert job: %v", err)
		utils.WriteError(w, err)
		return
	}

	position, err := h.rdb.LPush(ctx, QueueName, jobID).Result()
	if err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		h.db.UpdateJobError(ctx, jobID, "failed to enqueue")
		utils.WriteError(w, err)
		return
	}

	log.Printf("📥 [Enqueue] Job %s queued (position %d)", jobID, position)

	utils.WriteJSON(w, http.StatusAccepted, EnqueueResponse{
		JobID:         jobID,
		Queue:         QueueName,
		QueuePosition: position,
	})
}

// HandleGetJob - GET /api/workflows/{jobId} 잡 상태 조회
func (h *EnqueueHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if jobID == "" {
		utils.WriteError(w, apierr.NewInputError("jobId is required"))
		return
	}

	job, err := h.db.FetchJob(jobID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, job)
}
