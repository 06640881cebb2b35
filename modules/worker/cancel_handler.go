package worker

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/config"
	"adforge-server/modules/common/database"
	redisutil "adforge-server/modules/common/redis"
	"adforge-server/modules/common/utils"
)

// CancelHandler - 워크플로우 잡 취소 핸들러
type CancelHandler struct {
	rdb *goredis.Client
	db  *database.Client
}

// NewCancelHandler - 핸들러 생성 (Redis/Supabase 미설정 시 nil)
func NewCancelHandler() *CancelHandler {
	cfg := config.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️ [Cancel] Redis not configured")
		return nil
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️ [Cancel] Supabase not configured")
		return nil
	}

	return &CancelHandler{rdb: rdb, db: db}
}

// RegisterRoutes - 라우트 등록
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/workflows/{jobId}/cancel", h.CancelJob).Methods("POST")
	log.Println("✅ [Cancel] Routes registered: POST /api/workflows/{jobId}/cancel")
}

// CancelJob - 취소 플래그 설정
// 워커의 감시 goroutine이 플래그를 보고 in-flight 호출을 중단
func (h *CancelHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if jobID == "" {
		utils.WriteError(w, apierr.NewInputError("jobId is required"))
		return
	}

	log.Printf("🛑 [Cancel] Cancel requested for job %s", jobID)

	if err := redisutil.SetJobCancelled(h.rdb, jobID); err != nil {
		log.Printf("❌ [Cancel] Failed to set cancel flag: %v", err)
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":    jobID,
		"cancelled": true,
	})
}
