package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"adforge-server/modules/assets"
	"adforge-server/modules/avatar"
	"adforge-server/modules/background"
	"adforge-server/modules/caption"
	"adforge-server/modules/common/config"
	"adforge-server/modules/image"
	"adforge-server/modules/media"
	"adforge-server/modules/product"
	"adforge-server/modules/script"
	"adforge-server/modules/videoprompt"
	"adforge-server/modules/voice"
	"adforge-server/modules/worker"
	"adforge-server/modules/workflow"
)

// 만료 세션 기준 시간
const sessionMaxAge = 24 * time.Hour

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "adforge-server",
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Asset 저장소 초기화
	store, err := assets.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("❌ Failed to initialize asset store: %v", err)
	}

	// 서비스 초기화
	captioner := caption.NewService()
	compositor := media.NewCompositor()
	scriptSvc := script.NewService()
	veoPromptSvc := videoprompt.NewService()
	backgroundSvc := background.NewService(background.DefaultServiceConfig())
	avatarSvc := avatar.NewService(avatar.DefaultServiceConfig())
	voiceSvc := voice.NewService(voice.DefaultServiceConfig(), scriptSvc)
	imageSvc := image.NewService()

	// 진행 상황 허브 + 워크플로우 오케스트레이터
	hub := workflow.NewProgressHub()
	workflowSvc := workflow.NewService(
		store, scriptSvc, veoPromptSvc, backgroundSvc, avatarSvc,
		compositor, captioner, compositor, hub,
	)

	// 핸들러
	scriptHandler := script.NewHandler(store, scriptSvc, captioner, compositor)
	veoPromptHandler := videoprompt.NewHandler(veoPromptSvc)
	productHandler := product.NewHandler(store)
	voiceHandler := voice.NewHandler(voiceSvc)
	avatarHandler := avatar.NewHandler(avatarSvc)
	imageHandler := image.NewHandler(imageSvc)
	workflowHandler := workflow.NewHandler(store, workflowSvc)

	// 만료 세션 정리 (24시간 경과 파일 삭제)
	c := cron.New()
	c.AddFunc("@every 30m", func() {
		if removed := store.CleanupExpired(sessionMaxAge); removed > 0 {
			log.Printf("🧹 Cleaned up %d expired asset files", removed)
		}
	})
	c.Start()

	// Redis Queue Worker 시작 (백그라운드)
	if wk := worker.NewWorker(workflowSvc); wk != nil {
		go wk.Start()
	}

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWS)

	r.HandleFunc("/script", scriptHandler.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/upload-product", productHandler.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/generate-veo-prompt", veoPromptHandler.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/voice", voiceHandler.Synthesize).Methods("POST", "OPTIONS")

	r.HandleFunc("/image", imageHandler.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/image/optimized", imageHandler.GenerateOptimized).Methods("POST", "OPTIONS")

	r.HandleFunc("/video/generate", avatarHandler.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/video/avatars", avatarHandler.ListAvatars).Methods("GET")
	r.HandleFunc("/video/voices", avatarHandler.ListVoices).Methods("GET")
	r.HandleFunc("/video/status/{videoId}", avatarHandler.CheckStatus).Methods("GET")

	r.HandleFunc("/complete-workflow", workflowHandler.CompleteWorkflow).Methods("POST", "OPTIONS")
	r.HandleFunc("/combined-video/generate", workflowHandler.GenerateCombined).Methods("POST", "OPTIONS")
	r.HandleFunc("/combined-video/generate-with-script", workflowHandler.GenerateCombinedWithScript).Methods("POST", "OPTIONS")
	r.HandleFunc("/combined-video/status/{sessionId}", workflowHandler.Status).Methods("GET")

	// 비동기 워크플로우 (Redis/Supabase 설정 시)
	if enqueueHandler := worker.NewEnqueueHandler(); enqueueHandler != nil {
		enqueueHandler.RegisterRoutes(r)
	}
	if cancelHandler := worker.NewCancelHandler(); cancelHandler != nil {
		cancelHandler.RegisterRoutes(r)
	}

	log.Printf("🚀 AdForge server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
