package workflow

import (
	"context"
	"log"
	"os"
	"sync"

	"adforge-server/modules/assets"
	"adforge-server/modules/avatar"
	"adforge-server/modules/background"
	"adforge-server/modules/common/apierr"
	"adforge-server/modules/common/model"
	"adforge-server/modules/media"
	"adforge-server/modules/script"
	"adforge-server/modules/videoprompt"
)

// Service - 광고 비디오 워크플로우 오케스트레이터
// 스크립트 → veo 프롬프트 → {배경, 아바타} 병렬 생성 → ffmpeg 합성
type Service struct {
	store       *assets.Store
	scripts     ScriptGenerator
	veoPrompts  VeoPromptGenerator
	backgrounds BackgroundGenerator
	avatars     AvatarGenerator
	compositor  Compositor
	captioner   Captioner
	extractor   FrameExtractor
	progress    ProgressPublisher
}

// NewService - 오케스트레이터 생성 (captioner/extractor/progress는 nil 허용)
func NewService(
	store *assets.Store,
	scripts ScriptGenerator,
	veoPrompts VeoPromptGenerator,
	backgrounds BackgroundGenerator,
	avatars AvatarGenerator,
	compositor Compositor,
	captioner Captioner,
	extractor FrameExtractor,
	progress ProgressPublisher,
) *Service {
	return &Service{
		store:       store,
		scripts:     scripts,
		veoPrompts:  veoPrompts,
		backgrounds: backgrounds,
		avatars:     avatars,
		compositor:  compositor,
		captioner:   captioner,
		extractor:   extractor,
		progress:    progress,
	}
}

// Run - 워크플로우 실행
// Script/VeoPrompt가 이미 채워진 요청은 해당 단계를 건너뜀
// 실패한 단계 이전에 저장된 산출물은 그대로 남음 (롤백 없음)
func (s *Service) Run(ctx context.Context, req Request, onStage StageFunc) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	sessionID := req.SessionID

	s.notify(sessionID, model.StageStart, "workflow started", onStage)

	// 1단계: 스크립트 생성
	if req.Script == "" {
		generated, err := s.generateScript(ctx, req)
		if err != nil {
			return nil, err
		}
		req.Script = generated
	}
	s.notify(sessionID, model.StageScriptGenerated, "ad script ready", onStage)

	// 2단계: veo 프롬프트 생성
	if req.VeoPrompt == "" {
		veoPrompt, err := s.veoPrompts.GenerateVeoPrompt(ctx, videoprompt.PromptInput{
			Script:             req.Script,
			ProductName:        req.ProductName,
			ProductDescription: req.ProductDescription,
			CreativeStyle:      req.CreativeStyle,
			Mood:               req.Mood,
			TargetAudience:     req.TargetAudience,
		})
		if err != nil {
			return nil, err
		}
		req.VeoPrompt = veoPrompt
	}
	s.notify(sessionID, model.StageVideoPromptReady, "video prompt ready", onStage)

	// 3·4단계: 배경/아바타 비디오는 독립적이라 병렬 생성
	var (
		wg               sync.WaitGroup
		bgPath, ovPath   string
		bgErr, avatarErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bgPath, bgErr = s.generateBackground(ctx, req)
		if bgErr == nil {
			s.notify(sessionID, model.StageBackgroundVideoDone, "background video ready", onStage)
		}
	}()
	go func() {
		defer wg.Done()
		ovPath, avatarErr = s.generateAvatar(ctx, req)
		if avatarErr == nil {
			s.notify(sessionID, model.StageAvatarVideoDone, "avatar video ready", onStage)
		}
	}()
	wg.Wait()

	if bgErr != nil {
		return nil, bgErr
	}
	if avatarErr != nil {
		return nil, avatarErr
	}

	// 5단계: 합성
	combinedPath, err := s.compose(ctx, sessionID, bgPath, ovPath, req)
	if err != nil {
		return nil, err
	}
	s.notify(sessionID, model.StageComposed, "combined video ready", onStage)

	return &Result{
		SessionID:      sessionID,
		Script:         req.Script,
		VeoPrompt:      req.VeoPrompt,
		CombinedVideo:  combinedPath,
		WorkflowStatus: "completed",
	}, nil
}

// Status - 세션 파일 목록과 파생 상태 조회
func (s *Service) Status(sessionID string) StatusResponse {
	return StatusResponse{
		SessionID: sessionID,
		Status:    s.store.SessionStatus(sessionID),
		Files:     s.store.ListStatus(sessionID),
	}
}

// validate - 프롬프트/스크립트가 없으면 세션에 캡션 가능한 Asset이 있어야 함
func (s *Service) validate(req Request) error {
	if req.SessionID == "" {
		return apierr.NewInputError("session_id is required")
	}
	if req.AvatarID == "" || req.VoiceID == "" {
		return apierr.NewInputError("avatar_id and voice_id are required")
	}
	if req.Script != "" || req.Prompt != "" {
		return nil
	}
	if _, ok := s.store.Find(req.SessionID, assets.KindImage); ok {
		return nil
	}
	if _, ok := s.store.Find(req.SessionID, assets.KindVideo); ok {
		return nil
	}
	if meta, err := s.store.LoadMetadata(req.SessionID); err == nil && meta != nil {
		return nil
	}
	return apierr.NewInputError("at least one of prompt, script, or session assets is required")
}

// generateScript - 세션 Asset 캡션을 포함해 스크립트 생성
func (s *Service) generateScript(ctx context.Context, req Request) (string, error) {
	in := script.PromptInput{
		Prompt:             req.Prompt,
		ImageCaption:       s.captionSessionImage(ctx, req.SessionID),
		VideoCaption:       s.captionSessionVideo(ctx, req.SessionID),
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
		ScriptFormat:       req.ScriptFormat,
		CreativeStrategy:   req.CreativeStrategy,
		ExecutionStyle:     req.ExecutionStyle,
	}
	if in.ProductName == "" {
		if meta, err := s.store.LoadMetadata(req.SessionID); err == nil && meta != nil {
			in.ProductName = meta.Name
			in.ProductDescription = meta.Description
		}
	}
	return s.scripts.GenerateScript(ctx, script.BuildScriptPrompt(in))
}

// generateBackground - Veo 배경 비디오 생성 후 저장
func (s *Service) generateBackground(ctx context.Context, req Request) (string, error) {
	result, err := s.backgrounds.GenerateVideo(ctx, background.GenerateRequest{
		Prompt:      req.VeoPrompt,
		Duration:    req.VeoDuration,
		AspectRatio: req.VeoAspectRatio,
		Quality:     req.VeoQuality,
	})
	if err != nil {
		return "", err
	}
	return s.store.SaveAs(req.SessionID, kindBackgroundVideo, req.SessionID+backgroundFileSuffix, result.VideoData)
}

// generateAvatar - HeyGen 아바타 비디오 생성 후 결과 URL 다운로드
func (s *Service) generateAvatar(ctx context.Context, req Request) (string, error) {
	result, err := s.avatars.GenerateVideo(ctx, avatar.GenerateRequest{
		Script:   req.Script,
		AvatarID: req.AvatarID,
		VoiceID:  req.VoiceID,
	})
	if err != nil {
		return "", err
	}
	return s.store.DownloadToStore(ctx, result.VideoURL, req.SessionID, kindOverlayVideo, req.SessionID+overlayFileSuffix)
}

// compose - 합성 후 매니페스트 등록
func (s *Service) compose(ctx context.Context, sessionID, bgPath, ovPath string, req Request) (string, error) {
	outputName := sessionID + combinedFileSuffix
	outputPath := s.store.Path(outputName)

	opts := media.OverlayOptions{
		Position:        req.OverlayPosition,
		BackgroundAudio: req.BackgroundAudio,
	}
	if req.OverlayWidth > 0 && req.OverlayHeight > 0 {
		opts.Size = &media.OverlaySize{Width: req.OverlayWidth, Height: req.OverlayHeight}
	}

	result, err := s.compositor.Overlay(ctx, bgPath, ovPath, outputPath, opts)
	if err != nil {
		return "", err
	}
	if _, err := s.store.Register(sessionID, assets.KindCombinedOutput, outputName); err != nil {
		log.Printf("⚠️ [Workflow] Failed to register combined output: %v", err)
	}
	return result.OutputPath, nil
}

// captionSessionImage - 세션 이미지 캡션 (없거나 실패하면 빈 문자열)
func (s *Service) captionSessionImage(ctx context.Context, sessionID string) string {
	if s.captioner == nil {
		return ""
	}
	path, ok := s.store.Find(sessionID, assets.KindImage)
	if !ok {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	caption, err := s.captioner.DescribeImage(ctx, data, "image/jpeg")
	if err != nil {
		log.Printf("⚠️ [Workflow] Image captioning skipped: %v", err)
		return ""
	}
	return caption
}

// captionSessionVideo - 세션 비디오 첫 프레임 캡션
func (s *Service) captionSessionVideo(ctx context.Context, sessionID string) string {
	if s.captioner == nil || s.extractor == nil {
		return ""
	}
	path, ok := s.store.Find(sessionID, assets.KindVideo)
	if !ok {
		return ""
	}
	framePath, err := s.extractor.ExtractFirstFrame(ctx, path, s.store.FramePath(sessionID))
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(framePath)
	if err != nil {
		return ""
	}
	caption, err := s.captioner.DescribeVideoFrame(ctx, data)
	if err != nil {
		log.Printf("⚠️ [Workflow] Video captioning skipped: %v", err)
		return ""
	}
	return caption
}

func (s *Service) notify(sessionID, stage, message string, onStage StageFunc) {
	log.Printf("🚀 [Workflow] %s: %s", sessionID, stage)
	if s.progress != nil {
		s.progress.Publish(sessionID, stage, message)
	}
	if onStage != nil {
		onStage(stage)
	}
}
