package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"adforge-server/modules/common/config"
	"adforge-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		log.Println("⚠️  Supabase not configured, async workflow jobs disabled")
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// InsertJob - 새 워크플로우 Job 레코드 생성
func (c *Client) InsertJob(ctx context.Context, job *model.WorkflowJob) error {
	log.Printf("📝 Inserting workflow job: %s (session: %s)", job.JobID, job.SessionID)

	insertData := map[string]interface{}{
		"job_id":         job.JobID,
		"session_id":     job.SessionID,
		"job_status":     job.JobStatus,
		"job_input_data": job.JobInputData,
	}

	_, _, err := c.supabase.From("ad_workflow_jobs").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert workflow job: %w", err)
	}

	log.Printf("✅ Workflow job inserted: %s", job.JobID)
	return nil
}

// FetchJob - Supabase에서 Job 데이터 조회
func (c *Client) FetchJob(jobID string) (*model.WorkflowJob, error) {
	log.Printf("🔍 Fetching workflow job: %s", jobID)

	var jobs []model.WorkflowJob

	data, _, err := c.supabase.From("ad_workflow_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query Supabase: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Workflow job fetched: %s (status: %s)", job.JobID, job.JobStatus)

	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusProcessing {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed || status == model.StatusUserCancelled {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("ad_workflow_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	return nil
}

// UpdateJobStage - 현재 파이프라인 단계 기록
func (c *Client) UpdateJobStage(ctx context.Context, jobID string, stage string) error {
	updateData := map[string]interface{}{
		"job_stage":  stage,
		"updated_at": "now()",
	}

	_, _, err := c.supabase.From("ad_workflow_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job stage: %w", err)
	}

	return nil
}

// UpdateJobResult - 완료된 Job의 결과 기록
func (c *Client) UpdateJobResult(ctx context.Context, jobID string, script, veoPrompt, combinedPath string) error {
	updateData := map[string]interface{}{
		"script":        script,
		"veo_prompt":    veoPrompt,
		"combined_path": combinedPath,
		"updated_at":    "now()",
	}

	_, _, err := c.supabase.From("ad_workflow_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job result: %w", err)
	}

	return nil
}

// UpdateJobError - 실패한 Job의 에러 메시지 기록
func (c *Client) UpdateJobError(ctx context.Context, jobID string, message string) error {
	updateData := map[string]interface{}{
		"error_message": message,
		"updated_at":    "now()",
	}

	_, _, err := c.supabase.From("ad_workflow_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job error: %w", err)
	}

	return nil
}
