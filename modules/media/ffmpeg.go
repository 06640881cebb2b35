package media

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"adforge-server/modules/common/apierr"
)

// 오버레이 위치
const (
	PositionCenter      = "center"
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
)

// ffmpeg/ffprobe 외부 프로세스 실행 제한
const execTimeout = 5 * time.Minute

// OverlaySize - 오버레이 스트림 강제 리사이즈 크기
type OverlaySize struct {
	Width  int
	Height int
}

// OverlayOptions - 합성 옵션
type OverlayOptions struct {
	Position        string
	Size            *OverlaySize
	BackgroundAudio bool
}

// OverlayResult - 합성 결과 (ffmpeg 진단 출력 포함)
type OverlayResult struct {
	OutputPath string
	Log        string
}

// Compositor - ffmpeg 기반 비디오 합성기
type Compositor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewCompositor - Compositor 생성
func NewCompositor() *Compositor {
	return &Compositor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
}

// Overlay - 배경 비디오 위에 오버레이 비디오 합성
// 입력 파일은 변경하지 않고, 결과는 outputPath에 기록
func (c *Compositor) Overlay(ctx context.Context, backgroundPath, overlayPath, outputPath string, opts OverlayOptions) (*OverlayResult, error) {
	bgW, bgH, err := c.ProbeDimensions(ctx, backgroundPath)
	if err != nil {
		return nil, err
	}

	ovW, ovH := 0, 0
	if opts.Size != nil {
		ovW, ovH = opts.Size.Width, opts.Size.Height
	} else {
		ovW, ovH, err = c.ProbeDimensions(ctx, overlayPath)
		if err != nil {
			return nil, err
		}
	}

	x, y := calculatePosition(opts.Position, bgW, bgH, ovW, ovH)
	filterComplex := buildFilterComplex(x, y, opts.Size, opts.BackgroundAudio)

	args := []string{
		"-y",
		"-i", backgroundPath,
		"-i", overlayPath,
		"-filter_complex", filterComplex,
		"-map", "[v]",
	}
	if opts.BackgroundAudio {
		args = append(args, "-map", "[a]", "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args, outputPath)

	log.Printf("🎬 [Compositor] Overlay at (%d,%d) on %dx%d background", x, y, bgW, bgH)

	output, err := c.run(ctx, c.ffmpegPath, args...)
	if err != nil {
		log.Printf("❌ [Compositor] Overlay failed: %v", err)
		return nil, apierr.NewCompositionError(err, output, "video overlay failed")
	}

	return &OverlayResult{OutputPath: outputPath, Log: output}, nil
}

// Resize - 비디오 리사이즈
func (c *Compositor) Resize(ctx context.Context, inputPath, outputPath string, width, height int) error {
	output, err := c.run(ctx, c.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-c:a", "copy",
		outputPath,
	)
	if err != nil {
		log.Printf("❌ [Compositor] Resize failed: %v", err)
		return apierr.NewCompositionError(err, output, "video resize failed")
	}
	return nil
}

// ExtractAudio - 비디오에서 오디오 추출 (mp3)
func (c *Compositor) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	output, err := c.run(ctx, c.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "mp3",
		outputPath,
	)
	if err != nil {
		log.Printf("❌ [Compositor] Audio extraction failed: %v", err)
		return apierr.NewCompositionError(err, output, "audio extraction failed")
	}
	return nil
}

// ExtractFirstFrame - 비디오 첫 프레임을 jpg로 추출 (캡셔닝용)
func (c *Compositor) ExtractFirstFrame(ctx context.Context, videoPath, outputPath string) (string, error) {
	output, err := c.run(ctx, c.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	)
	if err != nil {
		log.Printf("❌ [Compositor] Frame extraction failed: %v", err)
		return "", apierr.NewCompositionError(err, output, "frame extraction failed")
	}
	return outputPath, nil
}

// ProbeDimensions - ffprobe로 비디오 해상도 조회
func (c *Compositor) ProbeDimensions(ctx context.Context, videoPath string) (int, int, error) {
	output, err := c.run(ctx, c.ffprobePath,
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		videoPath,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	parts := strings.Split(strings.TrimSpace(output), ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe output: %q", output)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q: %w", parts[1], err)
	}

	return width, height, nil
}

// run - 외부 프로세스 실행 (5분 제한, stdout+stderr 수집)
func (c *Compositor) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// calculatePosition - 오버레이 좌표 계산
// 알 수 없는 위치 값은 center로 처리, 음수 좌표는 0으로 클램프
func calculatePosition(position string, bgW, bgH, ovW, ovH int) (int, int) {
	var x, y int

	switch position {
	case PositionTopLeft:
		x, y = 0, 0
	case PositionTopRight:
		x, y = bgW-ovW, 0
	case PositionBottomLeft:
		x, y = 0, bgH-ovH
	case PositionBottomRight:
		x, y = bgW-ovW, bgH-ovH
	default:
		x = (bgW - ovW) / 2
		y = (bgH - ovH) / 2
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// buildFilterComplex - ffmpeg filter graph 구성
func buildFilterComplex(x, y int, size *OverlaySize, backgroundAudio bool) string {
	filters := []string{}

	overlayInput := "[1:v]"
	if size != nil {
		filters = append(filters, fmt.Sprintf("[1:v]scale=%d:%d[overlay_scaled]", size.Width, size.Height))
		overlayInput = "[overlay_scaled]"
	}

	filters = append(filters, fmt.Sprintf("[0:v]%soverlay=%d:%d[v]", overlayInput, x, y))

	if backgroundAudio {
		filters = append(filters, "[0:a]aformat=sample_fmts=fltp:sample_rates=44100:channel_layouts=stereo[a]")
	}

	return strings.Join(filters, ";")
}
