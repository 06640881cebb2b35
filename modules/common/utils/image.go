package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG 디코더 등록
	_ "image/png"  // PNG 디코더 등록
	"log"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// ConvertToWebP - 이미지 바이너리(PNG/JPEG/WebP)를 WebP로 변환
// 업로드된 상품 이미지의 저장용 변환에 사용
func ConvertToWebP(imageData []byte, quality float32) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ Image (%s) converted to WebP: %d bytes → %d bytes",
		format, len(imageData), len(webpData))

	return webpData, nil
}
