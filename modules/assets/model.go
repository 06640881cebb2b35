package assets

import "time"

// Asset 종류
const (
	KindImage           = "image"
	KindVideo           = "video"
	KindVoice           = "voice"
	KindFrame           = "frame"
	KindProductMetadata = "product_metadata"
	KindCombinedOutput  = "combined_output"
)

// CombinedMarker - 최종 합성 결과물 파일명 마커
// 세션 상태 판정은 이 마커 포함 여부로 결정됨
const CombinedMarker = "combined_final"

// Entry - 세션 매니페스트의 Asset 항목
type Entry struct {
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Manifest - 세션별 Asset 인덱스
// 디렉토리 스캔 순서 비결정성을 제거하기 위해 삽입 순서를 보존함
type Manifest struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Assets    []Entry   `json:"assets"`
}

// ProductMetadata - 세션당 하나의 상품 메타데이터
type ProductMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FileStatus - 상태 조회용 파일 정보
type FileStatus struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Size     int64  `json:"size"`
}
