package assets

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store - 세션 단위 Asset 저장소
// 플랫 디렉토리에 {session}_{kind}_{filename} 규칙으로 저장하고,
// 세션별 매니페스트({session}_manifest.json)로 조회 순서를 고정함
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore - Store 생성 (디렉토리 없으면 생성)
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir - 저장소 루트 경로
func (s *Store) Dir() string {
	return s.dir
}

// Path - 저장소 내 파일 경로 생성
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// FramePath - 첫 프레임 추출 결과 경로 ({session}_frame.jpg)
func (s *Store) FramePath(sessionID string) string {
	return s.Path(sessionID + "_frame.jpg")
}

func (s *Store) manifestPath(sessionID string) string {
	return s.Path(sessionID + "_manifest.json")
}

// Save - {session}_{kind}_{filename} 규칙으로 저장
// 같은 filename 재사용 시 덮어씀 (동시 쓰기 보장 없음)
// 업로드 파일명은 경로 구성요소를 제거해서 저장소 밖으로 못 나가게 함
func (s *Store) Save(sessionID, kind, filename string, data []byte) (string, error) {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == ".." || filename == "/" {
		return "", fmt.Errorf("invalid asset filename: %q", filename)
	}
	name := fmt.Sprintf("%s_%s_%s", sessionID, kind, filename)
	return s.SaveAs(sessionID, kind, name, data)
}

// SaveAs - 파일명 전체를 지정해서 저장 (frame, combined_final 등 고정 이름용)
func (s *Store) SaveAs(sessionID, kind, name string, data []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	if err := s.appendEntry(sessionID, Entry{
		Kind:      kind,
		Filename:  name,
		Path:      path,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}); err != nil {
		// 매니페스트 갱신 실패는 저장 자체를 되돌리지 않음
		log.Printf("⚠️  Failed to update manifest for %s: %v", sessionID, err)
	}

	return path, nil
}

// Register - 외부에서 이미 쓰여진 파일을 매니페스트에 등록 (ffmpeg 출력 등)
func (s *Store) Register(sessionID, kind, name string) (string, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot register missing asset: %w", err)
	}

	if err := s.appendEntry(sessionID, Entry{
		Kind:      kind,
		Filename:  name,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}); err != nil {
		log.Printf("⚠️  Failed to update manifest for %s: %v", sessionID, err)
	}

	return path, nil
}

// Find - 세션의 해당 종류 Asset 중 첫 번째 반환
// 매니페스트가 있으면 삽입 순서 기준, 없으면 사전순 디렉토리 스캔
func (s *Store) Find(sessionID, kind string) (string, bool) {
	if m, err := s.loadManifest(sessionID); err == nil && m != nil {
		for _, entry := range m.Assets {
			if entry.Kind == kind {
				return entry.Path, true
			}
		}
		return "", false
	}

	// 매니페스트 없는 레거시 세션: 사전순 스캔으로 순서 고정
	prefix := fmt.Sprintf("%s_%s_", sessionID, kind)
	names, err := s.listNames(sessionID)
	if err != nil {
		return "", false
	}
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			return s.Path(name), true
		}
	}
	return "", false
}

// SaveMetadata - 상품 메타데이터 저장 ({session}_product.json, 마지막 쓰기 우선)
func (s *Store) SaveMetadata(sessionID string, meta *ProductMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal product metadata: %w", err)
	}

	name := sessionID + "_product.json"
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write product metadata: %w", err)
	}

	if err := s.upsertEntry(sessionID, Entry{
		Kind:      KindProductMetadata,
		Filename:  name,
		Path:      path,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}); err != nil {
		log.Printf("⚠️  Failed to update manifest for %s: %v", sessionID, err)
	}

	return nil
}

// LoadMetadata - 상품 메타데이터 로드
// 파일이 없거나 파싱 불가능하면 nil 반환 (에러 아님)
func (s *Store) LoadMetadata(sessionID string) (*ProductMetadata, error) {
	data, err := os.ReadFile(s.Path(sessionID + "_product.json"))
	if err != nil {
		return nil, nil
	}

	var meta ProductMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		log.Printf("⚠️  Malformed product metadata for session %s, treating as missing", sessionID)
		return nil, nil
	}

	return &meta, nil
}

// ListStatus - 세션 접두사와 일치하는 모든 파일의 존재/크기 정보
// 매니페스트를 거치지 않는 순수 파일시스템 뷰
func (s *Store) ListStatus(sessionID string) []FileStatus {
	statuses := []FileStatus{}

	names, err := s.listNames(sessionID)
	if err != nil {
		return statuses
	}

	for _, name := range names {
		path := s.Path(name)
		status := FileStatus{Filename: name, Path: path}
		if info, err := os.Stat(path); err == nil {
			status.Exists = true
			status.Size = info.Size()
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// SessionStatus - 세션 상태 판정
// combined_final 마커를 가진 파일이 하나라도 있으면 completed
func (s *Store) SessionStatus(sessionID string) string {
	names, err := s.listNames(sessionID)
	if err == nil {
		for _, name := range names {
			if strings.Contains(name, CombinedMarker) {
				return "completed"
			}
		}
	}
	return "processing"
}

// CleanupExpired - maxAge보다 오래된 파일 삭제, 삭제 개수 반환
func (s *Store) CleanupExpired(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("❌ Cleanup: failed to read upload dir: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(s.Path(entry.Name())); err != nil {
				log.Printf("⚠️  Cleanup: failed to remove %s: %v", entry.Name(), err)
				continue
			}
			cleaned++
		}
	}

	return cleaned
}

// listNames - 세션 접두사와 일치하는 파일명들 (사전순 정렬)
func (s *Store) listNames(sessionID string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := []string{}
	prefix := sessionID + "_"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadManifest - 세션 매니페스트 로드 (없으면 nil, nil 아닌 에러)
func (s *Store) loadManifest(sessionID string) (*Manifest, error) {
	data, err := os.ReadFile(s.manifestPath(sessionID))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) writeManifest(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.manifestPath(m.SessionID), data, 0o644)
}

// appendEntry - 매니페스트에 항목 추가 (없으면 생성)
func (s *Store) appendEntry(sessionID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadManifest(sessionID)
	if err != nil || m == nil {
		m = &Manifest{SessionID: sessionID, CreatedAt: time.Now()}
	}
	m.Assets = append(m.Assets, entry)
	return s.writeManifest(m)
}

// upsertEntry - 같은 종류의 기존 항목을 교체 (메타데이터처럼 세션당 1개인 항목용)
func (s *Store) upsertEntry(sessionID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadManifest(sessionID)
	if err != nil || m == nil {
		m = &Manifest{SessionID: sessionID, CreatedAt: time.Now()}
	}

	for i := range m.Assets {
		if m.Assets[i].Kind == entry.Kind {
			m.Assets[i] = entry
			return s.writeManifest(m)
		}
	}

	m.Assets = append(m.Assets, entry)
	return s.writeManifest(m)
}
