package apierr

import "fmt"

// InputError - 클라이언트 입력 오류 (400으로 매핑)
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// NewInputError - 입력 오류 생성
func NewInputError(format string, args ...interface{}) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError - 외부 생성 API 호출 실패 (502로 매핑)
// StatusCode는 업스트림 HTTP 상태 (타임아웃/파싱 실패는 0)
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError - Provider 오류 생성
func NewProviderError(provider string, statusCode int, format string, args ...interface{}) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    fmt.Sprintf(format, args...),
	}
}

// WrapProviderError - 하위 에러를 감싸는 Provider 오류
func WrapProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}

// CompositionError - ffmpeg 합성 실패 (500으로 매핑)
// Output에 ffmpeg stderr 진단 출력을 담음
type CompositionError struct {
	Message string
	Output  string
	Err     error
}

func (e *CompositionError) Error() string {
	return e.Message
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// NewCompositionError - 합성 오류 생성
func NewCompositionError(err error, output string, format string, args ...interface{}) *CompositionError {
	return &CompositionError{
		Message: fmt.Sprintf(format, args...),
		Output:  output,
		Err:     err,
	}
}
