package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"` // 僅在 debug 模式顯示
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error { return e.Err }

// Is 以錯誤代碼比對，讓 Wrap 後的錯誤仍可用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Code == e.Code
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Status: e.Status, Err: err}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AsCustomError 將任意錯誤轉為 CustomError；驗證錯誤為 400，其餘為 500
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	if IsValidationError(err) {
		return ErrInvalidRequest.Wrap(err)
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"     // 400
	ErrCodeNotFound         = "NOT_FOUND"           // 404
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"   // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"   // 429
	ErrCodeInternalError    = "INTERNAL_ERROR"      // 500
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout   = "GATEWAY_TIMEOUT"     // 504
	ErrCodeAIService        = "AI_SERVICE_ERROR"
	ErrCodeInvalidImage     = "INVALID_IMAGE"
	ErrCodeAnalysisNotFound = "ANALYSIS_NOT_FOUND"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrPayloadTooLarge    = NewError(ErrCodePayloadTooLarge, "請求內容過大", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrAIServiceError   = NewError(ErrCodeAIService, "AI 服務錯誤", http.StatusBadGateway, nil)
	ErrInvalidImage     = NewError(ErrCodeInvalidImage, "無效的餐點圖片", http.StatusBadRequest, nil)
	ErrAnalysisNotFound = NewError(ErrCodeAnalysisNotFound, "找不到分析結果", http.StatusNotFound, nil)
	ErrCacheFull        = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheMiss        = NewError("CACHE_MISS", "緩存未命中", http.StatusNotFound, nil)
)
