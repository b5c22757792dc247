package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, administrator, vehicle, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeInvalidPage           = "INVALID_PAGE"
	ErrCodeAdministratorNotFound = "ADMINISTRATOR_NOT_FOUND"
	ErrCodeVehicleNotFound       = "VEHICLE_NOT_FOUND"
	ErrCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	ErrCodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// NewUnauthorizedError はトークン未提示・無効・期限切れの場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Autenticação necessária.",
		Category: "auth",
		Action:   "Faça login em /administradores/login e envie o token no cabeçalho Authorization.",
	}
}

// NewForbiddenError はトークンは有効だがロールが不足している場合のエラーを生成する。
func NewForbiddenError(role Role) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("O perfil %s não tem permissão para este recurso.", role),
		Category: "auth",
		Action:   "Utilize um administrador com o perfil adequado.",
	}
}

// NewInvalidCredentialsError はログイン失敗時のエラーを生成する。
// メールアドレスの存在有無は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Email ou senha inválidos.",
		Category: "auth",
		Action:   "Verifique as credenciais informadas.",
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Não foi possível interpretar o corpo da requisição.",
		Category: "validation",
		Action:   "Envie um JSON válido.",
	}
}

// NewInvalidPageError はページ番号が数値でない場合のエラーを生成する。
func NewInvalidPageError(page string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  fmt.Sprintf("Página inválida: %s", page),
		Category: "validation",
		Action:   "Informe um número de página inteiro a partir de 1.",
	}
}

// NewAdministratorNotFoundError は管理者未検出エラーを生成する。
func NewAdministratorNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeAdministratorNotFound,
		Message:  fmt.Sprintf("Administrador não encontrado: %d", id),
		Category: "administrator",
		Action:   "Verifique o identificador informado.",
	}
}

// NewVehicleNotFoundError は車両未検出エラーを生成する。
func NewVehicleNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeVehicleNotFound,
		Message:  fmt.Sprintf("Veículo não encontrado: %d", id),
		Category: "vehicle",
		Action:   "Verifique o identificador informado.",
	}
}

// NewDuplicateEmailError は登録済みメールアドレスで管理者を作成しようとした場合のエラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("Já existe um administrador com o email %s.", email),
		Category: "administrator",
		Action:   "Utilize outro email.",
	}
}

// NewRateLimitExceededError はレート制限超過時のエラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "Muitas requisições. Tente novamente mais tarde.",
		Category: "system",
		Action:   "Aguarde o tempo indicado no cabeçalho Retry-After.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Ocorreu um erro interno.",
		Category: "system",
		Action:   "Tente novamente mais tarde.",
	}
}
