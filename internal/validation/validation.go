// Package validation はリクエストDTOのフィールド検証を提供する。
//
// 検証ルールはgo-playground/validatorの構造体タグで宣言し、
// 違反したルールを構造体のフィールド順に固定メッセージへ変換する。
// ルールは互いに独立しており、途中で打ち切らずに全ルールを評価する。
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/veiculos/internal/model"
)

// 検証メッセージ。APIクライアントはこの文字列をそのまま表示する。
const (
	MsgEmailEmpty    = "O email não pode ser vazio"
	MsgPasswordEmpty = "A senha não pode ser vazia"
	MsgRoleEmpty     = "O perfil não pode ser vazio"
	MsgRoleInvalid   = "O perfil deve ser Admin ou Editor"
	MsgNameEmpty     = "O nome não pode ser vazio"
	MsgBrandEmpty    = "O marca não pode ser vazia"
	MsgYearTooOld    = "Veículo muito antigo. Valido apenas superior ha 1950"

	// MsgPasswordTooLong はbcryptが扱えない72バイト超のパスワードに対するメッセージ。
	MsgPasswordTooLong = "A senha não pode ter mais de 72 bytes"
)

// Result は検証結果を表す。Messagesが空の場合は受理を意味する。
// サービス層からエラーとして返せるようerrorインターフェースを実装する。
type Result struct {
	Messages []string `json:"mensagens"`
}

// OK は違反が1件もない場合にtrueを返す。
func (r *Result) OK() bool {
	return r == nil || len(r.Messages) == 0
}

// Error はerrorインターフェースを実装する。
func (r *Result) Error() string {
	return "validation failed: " + strings.Join(r.Messages, "; ")
}

// administratorRules は管理者登録の検証ルール。フィールド順がメッセージ順になる。
type administratorRules struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required,role"`
}

// loginRules はログイン入力の検証ルール。
type loginRules struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// vehicleRules は車両の検証ルール。
type vehicleRules struct {
	Name  string `validate:"required"`
	Brand string `validate:"required"`
	Year  int    `validate:"gt=1950"`
}

// messages は「フィールド名.タグ」から検証メッセージへの対応表。
var messages = map[string]string{
	"Email.required":    MsgEmailEmpty,
	"Password.required": MsgPasswordEmpty,
	"Role.required":     MsgRoleEmpty,
	"Role.role":         MsgRoleInvalid,
	"Name.required":     MsgNameEmpty,
	"Brand.required":    MsgBrandEmpty,
	"Year.gt":           MsgYearTooOld,
}

var validate = newValidator()

// newValidator はカスタムルール（role）を登録したvalidatorを生成する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseRole(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateAdministrator は管理者登録入力を検証する。
// 順序: email → senha → perfil
func ValidateAdministrator(in model.AdministratorInput) *Result {
	rules := administratorRules{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}
	if in.Role != nil {
		rules.Role = strings.TrimSpace(*in.Role)
	}
	return run(rules)
}

// ValidateLogin はログイン入力を検証する。
func ValidateLogin(in model.LoginInput) *Result {
	return run(loginRules{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
}

// ValidateVehicle は車両入力を検証する。
// 順序: nome → marca → ano
func ValidateVehicle(in model.VehicleInput) *Result {
	return run(vehicleRules{
		Name:  strings.TrimSpace(in.Name),
		Brand: strings.TrimSpace(in.Brand),
		Year:  in.Year,
	})
}

// run は構造体を検証し、違反をフィールド順のメッセージ列に変換する。
func run(rules any) *Result {
	result := &Result{Messages: []string{}}

	err := validate.Struct(rules)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return result
	}

	for _, fe := range verrs {
		if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
			result.Messages = append(result.Messages, msg)
		}
	}
	return result
}
