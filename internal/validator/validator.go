package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/qs3c/dict_go_server/internal/model"
)

// 昵称只允许小写字母与空格
var nickPattern = regexp.MustCompile(`^[a-z ]+$`)

// NickMessage 昵称格式错误时展示给用户的提示
const NickMessage = "昵称只能由小写英文字母和空格组成，不能包含其他字符"

// ValidationError 字段 -> 提示信息
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("field '%s': %s", field, e.Errors[field]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field 返回单个字段的提示
func (e *ValidationError) Field(name string) string {
	return e.Errors[name]
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// 使用 json 标签作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomRules(v)

	return &Validator{validate: v}
}

// Validate 校验结构体，失败时返回 *ValidationError
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fe.Field()] = messageFor(fe)
	}
	return &ValidationError{Errors: out}
}

// ValidateNick 单独校验昵称
func (v *Validator) ValidateNick(nick string) error {
	if !ValidNick(nick) {
		return &ValidationError{Errors: map[string]string{"nick": NickMessage}}
	}
	return nil
}

func ValidNick(nick string) bool {
	return len(nick) <= model.MaxNickLength && nickPattern.MatchString(nick)
}

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register custom validation tag '%s': %v", tag, err))
		}
	}

	mustRegister("nick", func(fl validator.FieldLevel) bool {
		return nickPattern.MatchString(fl.Field().String())
	})
	mustRegister("gender", func(fl validator.FieldLevel) bool {
		return model.Gender(fl.Field().String()).Valid()
	})
	mustRegister("message_preference", func(fl validator.FieldLevel) bool {
		return model.MessagePreference(fl.Field().String()).Valid()
	})
	mustRegister("entries_per_page", func(fl validator.FieldLevel) bool {
		return model.ValidEntriesPerPage(int(fl.Field().Int()))
	})
	mustRegister("topics_per_page", func(fl validator.FieldLevel) bool {
		return model.ValidTopicsPerPage(int(fl.Field().Int()))
	})
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填"
	case "nick":
		return NickMessage
	case "email":
		return "邮箱格式不正确"
	case "max":
		return fmt.Sprintf("长度不能超过 %s", fe.Param())
	case "min":
		return fmt.Sprintf("长度不能少于 %s", fe.Param())
	case "gender", "message_preference", "entries_per_page", "topics_per_page":
		return "不是可选的值"
	default:
		return fmt.Sprintf("校验失败 (%s)", fe.Tag())
	}
}
