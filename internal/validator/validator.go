package validator

import (
	"errors"
	"order_lifecycle/internal/model"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Номер телефона Узбекистана: 998 и девять цифр, плюс необязателен.
var phoneUz = regexp.MustCompile(`^\+?998\d{9}$`)

// getInstance возвращает синглтон-экземпляр валидатора.
func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// В ошибках поля называются так же, как в JSON.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
			return model.OrderStatus(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("phone_uz", func(fl validator.FieldLevel) bool {
			return phoneUz.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct выполняет валидацию по тегам структуры.
func ValidateStruct(s interface{}) error {
	return getInstance().Struct(s)
}

// Fields раскладывает ошибку валидации по полям: путь поля -> нарушенное правило.
// Для ошибок другого типа возвращает nil.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		fields[path] = fe.Tag()
	}
	return fields
}
