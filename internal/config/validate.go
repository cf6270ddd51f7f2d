package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

func initValidator() {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		vTrans, _ = uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, vTrans)
		vInst = v
	})
}

// ValidateStruct checks v against its validate tags and returns one error
// listing every failing field.
func ValidateStruct(v any) error {
	initValidator()
	err := vInst.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(vTrans))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Validate reports every out-of-range setting.
func (s *Settings) Validate() error {
	if err := ValidateStruct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
