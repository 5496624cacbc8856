package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "classroom/backend/pkg/errors"
)

// validate 业务层结构体校验器，与 gin 的 binding 校验分开：
// binding 只管请求形状，这里校验合并后的领域规则（评分刻度、容量等）
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// classRules 班级字段的领域规则
type classRules struct {
	Name         string  `json:"name"          validate:"required,max=100"`
	SubjectName  string  `json:"subject_name"  validate:"required,max=100"`
	MaxStudents  int     `json:"max_students"  validate:"min=1,max=1000"`
	MinimumGrade float64 `json:"minimum_grade" validate:"gtefield=ScaleMin,ltefield=MaximumGrade"`
	MaximumGrade float64 `json:"maximum_grade" validate:"ltefield=ScaleMax"`
	ScaleMin     float64 `json:"-"`
	ScaleMax     float64 `json:"-"`
}

// assessmentRules 测评字段的领域规则
type assessmentRules struct {
	Title    string  `json:"title"     validate:"required,max=200"`
	Type     string  `json:"type"      validate:"oneof=exam assignment quiz activity"`
	MaxScore float64 `json:"max_score" validate:"gt=0"`
}

// checkStruct 执行结构体校验，并把 validator 的错误转换为字段级 ValidationError
func checkStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]pkgerrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, pkgerrors.FieldError{
			Field:   fe.Field(),
			Message: ruleMessage(fe),
		})
	}
	return pkgerrors.NewValidationError(fields...)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "max":
		return fmt.Sprintf("不能超过 %s", fe.Param())
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "gt":
		return fmt.Sprintf("必须大于 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("必须为 %s 之一", fe.Param())
	case "gtefield":
		if fe.Param() == "ScaleMin" {
			return "低于评分刻度下限"
		}
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "ltefield":
		switch fe.Param() {
		case "ScaleMax":
			return "超出评分刻度上限"
		case "MaximumGrade":
			return "不能大于 maximum_grade"
		}
		return fmt.Sprintf("不能大于 %s", fe.Param())
	default:
		return "格式无效"
	}
}
