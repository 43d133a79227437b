package exam

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jounabs52/datesheet/core"
)

var (
	examTypeTag  = "examtype"
	examTypeText = "must be one of term, unit, final or assessment"

	examStatusTag  = "examstatus"
	examStatusText = "must be one of scheduled, ongoing, completed or cancelled"

	uniqueSubjectsTag  = "uniqsubjects"
	uniqueSubjectsText = "each subject can only be listed once"
)

// InitValidators registers the exam validators. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(examTypeTag, examTypeValidation)
	core.RegisterCustomTranslation(validate, translator, examTypeTag, examTypeText)

	_ = validate.RegisterValidation(examStatusTag, examStatusValidation)
	core.RegisterCustomTranslation(validate, translator, examStatusTag, examStatusText)

	validate.RegisterStructValidation(directScheduleStructValidation, DirectSchedule{})
	core.RegisterCustomTranslation(validate, translator, uniqueSubjectsTag, uniqueSubjectsText)
}

func examTypeValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), Types)
}

func examStatusValidation(fl validator.FieldLevel) bool {
	return isOneOf(fl.Field().String(), Statuses)
}

// directScheduleStructValidation allows one slot per (exam, subject).
func directScheduleStructValidation(sl validator.StructLevel) {
	ds := sl.Current().Interface().(DirectSchedule)
	seen := make(map[string]struct{}, len(ds.Subjects))
	for _, sm := range ds.Subjects {
		if sm.SubjectID == "" {
			continue
		}
		if _, ok := seen[sm.SubjectID]; ok {
			sl.ReportError(ds.Subjects, "subjects", "Subjects", uniqueSubjectsTag, "")
			return
		}
		seen[sm.SubjectID] = struct{}{}
	}
}
