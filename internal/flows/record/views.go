package record

import (
	"net/url"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/forms"
)

func views() map[domain.Step]stile.ViewFunc[Outcome] {
	return map[domain.Step]stile.ViewFunc[Outcome]{
		StepAttendance: attendanceView,
		StepCompliance: complianceView,
		StepNotes:      notesView,
		StepCheck:      checkView,
		StepConfirm:    confirmView,
	}
}

func attendanceView(sess *domain.Session[Outcome], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"attended":     forms.Echo(form, "attended", sess.DTO.Attended),
	}, nil
}

func complianceView(sess *domain.Session[Outcome], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"complied":     forms.Echo(form, "complied", sess.DTO.Complied),
	}, nil
}

func notesView(sess *domain.Session[Outcome], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"notes":        forms.Echo(form, "notes", sess.DTO.Notes),
		"notesLimit":   notesLimit,
	}, nil
}

func checkView(sess *domain.Session[Outcome], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
	dto := sess.DTO
	return map[string]any{
		"offenderName": dto.OffenderName,
		"attended":     dto.Attended,
		"complied":     dto.Complied,
		"notes":        dto.Notes,
	}, nil
}

func confirmView(sess *domain.Session[Outcome], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"reference":    sess.DTO.Reference,
	}, nil
}
