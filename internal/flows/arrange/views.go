package arrange

import (
	"net/url"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/forms"
)

func views() map[domain.Step]stile.ViewFunc[Appointment] {
	return map[domain.Step]stile.ViewFunc[Appointment]{
		StepType:        typeView,
		StepLocation:    locationView,
		StepWhen:        whenView,
		StepCheck:       checkView,
		StepConfirm:     confirmView,
		StepUnavailable: unavailableView,
	}
}

func typeView(sess *domain.Session[Appointment], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"type":         forms.Echo(form, "type", sess.DTO.Type),
	}, nil
}

func locationView(sess *domain.Session[Appointment], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName":    sess.DTO.OffenderName,
		"typeDescription": sess.DTO.TypeDescription,
		"location":        forms.Echo(form, "location", sess.DTO.Location),
	}, nil
}

func whenView(sess *domain.Session[Appointment], form url.Values, _ []domain.FieldError) (map[string]any, error) {
	dto := sess.DTO
	return map[string]any{
		"offenderName": dto.OffenderName,
		"date":         forms.Echo(form, "date", dto.Date),
		"start":        forms.Echo(form, "start", dto.Start),
		"end":          forms.Echo(form, "end", dto.End),
	}, nil
}

// checkView summarises the accumulated answers for a final review before the
// booking is made.
func checkView(sess *domain.Session[Appointment], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
	dto := sess.DTO
	return map[string]any{
		"offenderName":        dto.OffenderName,
		"typeDescription":     dto.TypeDescription,
		"locationDescription": dto.LocationDescription,
		"date":                dto.Date,
		"start":               dto.Start,
		"end":                 dto.End,
	}, nil
}

func confirmView(sess *domain.Session[Appointment], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName": sess.DTO.OffenderName,
		"reference":    sess.DTO.Reference,
	}, nil
}

func unavailableView(sess *domain.Session[Appointment], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
	return map[string]any{
		"offenderName":    sess.DTO.OffenderName,
		"typeDescription": sess.DTO.TypeDescription,
	}, nil
}
