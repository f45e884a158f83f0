package arrange

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fewston/stile"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
	"github.com/fewston/stile/pkg/validate"
)

type fakeCaseService struct {
	cases     map[string]Case
	types     []AppointmentType
	locations []Location
	countable int
	clash     bool

	created []Appointment
}

func (f *fakeCaseService) Case(_ context.Context, identity string) (Case, error) {
	c, ok := f.cases[identity]
	if !ok {
		return Case{}, fmt.Errorf("no case %s", identity)
	}
	return c, nil
}

func (f *fakeCaseService) AppointmentTypes(context.Context) ([]AppointmentType, error) {
	return f.types, nil
}

func (f *fakeCaseService) Locations(context.Context, string) ([]Location, error) {
	return f.locations, nil
}

func (f *fakeCaseService) CountableBookings(context.Context, string) (int, error) {
	return f.countable, nil
}

func (f *fakeCaseService) Clashes(context.Context, string, string, string, string) (bool, error) {
	return f.clash, nil
}

func (f *fakeCaseService) Create(_ context.Context, _ string, appt Appointment) (string, error) {
	f.created = append(f.created, appt)
	return fmt.Sprintf("APT-%03d", len(f.created)), nil
}

func newFakeService() *fakeCaseService {
	return &fakeCaseService{
		cases: map[string]Case{
			"X1": {Identity: "X1", Name: "Alex Doe", Managers: []string{"probation.officer"}},
		},
		types: []AppointmentType{
			{Code: "OFFICE", Description: "Office visit", RequiresLocation: true},
			{Code: "PHONE", Description: "Phone call"},
			{Code: "UPW", Description: "Unpaid work", RequiresLocation: true, Countable: true},
		},
		locations: []Location{
			{Code: "HQ", Description: "Head office"},
		},
	}
}

func testURLs() ports.URLResolver {
	return ports.URLFunc(func(identity string, step domain.Step) string {
		return "/arrange/" + identity + "/" + string(step)
	})
}

var officer = domain.SecurityContext{Username: "probation.officer"}

func TestWhenRulesRejectPassedSlot(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	}
	rules := Rules(clock)

	errs := validate.Run(rules, StepWhen, &Appointment{Date: "2026-08-30", Start: "09:00", End: "09:30"})
	require.Len(t, errs, 1)
	assert.Equal(t, "start", errs[0].Field)
	assert.Equal(t, "future", errs[0].Constraint)

	errs = validate.Run(rules, StepWhen, &Appointment{Date: "2026-08-30", Start: "11:00", End: "11:30"})
	assert.Empty(t, errs)
}

func TestArrangeFlow(t *testing.T) {
	ctx := context.Background()

	start := func(t *testing.T, svc CaseService) (*stile.Flow[Appointment], *domain.Session[Appointment]) {
		t.Helper()
		flow, err := New(svc, testURLs())
		require.NoError(t, err)

		sess := &domain.Session[Appointment]{}
		redirect, err := flow.Init(ctx, "X1", officer, sess)
		require.NoError(t, err)
		require.Equal(t, "/arrange/X1/type", redirect.Location)
		return flow, sess
	}

	submit := func(t *testing.T, flow *stile.Flow[Appointment], sess *domain.Session[Appointment], step domain.Step, form url.Values) *stile.Outcome {
		t.Helper()
		out, err := flow.UpdateStep(ctx, "X1", step, sess, form)
		require.NoError(t, err)
		return out
	}

	t.Run("phone appointment skips the location step", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		out := submit(t, flow, sess, StepType, url.Values{"type": {"PHONE"}})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/when", out.Redirect.Location)
		assert.Equal(t, "Phone call", sess.DTO.TypeDescription)
		assert.False(t, sess.DTO.RequiresLocation)

		back, ok := flow.BackURL(sess, StepWhen)
		require.True(t, ok)
		assert.Equal(t, "/arrange/X1/type", back)

		out = submit(t, flow, sess, StepWhen, url.Values{
			"date":  {"2030-06-01"},
			"start": {"10:00"},
			"end":   {"10:30"},
		})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/check", out.Redirect.Location)

		out = submit(t, flow, sess, StepCheck, url.Values{})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/confirm", out.Redirect.Location)
		require.Len(t, svc.created, 1)
		assert.Equal(t, "APT-001", sess.DTO.Reference)

		view, err := flow.ViewStep(ctx, "X1", StepConfirm, sess)
		require.NoError(t, err)
		require.NotNil(t, view.View)
		assert.Equal(t, "APT-001", view.View.Data["reference"])
		assert.True(t, sess.HasCompleted(StepConfirm))
	})

	t.Run("office appointment takes the location branch", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		out := submit(t, flow, sess, StepType, url.Values{"type": {"OFFICE"}})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/location", out.Redirect.Location)

		out = submit(t, flow, sess, StepLocation, url.Values{"location": {"HQ"}})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/when", out.Redirect.Location)
		assert.Equal(t, "Head office", sess.DTO.LocationDescription)

		back, ok := flow.BackURL(sess, StepWhen)
		require.True(t, ok)
		assert.Equal(t, "/arrange/X1/location", back)
	})

	t.Run("changing the type clears a stale location", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		submit(t, flow, sess, StepType, url.Values{"type": {"OFFICE"}})
		submit(t, flow, sess, StepLocation, url.Values{"location": {"HQ"}})
		require.Equal(t, "HQ", sess.DTO.Location)

		out := submit(t, flow, sess, StepType, url.Values{"type": {"PHONE"}})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/when", out.Redirect.Location)
		assert.Empty(t, sess.DTO.Location)
		assert.Empty(t, sess.DTO.LocationDescription)
	})

	t.Run("spent quota routes to the unavailable step", func(t *testing.T) {
		svc := newFakeService()
		svc.countable = countableLimit
		flow, sess := start(t, svc)

		out := submit(t, flow, sess, StepType, url.Values{"type": {"UPW"}})
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/unavailable", out.Redirect.Location)
		assert.True(t, sess.DTO.Unavailable)

		view, err := flow.ViewStep(ctx, "X1", StepUnavailable, sess)
		require.NoError(t, err)
		require.NotNil(t, view.View)
		assert.Equal(t, "Unpaid work", view.View.Data["typeDescription"])
		assert.True(t, sess.HasCompleted(StepUnavailable))
	})

	t.Run("unknown type re-renders with a field error", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		out := submit(t, flow, sess, StepType, url.Values{"type": {"BOGUS"}})
		require.NotNil(t, out.View)
		require.Len(t, out.View.Errors, 1)
		assert.Equal(t, "type", out.View.Errors[0].Field)
		assert.Equal(t, "unknown", out.View.Errors[0].Constraint)
		assert.False(t, sess.HasCompleted(StepType))
	})

	t.Run("clashing slot re-renders the when step", func(t *testing.T) {
		svc := newFakeService()
		svc.clash = true
		flow, sess := start(t, svc)

		submit(t, flow, sess, StepType, url.Values{"type": {"PHONE"}})
		out := submit(t, flow, sess, StepWhen, url.Values{
			"date":  {"2030-06-01"},
			"start": {"10:00"},
			"end":   {"10:30"},
		})
		require.NotNil(t, out.View)
		require.Len(t, out.View.Errors, 1)
		assert.Equal(t, "start", out.View.Errors[0].Field)
		assert.Equal(t, "clash", out.View.Errors[0].Constraint)
	})

	t.Run("invalid times are reported together and echoed back", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		submit(t, flow, sess, StepType, url.Values{"type": {"PHONE"}})
		out := submit(t, flow, sess, StepWhen, url.Values{
			"date":  {"2030-06-01"},
			"start": {"11:00"},
			"end":   {"10:30"},
		})
		require.NotNil(t, out.View)
		fields := domain.FieldNames(out.View.Errors)
		assert.Contains(t, fields, "end")
		assert.Equal(t, "11:00", out.View.Data["start"])
	})

	t.Run("revisiting the confirmation does not book again", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		submit(t, flow, sess, StepType, url.Values{"type": {"PHONE"}})
		submit(t, flow, sess, StepWhen, url.Values{
			"date": {"2030-06-01"}, "start": {"10:00"}, "end": {"10:30"},
		})
		submit(t, flow, sess, StepCheck, url.Values{})

		_, err := flow.ViewStep(ctx, "X1", StepConfirm, sess)
		require.NoError(t, err)
		_, err = flow.ViewStep(ctx, "X1", StepConfirm, sess)
		require.NoError(t, err)
		assert.Len(t, svc.created, 1)
	})

	t.Run("unmanaged user is denied at entry", func(t *testing.T) {
		svc := newFakeService()
		flow, err := New(svc, testURLs())
		require.NoError(t, err)

		sess := &domain.Session[Appointment]{}
		_, err = flow.Init(ctx, "X1", domain.SecurityContext{Username: "somebody.else"}, sess)
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "X1", denied.Identity)
	})

	t.Run("gated step redirects to the first missing prerequisite", func(t *testing.T) {
		svc := newFakeService()
		flow, sess := start(t, svc)

		out, err := flow.ViewStep(ctx, "X1", StepWhen, sess)
		require.NoError(t, err)
		require.NotNil(t, out.Redirect)
		assert.Equal(t, "/arrange/X1/type", out.Redirect.Location)
	})
}
