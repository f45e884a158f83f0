// Package demo provides an in-memory case backend so the server can run
// without an upstream case-management system.
package demo

import (
	"context"
	"fmt"
	"sync"

	"github.com/fewston/stile/internal/flows/arrange"
	"github.com/fewston/stile/internal/flows/record"
)

// Service implements the arrange and record flow ports over in-memory data.
type Service struct {
	mu           sync.Mutex
	cases        map[string]caseRecord
	appointments map[string][]arrange.Appointment
	outcomes     int
}

type caseRecord struct {
	name     string
	managers []string
}

// New returns a demo backend seeded with a handful of cases. Every seeded
// case is managed by the "demo" user.
func New() *Service {
	return &Service{
		cases: map[string]caseRecord{
			"X320741": {name: "Alex Doe", managers: []string{"demo"}},
			"X558214": {name: "Sam Price", managers: []string{"demo"}},
			"X771029": {name: "Jo Hartley", managers: []string{"demo", "senior.officer"}},
		},
		appointments: map[string][]arrange.Appointment{},
	}
}

func (s *Service) Case(_ context.Context, identity string) (arrange.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[identity]
	if !ok {
		return arrange.Case{}, fmt.Errorf("no case %s", identity)
	}
	return arrange.Case{Identity: identity, Name: c.name, Managers: c.managers}, nil
}

func (s *Service) AppointmentTypes(context.Context) ([]arrange.AppointmentType, error) {
	return []arrange.AppointmentType{
		{Code: "APAT", Description: "Office visit", RequiresLocation: true},
		{Code: "CHVS", Description: "Home visit", RequiresLocation: true},
		{Code: "COPT", Description: "Phone call"},
		{Code: "CRSAPT", Description: "Accredited programme session", RequiresLocation: true, Countable: true},
	}, nil
}

func (s *Service) Locations(context.Context, string) ([]arrange.Location, error) {
	return []arrange.Location{
		{Code: "LDN_BCS", Description: "117 Stockwell Road, Brixton"},
		{Code: "LDN_CRO", Description: "45 Tamworth Road, Croydon"},
	}, nil
}

func (s *Service) CountableBookings(_ context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.appointments[identity] {
		if a.Type == "CRSAPT" {
			n++
		}
	}
	return n, nil
}

func (s *Service) Clashes(_ context.Context, identity, date, start, end string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appointments[identity] {
		if a.Date == date && a.Start < end && start < a.End {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) Create(_ context.Context, identity string, appt arrange.Appointment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[identity] = append(s.appointments[identity], appt)
	return fmt.Sprintf("APT-%06d", len(s.appointments[identity])), nil
}

// Outcomes adapts the service to the record flow's port. Both flows share a
// Case method but return flow-local case types, so the record side gets its
// own view.
func (s *Service) Outcomes() record.OutcomeService {
	return outcomeView{s}
}

type outcomeView struct {
	s *Service
}

func (v outcomeView) Case(ctx context.Context, identity string) (record.Case, error) {
	c, err := v.s.Case(ctx, identity)
	if err != nil {
		return record.Case{}, err
	}
	return record.Case{Identity: c.Identity, Name: c.Name, Managers: c.Managers}, nil
}

func (v outcomeView) Record(_ context.Context, _ string, _ record.Outcome) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.outcomes++
	return fmt.Sprintf("OUT-%06d", v.s.outcomes), nil
}
