package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/sla"
)

// PolicyFile is the YAML document holding the business calendar,
// SLA thresholds and the issue type catalog.
type PolicyFile struct {
	Timezone   string                                 `yaml:"timezone"`
	Calendar   CalendarPolicy                         `yaml:"calendar"`
	Thresholds map[domain.IssuePriority]sla.Threshold `yaml:"thresholds" validate:"required,dive,keys,oneof=low medium high critical urgent,endkeys"`
	Catalog    []domain.IssueType                     `yaml:"catalog" validate:"dive"`
}

// CalendarPolicy describes the weekly business window.
type CalendarPolicy struct {
	OpenHour  int      `yaml:"open_hour" validate:"gte=0,lte=23"`
	CloseHour int      `yaml:"close_hour" validate:"gtfield=OpenHour,lte=24"`
	Workdays  []string `yaml:"workdays" validate:"required,dive,oneof=sunday monday tuesday wednesday thursday friday saturday"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DefaultPolicyFile is used when no policy file is present.
func DefaultPolicyFile() *PolicyFile {
	thresholds := make(map[domain.IssuePriority]sla.Threshold, len(sla.DefaultThresholds))
	for k, v := range sla.DefaultThresholds {
		thresholds[k] = v
	}
	return &PolicyFile{
		Timezone: "Local",
		Calendar: CalendarPolicy{
			OpenHour:  9,
			CloseHour: 17,
			Workdays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
		},
		Thresholds: thresholds,
		Catalog: []domain.IssueType{
			{ID: "payroll", Name: "Payroll", SubTypes: []string{"salary_delay", "deduction", "reimbursement"}},
			{ID: "facilities", Name: "Facilities", SubTypes: []string{"seating", "transport", "canteen"}},
			{ID: "it", Name: "IT Support", SubTypes: []string{"hardware", "access", "software"}},
			{ID: "hr", Name: "HR Policy", SubTypes: []string{"leave", "attendance", "conduct"}},
			{ID: "other", Name: "Other"},
		},
	}
}

// LoadPolicy reads and validates the policy file at path. A missing file
// yields DefaultPolicyFile.
func LoadPolicy(path string) (*PolicyFile, error) {
	if path == "" {
		return DefaultPolicyFile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPolicyFile(), nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a policy document.
func ParsePolicy(data []byte) (*PolicyFile, error) {
	policy := DefaultPolicyFile()
	policy.Catalog = nil
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	if err := validator.New().Struct(policy); err != nil {
		return nil, fmt.Errorf("invalid policy file: %w", err)
	}
	if _, err := policy.Location(); err != nil {
		return nil, err
	}
	return policy, nil
}

// Location resolves the configured timezone.
func (p *PolicyFile) Location() (*time.Location, error) {
	if p.Timezone == "" || strings.EqualFold(p.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// Evaluator builds the SLA evaluator described by the policy.
func (p *PolicyFile) Evaluator() (*sla.Evaluator, error) {
	loc, err := p.Location()
	if err != nil {
		return nil, err
	}
	workdays := make([]time.Weekday, 0, len(p.Calendar.Workdays))
	for _, name := range p.Calendar.Workdays {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown workday %q", name)
		}
		workdays = append(workdays, day)
	}
	calendar := sla.NewCalendar(loc, p.Calendar.OpenHour, p.Calendar.CloseHour, workdays)
	return sla.NewEvaluator(calendar, sla.NewPolicy(p.Thresholds)), nil
}

// TypeCatalog builds the static classification catalog.
func (p *PolicyFile) TypeCatalog() *domain.TypeCatalog {
	return domain.NewTypeCatalog(p.Catalog)
}
