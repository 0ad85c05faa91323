package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("console: not found")
	ErrConflict     = errors.New("console: already exists")
	ErrInvalidInput = errors.New("console: invalid input")
)

// Department is a citizen-services department offered at kiosks. Accounts
// scoped to a department hold a weak reference to its id.
type Department struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	Color        string    `json:"color"`
	Description  string    `json:"description"`
	ServiceHours string    `json:"service_hours"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Settings is the singleton system configuration row. Defaults are created
// on first read.
type Settings struct {
	SessionTimeout  int      `json:"session_timeout"`
	DefaultLanguage string   `json:"default_language"`
	AudioGuidance   bool     `json:"audio_guidance"`
	LoggingLevel    string   `json:"logging_level"`
	UITheme         string   `json:"ui_theme"`
	PrinterModel    string   `json:"printer_model"`
	PrinterBaudRate int      `json:"printer_baud_rate"`
	PaymentMode     string   `json:"payment_mode"`
	TxnFee          float64  `json:"txn_fee"`
	EnabledMethods  []string `json:"enabled_methods"`
}

// DefaultSettings mirrors the values a fresh deployment starts with.
func DefaultSettings() Settings {
	return Settings{
		SessionTimeout:  5,
		DefaultLanguage: "hi",
		AudioGuidance:   true,
		LoggingLevel:    "info",
		UITheme:         "light",
		PrinterModel:    "Epson TM-T88VI",
		PrinterBaudRate: 9600,
		PaymentMode:     "test",
		TxnFee:          2.5,
		EnabledMethods:  []string{"upi", "card", "netbanking"},
	}
}

// DepartmentUpdate lists mutable department fields; nil leaves a field alone.
type DepartmentUpdate struct {
	Name         *string
	Icon         *string
	Color        *string
	Description  *string
	ServiceHours *string
	Enabled      *bool
}

// Store persists departments and the settings singleton.
type Store interface {
	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)
	UpdateDepartment(ctx context.Context, id string, upd DepartmentUpdate) (*Department, error)
	DeleteDepartment(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

// Service validates console resource mutations before handing them to the
// store.
type Service struct {
	store Store
	newID func() string
	now   func() time.Time
}

// NewService constructs a Service. newID and now are injectable for tests.
func NewService(store Store, newID func() string) (*Service, error) {
	if store == nil {
		return nil, errors.New("console store is required")
	}
	if newID == nil {
		return nil, errors.New("id generator is required")
	}
	return &Service{store: store, newID: newID, now: time.Now}, nil
}

// CreateDepartment registers a new department with defaults matching the
// kiosk frontend's expectations.
func (s *Service) CreateDepartment(ctx context.Context, d Department) (*Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
	}
	if d.Icon == "" {
		d.Icon = "🏢"
	}
	if d.Color == "" {
		d.Color = "#3b82f6"
	}
	if d.ServiceHours == "" {
		d.ServiceHours = "9 AM – 5 PM"
	}
	now := s.now().UTC()
	dep := d
	dep.ID = s.newID()
	dep.Enabled = true
	dep.CreatedAt = now
	dep.UpdatedAt = now
	if err := s.store.CreateDepartment(ctx, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

func (s *Service) GetDepartment(ctx context.Context, id string) (*Department, error) {
	return s.store.GetDepartment(ctx, strings.TrimSpace(id))
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.store.ListDepartments(ctx)
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, upd DepartmentUpdate) (*Department, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: department id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	return s.store.UpdateDepartment(ctx, id, upd)
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: department id is required", ErrInvalidInput)
	}
	return s.store.DeleteDepartment(ctx, id)
}

// GetSettings returns the settings singleton, creating defaults on first
// read.
func (s *Service) GetSettings(ctx context.Context) (*Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	defaults := DefaultSettings()
	if err := s.store.SaveSettings(ctx, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// UpdateSettings replaces the settings singleton after basic validation.
func (s *Service) UpdateSettings(ctx context.Context, in Settings) (*Settings, error) {
	switch in.LoggingLevel {
	case "error", "warn", "info", "debug":
	default:
		return nil, fmt.Errorf("%w: unsupported logging level %q", ErrInvalidInput, in.LoggingLevel)
	}
	switch in.PaymentMode {
	case "test", "live":
	default:
		return nil, fmt.Errorf("%w: unsupported payment mode %q", ErrInvalidInput, in.PaymentMode)
	}
	if in.SessionTimeout <= 0 {
		return nil, fmt.Errorf("%w: session timeout must be positive", ErrInvalidInput)
	}
	if err := s.store.SaveSettings(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}
