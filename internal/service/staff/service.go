package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/cafepos/internal/domain/models"
)

// ErrInvalidPIN is returned when a PIN does not match the stored hash.
var ErrInvalidPIN = errors.New("invalid pin")

// Repository persists staff records.
type Repository interface {
	CreateStaff(ctx context.Context, member models.Staff) (models.Staff, error)
	GetStaff(ctx context.Context, id string) (models.Staff, error)
	ListStaff(ctx context.Context) ([]models.Staff, error)
}

// Service manages the staff registry and PIN checks.
type Service struct {
	repo   Repository
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the staff service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cost:   bcrypt.DefaultCost,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a staff member, storing only the bcrypt hash of the PIN.
func (s *Service) Create(ctx context.Context, req models.NewStaffRequest) (models.Staff, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), s.cost)
	if err != nil {
		return models.Staff{}, fmt.Errorf("hash pin: %w", err)
	}

	member, err := s.repo.CreateStaff(ctx, models.Staff{
		Name:       strings.TrimSpace(req.Name),
		Role:       req.Role,
		PINHash:    string(hash),
		HourlyRate: req.HourlyRate,
		Active:     true,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return models.Staff{}, fmt.Errorf("create staff: %w", err)
	}

	s.logger.Info("staff registered", zap.String("staff_id", member.ID), zap.String("role", member.Role))
	return member, nil
}

// Get loads one staff member.
func (s *Service) Get(ctx context.Context, id string) (models.Staff, error) {
	return s.repo.GetStaff(ctx, id)
}

// List returns every active staff member.
func (s *Service) List(ctx context.Context) ([]models.Staff, error) {
	all, err := s.repo.ListStaff(ctx)
	if err != nil {
		return nil, err
	}

	active := all[:0]
	for _, member := range all {
		if member.Active {
			active = append(active, member)
		}
	}
	return active, nil
}

// VerifyPIN checks pin against the stored hash of an active staff member.
func (s *Service) VerifyPIN(ctx context.Context, staffID, pin string) (models.Staff, error) {
	member, err := s.repo.GetStaff(ctx, staffID)
	if err != nil {
		return models.Staff{}, err
	}
	if !member.Active {
		return models.Staff{}, ErrInvalidPIN
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PINHash), []byte(pin)); err != nil {
		s.logger.Warn("pin verification failed", zap.String("staff_id", staffID))
		return models.Staff{}, ErrInvalidPIN
	}
	return member, nil
}
