package profiles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
)

var ErrInvalidRequest = errors.New("invalid request")

// Service содержит бизнес-логику профиля (один профиль на пользователя)
type Service struct {
	profiles storage.ProfilesStorage
	calc     *nutrition.Calculator
}

func NewService(profiles storage.ProfilesStorage, calc *nutrition.Calculator) *Service {
	return &Service{profiles: profiles, calc: calc}
}

// Get возвращает профиль пользователя, создавая его с дефолтами при первом обращении.
func (s *Service) Get(ctx context.Context, userID string) (*ProfileDTO, error) {
	profile, err := s.ensureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(*profile)
	return &dto, nil
}

// Update применяет частичное обновление. Невалидный запрос не меняет профиль.
func (s *Service) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	profile, err := s.ensureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.apply(profile)
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	dto := s.toDTO(*profile)
	return &dto, nil
}

func (s *Service) ensureProfile(ctx context.Context, userID string) (*storage.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	created := storage.NewDefaultProfile(userID)
	if err := s.profiles.UpsertProfile(ctx, &created); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	log.Printf("INFO profiles: created default profile for user %s", userID)
	return &created, nil
}

func (s *Service) toDTO(p storage.UserProfile) ProfileDTO {
	dto := ProfileDTO{
		WeightKg:           p.WeightKg,
		HeightCm:           p.HeightCm,
		Age:                p.Age,
		Gender:             p.Gender,
		ActivityLevel:      p.ActivityLevel,
		TargetWeeklyLossKg: p.TargetWeeklyLossKg,
		WeekendMode:        p.WeekendMode,
		WeekendStartDay:    p.WeekendStartDay,
		WeekendEndDay:      p.WeekendEndDay,
		Region:             p.Region,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}

	bmr, err := s.calc.BMR(p)
	if err != nil {
		var incomplete *nutrition.IncompleteProfileError
		if errors.As(err, &incomplete) {
			dto.Missing = incomplete.Missing
		}
		return dto
	}
	tdee, err := s.calc.TDEE(p)
	if err != nil {
		return dto
	}

	b := int(math.Round(bmr))
	t := int(math.Round(tdee))
	dto.Complete = true
	dto.BMR = &b
	dto.TDEE = &t
	return dto
}
