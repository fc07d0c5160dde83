package main

import (
	"fmt"
	"strings"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/spf13/cobra"
)

// profileFlags содержит входные данные калькулятора из командной строки
type profileFlags struct {
	weightKg     float64
	heightCm     float64
	age          int
	gender       string
	activity     string
	lossKg       float64
	weekendMode  string
	weekendStart int
	weekendEnd   int
}

func (f *profileFlags) register(cmd *cobra.Command) {
	defaults := storage.NewDefaultProfile("")

	cmd.Flags().Float64Var(&f.weightKg, "weight", 0, "Body weight in kg")
	cmd.Flags().Float64Var(&f.heightCm, "height", 0, "Height in cm")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.gender, "gender", "", "male|female|other")
	cmd.Flags().StringVar(&f.activity, "activity", defaults.ActivityLevel, "sedentary|light|moderate|active|very_active")
	cmd.Flags().Float64Var(&f.lossKg, "loss", defaults.TargetWeeklyLossKg, "Target weekly loss in kg")
	cmd.Flags().StringVar(&f.weekendMode, "weekend-mode", defaults.WeekendMode, "active|inactive")
	cmd.Flags().IntVar(&f.weekendStart, "weekend-start", defaults.WeekendStartDay, "Weekend start weekday (0=Sunday..6=Saturday)")
	cmd.Flags().IntVar(&f.weekendEnd, "weekend-end", defaults.WeekendEndDay, "Weekend end weekday (0=Sunday..6=Saturday)")
}

// profile builds a storage.UserProfile; zero physiological values stay unset
// so the calculator reports them as missing.
func (f *profileFlags) profile() (storage.UserProfile, error) {
	p := storage.NewDefaultProfile("cli")
	if f.weightKg > 0 {
		w := f.weightKg
		p.WeightKg = &w
	}
	if f.heightCm > 0 {
		h := f.heightCm
		p.HeightCm = &h
	}
	if f.age > 0 {
		a := f.age
		p.Age = &a
	}
	if g := strings.ToLower(strings.TrimSpace(f.gender)); g != "" {
		p.Gender = &g
	}
	p.ActivityLevel = strings.ToLower(strings.TrimSpace(f.activity))

	if f.lossKg < 0 || f.lossKg > 2 {
		return p, fmt.Errorf("--loss must be between 0 and 2 kg, got %g", f.lossKg)
	}
	p.TargetWeeklyLossKg = f.lossKg

	switch f.weekendMode {
	case storage.WeekendModeActive, storage.WeekendModeInactive:
		p.WeekendMode = f.weekendMode
	default:
		return p, fmt.Errorf("--weekend-mode must be active or inactive, got %q", f.weekendMode)
	}
	if f.weekendStart < 0 || f.weekendStart > 6 || f.weekendEnd < 0 || f.weekendEnd > 6 {
		return p, fmt.Errorf("weekend days must be in 0..6")
	}
	p.WeekendStartDay = f.weekendStart
	p.WeekendEndDay = f.weekendEnd
	return p, nil
}
