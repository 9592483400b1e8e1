package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aada-api/internal/bootstrap"
	"github.com/aada-api/internal/config"
	"github.com/aada-api/internal/domain"
	"github.com/aada-api/internal/pkg/id"
)

type seedStudent struct {
	student domain.Student
	plans   []domain.PaymentPlan
}

// seedData builds sample students whose plans fall due around now, so a
// reminder run right after seeding has something to do.
func seedData(now time.Time) []seedStudent {
	today := domain.DateOf(now, time.UTC)
	mk := func(name, email, enrollment string, dueOffsets ...int) seedStudent {
		s := domain.Student{
			StudentID:        id.New(),
			Name:             name,
			Email:            email,
			EnrollmentStatus: enrollment,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		var plans []domain.PaymentPlan
		for _, off := range dueOffsets {
			plans = append(plans, domain.PaymentPlan{
				PlanID:      id.New(),
				StudentID:   s.StudentID,
				AmountCents: 45000,
				DueDate:     today.AddDate(0, 0, off),
				CreatedAt:   now,
			})
		}
		return seedStudent{student: s, plans: plans}
	}
	return []seedStudent{
		mk("Ava Martinez", "ava.martinez@example.com", domain.EnrollmentEnrolled, 3, 33),
		mk("Liam Chen", "liam.chen@example.com", domain.EnrollmentEnrolled, -2),
		mk("Noah Patel", "noah.patel@example.com", domain.EnrollmentEnrolling, 30),
	}
}

func runSeed(ctx context.Context, cfg *config.Config, _ []string) error {
	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	var created int
	for _, s := range seedData(time.Now().UTC()) {
		if _, err := repos.Students.GetByEmail(ctx, s.student.Email); err == nil {
			slog.Info("seed student exists, skipping", "email", s.student.Email)
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := repos.Students.Create(ctx, &s.student); err != nil {
			return fmt.Errorf("seed student %s: %w", s.student.Email, err)
		}
		for i := range s.plans {
			if err := repos.PaymentPlans.Create(ctx, &s.plans[i]); err != nil {
				return fmt.Errorf("seed plan for %s: %w", s.student.Email, err)
			}
		}
		created++
	}
	slog.Info("seed finished", "students_created", created)
	return nil
}
