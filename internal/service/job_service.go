package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"parkhub/internal/repository"
)

// JobService holds the scheduled work: the daily booking reminder and the
// monthly activity report. Both are safe to re-run; they only read state and
// send notifications.
type JobService struct {
	users     *repository.UserRepository
	summaries *repository.SummaryRepository
	notifier  *Notifier
}

func NewJobService(users *repository.UserRepository, summaries *repository.SummaryRepository, notifier *Notifier) *JobService {
	return &JobService{users: users, summaries: summaries, notifier: notifier}
}

// SendDailyReminders nudges every user who has not booked a spot today.
// Users with a phone number also get an SMS.
func (s *JobService) SendDailyReminders(ctx context.Context) error {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	users, err := s.summaries.UsersWithoutBookingSince(ctx, midnight)
	if err != nil {
		return fmt.Errorf("daily reminders: %w", err)
	}
	log.Info().Int("users", len(users)).Msg("sending daily reminders")

	for _, user := range users {
		subject := "Don't forget to book your parking spot"
		body := fmt.Sprintf("Hello %s,\n\nYou have not booked a parking spot today. "+
			"Reserve one now before your favorite lot fills up.\n", user.Username)
		if err := s.notifier.SendEmail(user.Email, user.Username, subject, body, ""); err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("daily reminder email failed")
		}
		if user.Phone != "" {
			sms := fmt.Sprintf("ParkHub: hi %s, you have no parking booking today. Reserve a spot anytime from the app.", user.Username)
			if err := s.notifier.SendSMS(user.Phone, sms); err != nil {
				log.Error().Err(err).Str("phone", user.Phone).Msg("daily reminder sms failed")
			}
		}
	}
	return nil
}

// SendMonthlyReports mails every user their booking count and spend for the
// previous calendar month.
func (s *JobService) SendMonthlyReports(ctx context.Context) error {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	users, err := s.users.ListRegular(ctx)
	if err != nil {
		return fmt.Errorf("monthly reports: %w", err)
	}
	log.Info().Int("users", len(users)).Str("month", prevStart.Format("Jan 2006")).Msg("sending monthly reports")

	for _, user := range users {
		count, spent, err := s.summaries.MonthlyActivity(ctx, user.ID, prevStart, monthStart)
		if err != nil {
			log.Error().Err(err).Int("user_id", user.ID).Msg("monthly activity lookup failed")
			continue
		}
		month := prevStart.Format("January 2006")
		subject := fmt.Sprintf("Your parking report for %s", month)
		plain := fmt.Sprintf("Hello %s,\n\nIn %s you made %d bookings and spent %s.\n",
			user.Username, month, count, spent.StringFixed(2))
		html := fmt.Sprintf("<h1>Monthly report for %s</h1><p>Total bookings: %d</p><p>Total spent: %s</p>",
			user.Username, count, spent.StringFixed(2))
		if err := s.notifier.SendEmail(user.Email, user.Username, subject, plain, html); err != nil {
			log.Error().Err(err).Str("email", user.Email).Msg("monthly report email failed")
		}
	}
	return nil
}
