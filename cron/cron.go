package cron

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// window is the half-width of the slot around now+lead that gets reminded.
const window = 5 * time.Minute

type ReminderStore interface {
	ReminderTargets(ctx context.Context, from, to time.Time) ([]models.ReminderTarget, error)
}

type Mailer interface {
	Send(to, subject, body string) error
}

// Marker claims a key once across runs, and across instances when shared.
type Marker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Reminder emails patients about confirmed appointments starting in about lead.
type Reminder struct {
	store  ReminderStore
	mailer Mailer
	marker Marker
	lead   time.Duration
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

type ReminderOptions struct {
	Lead     time.Duration
	Location *time.Location
	Now      func() time.Time
}

func NewReminder(store ReminderStore, mailer Mailer, marker Marker, opts ReminderOptions, log zerolog.Logger) *Reminder {
	if marker == nil {
		marker = NewLocalMarker()
	}
	if opts.Lead <= 0 {
		opts.Lead = time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reminder{
		store:  store,
		mailer: mailer,
		marker: marker,
		lead:   opts.Lead,
		loc:    opts.Location,
		now:    opts.Now,
		log:    log,
	}
}

// Run sends every due reminder once and returns how many were sent.
// A failed send is logged and does not stop the rest.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	now := r.now()
	from, to := now.Add(r.lead-window), now.Add(r.lead+window)

	targets, err := r.store.ReminderTargets(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("load reminder targets: %w", err)
	}

	sent := 0
	for _, t := range targets {
		key := "reminder:appointment:" + strconv.FormatUint(uint64(t.AppointmentID), 10)
		first, err := r.marker.MarkOnce(ctx, key, r.lead+2*window)
		if err != nil {
			r.log.Error().Err(err).Uint("appointment_id", t.AppointmentID).Msg("reminder marker failed")
			continue
		}
		if !first {
			continue
		}
		subject, body := reminderEmail(t, r.loc)
		if err := r.mailer.Send(t.PatientEmail, subject, body); err != nil {
			r.log.Error().Err(err).Uint("appointment_id", t.AppointmentID).Msg("failed to send reminder")
			continue
		}
		sent++
		r.log.Info().Uint("appointment_id", t.AppointmentID).Str("to", t.PatientEmail).Msg("sent appointment reminder")
	}
	return sent, nil
}

func reminderEmail(t models.ReminderTarget, loc *time.Location) (string, string) {
	subject := fmt.Sprintf("Reminder: Upcoming Appointment with Dr. %s", t.DoctorName)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Specialization:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to reschedule or cancel, contact the clinic as soon as possible.</p>
		<p>Best regards,</p>
		<p>Smart Clinic</p>
	`, t.PatientName, t.DoctorName, t.Specialization,
		t.Date.In(loc).Format("2006-01-02 15:04 MST"), t.Status)
	return subject, body
}

// Start schedules r on schedule (standard five-field cron syntax) and starts
// the scheduler. Stop the returned scheduler on shutdown.
func Start(schedule string, r *Reminder, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(r.loc))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			log.Error().Err(err).Msg("reminder run failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", schedule, err)
	}
	c.Start()
	log.Info().Str("schedule", schedule).Dur("lead", r.lead).Msg("appointment reminder scheduler started")
	return c, nil
}

// LocalMarker is a process-local Marker for single-instance deployments.
type LocalMarker struct {
	mu   sync.Mutex
	now  func() time.Time
	seen map[string]time.Time
}

func NewLocalMarker() *LocalMarker {
	return &LocalMarker{now: time.Now, seen: make(map[string]time.Time)}
}

func (m *LocalMarker) MarkOnce(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.seen {
		if !now.Before(exp) {
			delete(m.seen, k)
		}
	}
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = now.Add(ttl)
	return true, nil
}
