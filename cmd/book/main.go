package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nailbook/cmd/internal/booking"
	"nailbook/cmd/internal/client"
	"nailbook/cmd/internal/config"
	"nailbook/cmd/internal/domain/sqlite"

	"github.com/labstack/gommon/log"
)

const usage = `usage: book [-config file] <command> [flags]

commands:
  services                       list the service catalogue
  days                           list bookable days
  slots   -service ID -day DAY   list free start times
  book    -service ID -day DAY -time HH:MM -name N -email E -phone P [-notes T]
  list                           list appointments
  cancel  -id ID                 cancel an appointment
  block   -day DAY [-reason R]   block a day (admin)
  unblock -day DAY               unblock a day (admin)
  watch                          print availability on every refresh until interrupted
`

type app struct {
	cfg     *config.Config
	rules   booking.Rules
	backend client.Backend
	session *client.BookingSession
}

func main() {
	global := flag.NewFlagSet("book", flag.ExitOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "nailbook.yaml", "path to the YAML config file")
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	log.SetLevel(log.WARN)

	rules, err := cfg.Rules()
	if err != nil {
		log.Fatal("invalid booking rules: ", err)
	}
	backend, err := client.NewBackend(cfg.Client, rules, client.StaticToken(cfg.Client.Token))
	if err != nil {
		log.Fatal("failed to create backend: ", err)
	}

	a := &app{
		cfg:     cfg,
		rules:   rules,
		backend: backend,
		session: client.NewBookingSession(backend, rules, client.WithRefresh(cfg.Booking.Refresh)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := global.Arg(0), global.Args()[1:]
	if err := a.run(ctx, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "services":
		return a.services(ctx)
	case "days":
		return a.days(ctx)
	case "slots":
		return a.slots(ctx, args)
	case "book":
		return a.book(ctx, args)
	case "list":
		return a.list(ctx)
	case "cancel":
		return a.cancel(ctx, args)
	case "block":
		return a.block(ctx, args)
	case "unblock":
		return a.unblock(ctx, args)
	case "watch":
		return a.watch(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) catalogue(ctx context.Context) ([]booking.Service, error) {
	if cat, ok := a.backend.(client.Catalogue); ok {
		return cat.ListServices(ctx)
	}
	defaults := sqlite.DefaultServices(0)
	out := make([]booking.Service, len(defaults))
	for i, s := range defaults {
		out[i] = booking.Service{ID: s.ID, Name: s.Name, DurationMinutes: s.DurationMinutes, Price: s.Price}
	}
	return out, nil
}

func (a *app) service(ctx context.Context, id string) (booking.Service, error) {
	services, err := a.catalogue(ctx)
	if err != nil {
		return booking.Service{}, err
	}
	for _, s := range services {
		if s.ID == id {
			return s, nil
		}
	}
	return booking.Service{}, fmt.Errorf("%w: unknown service %q", client.ErrInvalidInput, id)
}

func (a *app) services(ctx context.Context) error {
	services, err := a.catalogue(ctx)
	if err != nil {
		return err
	}
	for _, s := range services {
		fmt.Printf("%-12s %-20s %4d min  €%.2f\n", s.ID, s.Name, s.DurationMinutes, s.Price)
	}
	return nil
}

func (a *app) load(ctx context.Context) {
	a.session.Load(ctx)
	if banner := a.session.Banner(); banner != "" {
		fmt.Fprintln(os.Stderr, banner)
	}
}

func (a *app) days(ctx context.Context) error {
	a.load(ctx)
	fmt.Println(a.session.RestrictionMessage())
	for _, d := range a.session.Days() {
		fmt.Println(d.Start(a.rules.Location).Format("Mon 2006-01-02"))
	}
	return nil
}

func (a *app) pick(ctx context.Context, fs *flag.FlagSet, serviceID, rawDay string) error {
	if serviceID == "" || rawDay == "" {
		fs.Usage()
		return fmt.Errorf("%w: -service and -day are required", client.ErrInvalidInput)
	}
	svc, err := a.service(ctx, serviceID)
	if err != nil {
		return err
	}
	day, err := booking.ParseDay(rawDay)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrInvalidInput, err)
	}

	a.load(ctx)
	if err := a.session.SelectService(svc); err != nil {
		return err
	}
	return a.session.SelectDay(day)
}

func (a *app) slots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	serviceID := fs.String("service", "", "service id")
	rawDay := fs.String("day", "", "day as YYYY-MM-DD")
	_ = fs.Parse(args)

	if err := a.pick(ctx, fs, *serviceID, *rawDay); err != nil {
		return err
	}
	slots := a.session.Slots()
	if len(slots) == 0 {
		fmt.Println("no free times on that day")
	}
	for _, s := range slots {
		fmt.Println(s.In(a.rules.Location).Format("15:04"))
	}
	return nil
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	serviceID := fs.String("service", "", "service id")
	rawDay := fs.String("day", "", "day as YYYY-MM-DD")
	rawTime := fs.String("time", "", "start time as HH:MM")
	var contact client.Contact
	fs.StringVar(&contact.Name, "name", "", "your name")
	fs.StringVar(&contact.Email, "email", "", "your email")
	fs.StringVar(&contact.Phone, "phone", "", "your phone number")
	fs.StringVar(&contact.Notes, "notes", "", "special requests")
	_ = fs.Parse(args)

	if err := a.pick(ctx, fs, *serviceID, *rawDay); err != nil {
		return err
	}
	clock, err := time.Parse("15:04", *rawTime)
	if err != nil {
		return fmt.Errorf("%w: -time must be HH:MM", client.ErrInvalidInput)
	}
	day, _ := booking.ParseDay(*rawDay)
	start := day.At(clock.Hour()*60+clock.Minute(), a.rules.Location)
	if err := a.session.SelectTime(start); err != nil {
		return err
	}

	appt, err := a.session.Submit(ctx, contact)
	if err != nil {
		return err
	}
	fmt.Printf("booked %s on %s (id %s)\n", appt.Title, appt.StartsAt.In(a.rules.Location).Format("Mon 2006-01-02 15:04"), appt.ID)
	return nil
}

func (a *app) list(ctx context.Context) error {
	appts, err := a.backend.ListAppointments(ctx)
	if err != nil {
		return err
	}
	for _, appt := range appts {
		busy := appt.Busy(a.rules.DefaultDurationMinutes)
		fmt.Printf("%-36s %s-%s  %s\n", appt.ID,
			busy.Start.In(a.rules.Location).Format("2006-01-02 15:04"),
			busy.End().In(a.rules.Location).Format("15:04"),
			appt.Title)
	}
	return nil
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "appointment id")
	_ = fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("%w: -id is required", client.ErrInvalidInput)
	}
	return a.backend.DeleteAppointment(ctx, *id)
}

func (a *app) dayFlag(name string, args []string, reason *string) (booking.Day, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	rawDay := fs.String("day", "", "day as YYYY-MM-DD")
	if reason != nil {
		fs.StringVar(reason, "reason", "", "shown to customers")
	}
	_ = fs.Parse(args)

	day, err := booking.ParseDay(*rawDay)
	if err != nil {
		return booking.Day{}, fmt.Errorf("%w: -day must be YYYY-MM-DD", client.ErrInvalidInput)
	}
	return day, nil
}

func (a *app) block(ctx context.Context, args []string) error {
	var reason string
	day, err := a.dayFlag("block", args, &reason)
	if err != nil {
		return err
	}
	return a.backend.Block(ctx, day, reason)
}

func (a *app) unblock(ctx context.Context, args []string) error {
	day, err := a.dayFlag("unblock", args, nil)
	if err != nil {
		return err
	}
	return a.backend.Unblock(ctx, day)
}

func (a *app) watch(ctx context.Context) error {
	a.load(ctx)
	printDays(a.session.Days())

	if err := a.session.Start(ctx); err != nil {
		return err
	}
	defer a.session.Stop()

	ticker := time.NewTicker(a.cfg.Booking.Refresh)
	defer ticker.Stop()
	last := fmt.Sprint(a.session.Days())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if banner := a.session.Banner(); banner != "" {
				fmt.Fprintln(os.Stderr, banner)
			}
			if now := fmt.Sprint(a.session.Days()); now != last {
				last = now
				printDays(a.session.Days())
			}
		}
	}
}

func printDays(days []booking.Day) {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.String()
	}
	fmt.Printf("%s  %d bookable days: %s\n", time.Now().Format("15:04:05"), len(days), strings.Join(parts, " "))
}

// describe turns backend failures into the message a customer should see.
func describe(err error) string {
	var cerr *client.ContactError
	switch {
	case errors.As(err, &cerr):
		return cerr.Error()
	case errors.Is(err, booking.ErrDayUnavailable):
		return "that day cannot be booked"
	case errors.Is(err, booking.ErrSlotUnavailable):
		return "that time is not available, pick another one"
	}

	switch client.Classify(err) {
	case client.KindConflict:
		return "that time was just taken, pick another one"
	case client.KindUnauthorized:
		return "please sign in again (set NAILBOOK_TOKEN)"
	case client.KindNetwork:
		return "cannot reach the booking server"
	default:
		return err.Error()
	}
}
