package convo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/events"
	"weatherbot-api/internal/forecast"
	"weatherbot-api/internal/geocode"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"

	"go.uber.org/zap"
)

const providerTimeout = 10 * time.Second

// welcomeBackGap is the silence after which a returning user gets a greeting
// before the regular reply.
const welcomeBackGap = 15 * time.Minute

// Service drives per-user conversations: onboarding, command dispatch and
// scheduled forecast delivery. One inbound message yields at most one
// outbound reply, preceded by a welcome-back greeting after a long gap.
type Service interface {
	HandleInbound(event events.MessageReceived)
	HandleScheduleFired(event events.ScheduleFired) error
}

// conversationService implements the Service interface
type conversationService struct {
	profiles  profile.Repository
	schedules schedule.Repository
	resolver  geocode.Resolver
	forecasts forecast.Provider
	metars    forecast.MetarProvider
	eventBus  events.EventBus
	logger    *zap.Logger
	clock     common.Clock
}

// NewConversationService creates the conversation service and subscribes it
// to inbound-message events. Scheduled deliveries arrive as direct
// HandleScheduleFired calls from the scheduler engine, which needs the
// delivery outcome to decide entry state.
func NewConversationService(
	eventBus events.EventBus,
	logger *zap.Logger,
	profiles profile.Repository,
	schedules schedule.Repository,
	resolver geocode.Resolver,
	forecasts forecast.Provider,
	metars forecast.MetarProvider,
	clock common.Clock,
) (Service, error) {
	s := &conversationService{
		profiles:  profiles,
		schedules: schedules,
		resolver:  resolver,
		forecasts: forecasts,
		metars:    metars,
		eventBus:  eventBus,
		logger:    logger,
		clock:     clock,
	}

	if err := eventBus.Subscribe(events.TopicMessageReceived, s.HandleInbound); err != nil {
		return nil, err
	}

	return s, nil
}

// HandleInbound processes one inbound message to completion
func (s *conversationService) HandleInbound(event events.MessageReceived) {
	userID := common.UserID(event.UserID)
	now := s.clock.Now()

	s.logger.Info("Handling inbound message",
		zap.String("correlation_id", event.CorrelationID),
		zap.String("user_id", event.UserID),
		zap.Int("text_length", len(event.Text)))

	p, err := s.profiles.Get(userID)
	if err != nil {
		var notFound common.NotFoundError
		if !errors.As(err, &notFound) {
			s.logger.Error("Profile lookup failed",
				zap.String("user_id", event.UserID), zap.Error(err))
			s.reply(userID, storeApologyText)
			return
		}

		// First contact: create the profile and ask for a first name. The
		// triggering message is consumed by the ask, whatever it said.
		p = profile.NewUserProfile(userID)
		s.touch(p, now)
		if !s.putProfile(p, userID) {
			return
		}
		s.reply(userID, fmt.Sprintf("%s I'm your weather assistant. What's your first name?", TimeOfDayGreeting(now)))
		return
	}

	var prevIncoming *time.Time
	if p.LastIncomingAt != nil {
		t := *p.LastIncomingAt
		prevIncoming = &t
	}
	s.touch(p, now)
	s.maybeWelcomeBack(p, prevIncoming, now)

	if p.Stage != common.StageComplete {
		s.handleOnboarding(p, event.Text)
		return
	}

	if !s.putProfile(p, userID) {
		return
	}

	cmd := ParseCommand(event.Text)
	switch cmd.Kind {
	case CommandHelp:
		s.reply(userID, helpText)
	case CommandWeatherNow:
		s.handleWeatherNow(p, prevIncoming, now)
	case CommandSetLocation:
		s.handleSetLocation(p, cmd.Place)
	case CommandSchedule:
		s.handleSchedule(p, cmd)
	case CommandMetar:
		s.handleMetar(p, cmd.Station)
	default:
		s.reply(userID, helpText)
	}
}

// handleOnboarding advances the onboarding dialog by one turn
func (s *conversationService) handleOnboarding(p *profile.UserProfile, text string) {
	step := AdvanceOnboarding(p.Stage, p.DisplayFirstName(), text)

	if step.NeedsLocation {
		loc, err := s.resolveLocation(text)
		if err != nil {
			s.logger.Info("Location resolution failed during onboarding",
				zap.String("user_id", string(p.UserID)), zap.Error(err))
			if s.putProfile(p, p.UserID) {
				s.reply(p.UserID, resolveApologyText)
			}
			return
		}

		p.SetLocation(loc.Descriptor, loc.Lat, loc.Lon)
		p.Stage = common.StageComplete
		if !s.putProfile(p, p.UserID) {
			return
		}
		s.reply(p.UserID, fmt.Sprintf(
			`Thanks %s! Saved your location as: %s. Text "weather" or "wx" anytime.`,
			p.DisplayFirstName(), loc.Descriptor))
		return
	}

	if step.FirstName != "" {
		p.FirstName = step.FirstName
	}
	if step.LastName != "" {
		p.LastName = step.LastName
	}
	p.Stage = step.Stage

	if !s.putProfile(p, p.UserID) {
		return
	}
	if step.Reply != "" {
		s.reply(p.UserID, step.Reply)
	}
}

// handleWeatherNow fetches and sends the current forecast
func (s *conversationService) handleWeatherNow(p *profile.UserProfile, prevIncoming *time.Time, now time.Time) {
	if !p.HasLocation() {
		p.Stage = common.StageAwaitingLocation
		if s.putProfile(p, p.UserID) {
			s.reply(p.UserID, fmt.Sprintf("What city and state are you in, %s? (e.g., Davis, CA)", p.DisplayFirstName()))
		}
		return
	}

	text, err := s.fetchForecast(*p.Lat, *p.Lon)
	if err != nil {
		s.logger.Warn("Forecast fetch failed",
			zap.String("user_id", string(p.UserID)), zap.Error(err))
		s.reply(p.UserID, forecastApologyText)
		return
	}

	msg := fmt.Sprintf("%s Forecast:\n\n%s", geocode.FormatCityState(p.LocationText), text)
	if prevIncoming != nil {
		if line := LastContactLine(*prevIncoming, now); line != "" {
			msg += "\n\n" + line
		}
	}
	s.reply(p.UserID, msg)
}

// handleSetLocation updates the stored location; the prior location is left
// untouched when resolution fails.
func (s *conversationService) handleSetLocation(p *profile.UserProfile, place string) {
	loc, err := s.resolveLocation(place)
	if err != nil {
		s.logger.Info("Location resolution failed",
			zap.String("user_id", string(p.UserID)),
			zap.String("place", place), zap.Error(err))
		s.reply(p.UserID, resolveApologyText)
		return
	}

	p.SetLocation(loc.Descriptor, loc.Lat, loc.Lon)
	if !s.putProfile(p, p.UserID) {
		return
	}

	msg := fmt.Sprintf("Saved your location as: %s.", loc.Descriptor)
	if text, err := s.fetchForecast(loc.Lat, loc.Lon); err == nil {
		msg += fmt.Sprintf("\n\n%s Forecast:\n\n%s", geocode.FormatCityState(loc.Descriptor), text)
	} else {
		s.logger.Warn("Forecast fetch after location update failed",
			zap.String("user_id", string(p.UserID)), zap.Error(err))
	}
	s.reply(p.UserID, msg)
}

// handleSchedule validates and persists a new schedule entry
func (s *conversationService) handleSchedule(p *profile.UserProfile, cmd Command) {
	if cmd.Malformed != nil {
		s.reply(p.UserID, fmt.Sprintf(
			`I couldn't read that schedule: %s. Try "send me the weather at 7am everyday".`,
			cmd.Malformed))
		return
	}

	if !p.HasLocation() {
		s.reply(p.UserID, fmt.Sprintf(
			"I need your location first. What city and state are you in, %s? (e.g., Davis, CA)",
			p.DisplayFirstName()))
		return
	}

	entry := schedule.NewEntry(p.UserID, cmd.Spec.Hour, cmd.Spec.Minute, cmd.Spec.Recurrence)
	if err := s.schedules.Create(entry); err != nil {
		if errors.Is(err, schedule.ErrDuplicateEntry) {
			s.reply(p.UserID, fmt.Sprintf(
				"You already have an identical schedule: weather at %s %s.",
				entry.TimeOfDay(), entry.Recurrence.Human()))
			return
		}
		s.logger.Error("Schedule creation failed",
			zap.String("user_id", string(p.UserID)), zap.Error(err))
		s.reply(p.UserID, storeApologyText)
		return
	}

	city := geocode.FormatCityState(p.LocationText)
	if entry.Recurrence == common.RecurrenceDaily {
		s.reply(p.UserID, fmt.Sprintf("Weather for %s will be sent at %s every day.", city, entry.TimeOfDay()))
	} else {
		s.reply(p.UserID, fmt.Sprintf("Weather for %s will be sent at %s.", city, entry.TimeOfDay()))
	}
}

// handleMetar fetches an aviation weather report
func (s *conversationService) handleMetar(p *profile.UserProfile, station string) {
	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()

	report, err := s.metars.FetchMetar(ctx, station)
	if err != nil {
		s.logger.Warn("METAR fetch failed",
			zap.String("user_id", string(p.UserID)),
			zap.String("station", station), zap.Error(err))
		s.reply(p.UserID, fmt.Sprintf("Sorry — no METAR available for %s right now.", station))
		return
	}
	s.reply(p.UserID, report)
}

// HandleScheduleFired delivers a forecast for a fired schedule entry. The
// error return tells the scheduler engine whether delivery happened; it
// decides per recurrence kind whether to retry or record a missed delivery.
func (s *conversationService) HandleScheduleFired(event events.ScheduleFired) error {
	userID := common.UserID(event.UserID)

	s.logger.Info("Handling fired schedule entry",
		zap.String("correlation_id", event.CorrelationID),
		zap.String("entry_id", event.EntryID),
		zap.String("user_id", event.UserID))

	p, err := s.profiles.Get(userID)
	if err != nil {
		s.logger.Error("Profile lookup for fired entry failed",
			zap.String("entry_id", event.EntryID), zap.Error(err))
		return fmt.Errorf("profile lookup for entry %s: %w", event.EntryID, err)
	}
	if !p.HasLocation() {
		s.logger.Warn("Fired entry undeliverable: owner has no location",
			zap.String("entry_id", event.EntryID),
			zap.String("user_id", event.UserID))
		return fmt.Errorf("entry %s owner %s has no location", event.EntryID, event.UserID)
	}

	text, err := s.fetchForecast(*p.Lat, *p.Lon)
	if err != nil {
		s.logger.Error("Scheduled forecast fetch failed",
			zap.String("entry_id", event.EntryID),
			zap.String("user_id", event.UserID), zap.Error(err))
		return fmt.Errorf("forecast for entry %s: %w", event.EntryID, err)
	}

	return s.reply(userID, fmt.Sprintf("%s Forecast:\n\n%s", geocode.FormatCityState(p.LocationText), text))
}

const (
	storeApologyText    = "Sorry, something went wrong on my end. Please try again."
	resolveApologyText  = `Sorry — I couldn't find that location. Try: "Davis, CA".`
	forecastApologyText = "Sorry — the forecast is unavailable right now. Try again in a bit."
)

// maybeWelcomeBack greets a user returning after welcomeBackGap of silence.
// At most one greeting per gap: LastWelcomeAt newer than the previous
// incoming message means this gap was already greeted.
func (s *conversationService) maybeWelcomeBack(p *profile.UserProfile, prevIncoming *time.Time, now time.Time) {
	if prevIncoming == nil {
		return
	}
	gap := now.Sub(*prevIncoming)
	if gap < welcomeBackGap {
		return
	}
	if p.LastWelcomeAt != nil && p.LastWelcomeAt.After(*prevIncoming) {
		return
	}

	s.reply(p.UserID, fmt.Sprintf("Welcome back, %s. It's been %s since you last texted.",
		p.DisplayFirstName(), HumanElapsed(gap)))
	t := now
	p.LastWelcomeAt = &t
}

func (s *conversationService) touch(p *profile.UserProfile, now time.Time) {
	t := now
	p.LastSeenAt = &t
	p.LastIncomingAt = &t
}

// putProfile persists the profile, converting store failures into a logged
// apology reply. Returns false when the turn should stop.
func (s *conversationService) putProfile(p *profile.UserProfile, userID common.UserID) bool {
	if err := s.profiles.Put(p); err != nil {
		s.logger.Error("Profile store failed",
			zap.String("user_id", string(userID)), zap.Error(err))
		s.reply(userID, storeApologyText)
		return false
	}
	return true
}

func (s *conversationService) reply(userID common.UserID, text string) error {
	event := events.ReplySend{
		Event:  events.NewEvent(),
		UserID: string(userID),
		Text:   text,
	}
	if err := s.eventBus.Publish(events.TopicReplySend, event); err != nil {
		s.logger.Error("Failed to publish reply",
			zap.String("user_id", string(userID)), zap.Error(err))
		return err
	}
	return nil
}

func (s *conversationService) resolveLocation(text string) (*geocode.Location, error) {
	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()
	return s.resolver.Resolve(ctx, text)
}

func (s *conversationService) fetchForecast(lat, lon float64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), providerTimeout)
	defer cancel()
	return s.forecasts.Fetch(ctx, lat, lon)
}
