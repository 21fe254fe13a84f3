package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/events"
	"weatherbot-api/internal/geocode"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUserID = "5551234567"

type stubResolver struct {
	loc     *geocode.Location
	err     error
	queries []string
}

func (s *stubResolver) Resolve(ctx context.Context, text string) (*geocode.Location, error) {
	s.queries = append(s.queries, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.loc, nil
}

type stubForecast struct {
	text  string
	err   error
	calls int
}

func (s *stubForecast) Fetch(ctx context.Context, lat, lon float64) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubMetar struct {
	report   string
	err      error
	stations []string
}

func (s *stubMetar) FetchMetar(ctx context.Context, station string) (string, error) {
	s.stations = append(s.stations, station)
	if s.err != nil {
		return "", s.err
	}
	return s.report, nil
}

type serviceFixture struct {
	service   Service
	bus       *events.MockEventBus
	profiles  *profile.MockRepository
	schedules *schedule.MockRepository
	resolver  *stubResolver
	forecasts *stubForecast
	metars    *stubMetar
	clock     *common.MockClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		bus:       events.NewMockEventBus(),
		profiles:  profile.NewMockRepository(),
		schedules: schedule.NewMockRepository(),
		resolver: &stubResolver{
			loc: &geocode.Location{Descriptor: "Davis, CA", Lat: 38.5449, Lon: -121.7405},
		},
		forecasts: &stubForecast{text: "Tonight: 54F. Partly Cloudy"},
		metars:    &stubMetar{report: "KSMF-VFR-30.12-68/50-270@12-10.0mi-CLR|12000ft"},
		clock:     common.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
	}

	svc, err := NewConversationService(
		f.bus, zap.NewNop(),
		f.profiles, f.schedules,
		f.resolver, f.forecasts, f.metars,
		f.clock)
	require.NoError(t, err)

	f.service = svc
	return f
}

// seedProfile stores a profile at the given stage, optionally with a
// resolved location.
func (f *serviceFixture) seedProfile(t *testing.T, stage common.OnboardingStage, withLocation bool) *profile.UserProfile {
	t.Helper()

	p := profile.NewUserProfile(testUserID)
	p.FirstName = "Alice"
	p.LastName = "Smith"
	p.Stage = stage
	if withLocation {
		p.SetLocation("Davis, CA", 38.5449, -121.7405)
	}
	require.NoError(t, f.profiles.Put(p))
	return p
}

func (f *serviceFixture) send(text string) {
	f.service.HandleInbound(events.MessageReceived{
		Event:      events.NewEvent(),
		UserID:     testUserID,
		Text:       text,
		ReceivedAt: f.clock.Now(),
	})
}

func (f *serviceFixture) replies() []string {
	var out []string
	for _, e := range f.bus.GetPublishedEvents(events.TopicReplySend) {
		out = append(out, e.(events.ReplySend).Text)
	}
	return out
}

func (f *serviceFixture) lastReply(t *testing.T) string {
	t.Helper()
	replies := f.replies()
	require.NotEmpty(t, replies)
	return replies[len(replies)-1]
}

func TestConversationService_Subscriptions(t *testing.T) {
	f := newServiceFixture(t)

	assert.Equal(t, 1, f.bus.GetSubscriberCount(events.TopicMessageReceived))
}

func TestConversationService_NewUserOnboarding(t *testing.T) {
	f := newServiceFixture(t)

	// First contact creates the profile and asks for a first name; the
	// triggering text is consumed regardless of what it said.
	f.send("weather")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingFirstName, p.Stage)

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Good morning!")
	assert.Contains(t, reply, "What's your first name?")
	assert.Equal(t, 0, f.forecasts.calls)

	f.send("Alice")
	p, err = f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingLastName, p.Stage)
	assert.Equal(t, "Alice", p.FirstName)
	assert.Contains(t, f.lastReply(t), "Nice to meet you, Alice")

	f.send("Smith")
	p, err = f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingLocation, p.Stage)
	assert.Equal(t, "Smith", p.LastName)
	assert.Contains(t, f.lastReply(t), "What city and state")

	f.send("Davis, CA")
	p, err = f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageComplete, p.Stage)
	assert.True(t, p.HasLocation())
	assert.Equal(t, "Davis, CA", p.LocationText)
	assert.Equal(t, []string{"Davis, CA"}, f.resolver.queries)
	assert.Contains(t, f.lastReply(t), "Saved your location as: Davis, CA")
}

func TestConversationService_OnboardingResolveFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageAwaitingLocation, false)
	f.resolver.err = geocode.NewResolveError("Atlantis", "no match", nil)

	f.send("Atlantis")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingLocation, p.Stage)
	assert.False(t, p.HasLocation())
	assert.Contains(t, f.lastReply(t), "couldn't find that location")
}

func TestConversationService_OnboardingAnswerBeatsCommandGrammar(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageAwaitingFirstName, false)

	// Command-looking text during onboarding is the answer to the pending
	// question, not a command.
	f.send("send me the weather at 7am everyday")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingLastName, p.Stage)
	assert.Equal(t, "send me the weather at 7am everyday", p.FirstName)

	_, total, err := f.schedules.Counts()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConversationService_WeatherNow(t *testing.T) {
	f := newServiceFixture(t)
	p := f.seedProfile(t, common.StageComplete, true)
	earlier := f.clock.Now().Add(-23 * time.Minute)
	p.LastIncomingAt = &earlier
	require.NoError(t, f.profiles.Put(p))

	f.send("wx")

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Davis, CA Forecast:")
	assert.Contains(t, reply, "Tonight: 54F. Partly Cloudy")
	assert.Contains(t, reply, "23 mins ago")
	assert.Equal(t, 1, f.forecasts.calls)

	// Bookkeeping advanced to this turn
	stored, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastIncomingAt)
	assert.True(t, stored.LastIncomingAt.Equal(f.clock.Now()))
}

func TestConversationService_WeatherNowWithoutLocation(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, false)

	f.send("weather")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageAwaitingLocation, p.Stage)
	assert.Contains(t, f.lastReply(t), "What city and state are you in, Alice?")
	assert.Equal(t, 0, f.forecasts.calls)

	// The next message is consumed as the location answer
	f.send("Davis, CA")

	p, err = f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, common.StageComplete, p.Stage)
	assert.True(t, p.HasLocation())
}

func TestConversationService_WeatherNowProviderFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)
	f.forecasts.err = errors.New("upstream 503")

	f.send("weather")

	assert.Contains(t, f.lastReply(t), "forecast is unavailable")
}

func TestConversationService_Schedule(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("send me the weather at 7am everyday")

	assert.Equal(t, "Weather for Davis, CA will be sent at 7:00 AM every day.", f.lastReply(t))

	entries, err := f.schedules.ListByUser(testUserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Hour)
	assert.Equal(t, 0, entries[0].Minute)
	assert.Equal(t, common.RecurrenceDaily, entries[0].Recurrence)
	assert.True(t, entries[0].Active)
}

func TestConversationService_ScheduleOneTime(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("send me the weather at 7:30pm once")

	assert.Equal(t, "Weather for Davis, CA will be sent at 7:30 PM.", f.lastReply(t))

	entries, err := f.schedules.ListByUser(testUserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 19, entries[0].Hour)
	assert.Equal(t, 30, entries[0].Minute)
	assert.Equal(t, common.RecurrenceOneTime, entries[0].Recurrence)
}

func TestConversationService_ScheduleDuplicate(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("send me the weather at 7am everyday")
	f.send("send me the weather at 7am everyday")

	assert.Contains(t, f.lastReply(t), "identical schedule")

	_, total, err := f.schedules.Counts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestConversationService_ScheduleMalformed(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("send me the weather at 7am")

	reply := f.lastReply(t)
	assert.Contains(t, reply, "couldn't read that schedule")
	assert.Contains(t, reply, "say how often")

	_, total, err := f.schedules.Counts()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConversationService_ScheduleWithoutLocation(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, false)

	f.send("send me the weather at 7am everyday")

	assert.Contains(t, f.lastReply(t), "I need your location first")

	_, total, err := f.schedules.Counts()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConversationService_SetLocation(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)
	f.resolver.loc = &geocode.Location{Descriptor: "Seattle, WA", Lat: 47.6062, Lon: -122.3321}

	f.send("I'm in Seattle, WA now")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, "Seattle, WA", p.LocationText)
	assert.Equal(t, []string{"Seattle, WA"}, f.resolver.queries)

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Saved your location as: Seattle, WA")
	assert.Contains(t, reply, "Seattle, WA Forecast:")
}

func TestConversationService_SetLocationFailureKeepsPrior(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)
	f.resolver.err = geocode.NewResolveError("Mordor", "no match", nil)

	f.send("I'm in Mordor now")

	p, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	assert.Equal(t, "Davis, CA", p.LocationText)
	assert.Equal(t, common.StageComplete, p.Stage)
	assert.Contains(t, f.lastReply(t), "couldn't find that location")
}

func TestConversationService_Metar(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("metar ksmf")

	assert.Equal(t, []string{"KSMF"}, f.metars.stations)
	assert.Equal(t, "KSMF-VFR-30.12-68/50-270@12-10.0mi-CLR|12000ft", f.lastReply(t))
}

func TestConversationService_MetarFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)
	f.metars.err = errors.New("station not found")

	f.send("metar KZZZ")

	assert.Contains(t, f.lastReply(t), "no METAR available for KZZZ")
}

func TestConversationService_UnrecognizedFallsBackToHelp(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("do a barrel roll")

	assert.Equal(t, helpText, f.lastReply(t))
}

func TestConversationService_HelpCommand(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	f.send("?")

	assert.Equal(t, helpText, f.lastReply(t))
}

func TestConversationService_StoreFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.profiles.GetError = errors.New("connection refused")

	f.send("weather")

	assert.Contains(t, f.lastReply(t), "something went wrong")
}

func TestConversationService_HandleScheduleFired(t *testing.T) {
	f := newServiceFixture(t)
	f.seedProfile(t, common.StageComplete, true)

	err := f.service.HandleScheduleFired(events.ScheduleFired{
		Event:      events.NewEvent(),
		EntryID:    string(common.NewID()),
		UserID:     testUserID,
		Hour:       7,
		Minute:     0,
		Recurrence: string(common.RecurrenceDaily),
	})
	require.NoError(t, err)

	reply := f.lastReply(t)
	assert.Contains(t, reply, "Davis, CA Forecast:")
	assert.Contains(t, reply, "Tonight: 54F. Partly Cloudy")
}

func TestConversationService_HandleScheduleFiredFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *serviceFixture)
	}{
		{
			name:  "unknown user",
			setup: func(f *serviceFixture) {},
		},
		{
			name: "owner without location",
			setup: func(f *serviceFixture) {
				f.seedProfile(t, common.StageAwaitingLocation, false)
			},
		},
		{
			name: "forecast provider failure",
			setup: func(f *serviceFixture) {
				f.seedProfile(t, common.StageComplete, true)
				f.forecasts.err = errors.New("upstream 503")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			tt.setup(f)

			err := f.service.HandleScheduleFired(events.ScheduleFired{
				Event:   events.NewEvent(),
				EntryID: string(common.NewID()),
				UserID:  testUserID,
			})

			// No outbound message, and the failure is reported so the
			// scheduler engine can decide entry state
			assert.Error(t, err)
			assert.Empty(t, f.replies())
		})
	}
}

func TestConversationService_WelcomeBackAfterGap(t *testing.T) {
	f := newServiceFixture(t)
	p := f.seedProfile(t, common.StageComplete, true)
	earlier := f.clock.Now().Add(-20 * time.Minute)
	p.LastIncomingAt = &earlier
	require.NoError(t, f.profiles.Put(p))

	f.send("weather")

	replies := f.replies()
	require.Len(t, replies, 2)
	assert.Equal(t, "Welcome back, Alice. It's been 20 minutes since you last texted.", replies[0])
	assert.Contains(t, replies[1], "Davis, CA Forecast:")

	stored, err := f.profiles.Get(testUserID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastWelcomeAt)
	assert.True(t, stored.LastWelcomeAt.Equal(f.clock.Now()))
}

func TestConversationService_NoWelcomeBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *serviceFixture, p *profile.UserProfile)
	}{
		{
			name: "gap under threshold",
			setup: func(f *serviceFixture, p *profile.UserProfile) {
				earlier := f.clock.Now().Add(-5 * time.Minute)
				p.LastIncomingAt = &earlier
			},
		},
		{
			name: "gap already greeted",
			setup: func(f *serviceFixture, p *profile.UserProfile) {
				earlier := f.clock.Now().Add(-20 * time.Minute)
				greeted := f.clock.Now().Add(-10 * time.Minute)
				p.LastIncomingAt = &earlier
				p.LastWelcomeAt = &greeted
			},
		},
		{
			name:  "no prior message",
			setup: func(f *serviceFixture, p *profile.UserProfile) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			p := f.seedProfile(t, common.StageComplete, true)
			tt.setup(f, p)
			require.NoError(t, f.profiles.Put(p))

			f.send("weather")

			replies := f.replies()
			require.Len(t, replies, 1)
			assert.NotContains(t, replies[0], "Welcome back")
		})
	}
}
