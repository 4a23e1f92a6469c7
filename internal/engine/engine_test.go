package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"habitquest/internal/storage"
)

const testUser int64 = 1

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *eventRecorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *eventRecorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type testEnv struct {
	svc    *Service
	clock  *testClock
	events *eventRecorder
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		clock:  &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		events: &eventRecorder{},
	}
	env.svc = NewService(db, WithClock(env.clock), WithEmitter(env.events))
	if _, err := env.svc.EnsurePlayer(ctx, testUser, "tester"); err != nil {
		t.Fatalf("EnsurePlayer: %v", err)
	}
	return env
}

func updatePlayer(t *testing.T, svc *Service, fn func(p *storage.Player)) {
	t.Helper()
	ctx := context.Background()
	p, err := svc.Player(ctx, testUser)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	fn(p)
	if err := svc.Repos().Players.Update(ctx, p); err != nil {
		t.Fatalf("update player: %v", err)
	}
}

func admitCustom(t *testing.T, svc *Service, name string, xp int) *Admission {
	t.Helper()
	adm, err := svc.AdmitCustomQuest(context.Background(), testUser, CustomQuestProposal{
		Name:           name,
		Category:       CategoryCustom,
		Difficulty:     DifficultyEasy,
		BaseXP:         xp,
		TargetProgress: 1,
	})
	if err != nil {
		t.Fatalf("AdmitCustomQuest: %v", err)
	}
	return adm
}

func TestNextXPThreshold(t *testing.T) {
	cases := map[int]int{1: 1, 100: 120, 120: 144, 144: 172, 172: 206}
	for in, want := range cases {
		if got := NextXPThreshold(in); got != want {
			t.Fatalf("NextXPThreshold(%d)=%d, want %d", in, got, want)
		}
	}
}

func TestCompletionLevelUpScenario(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	updatePlayer(t, env.svc, func(p *storage.Player) { p.XP = 80 })
	adm := admitCustom(t, env.svc, "Stretch", 30)

	res, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if !res.LeveledUp || res.NewLevel != 2 || res.XPGained != 30 {
		t.Fatalf("result=%+v, want leveled up to 2 with 30 xp", res)
	}

	p, _ := env.svc.Player(ctx, testUser)
	if p.XP != 110 || p.Level != 2 || p.XPToNextLevel != 120 {
		t.Fatalf("player xp/level/next = %d/%d/%d, want 110/2/120", p.XP, p.Level, p.XPToNextLevel)
	}
	if got := env.events.ofType(EventLevelUp); len(got) != 1 {
		t.Fatalf("level_up events=%d, want 1", len(got))
	}
}

func TestSingleStepLevelUpOnOvershoot(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "Marathon", 500)
	res, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if res.NewLevel != 2 || p.Level != 2 || p.XP != 500 || p.XPToNextLevel != 120 {
		t.Fatalf("player=%d/%d/%d, want exactly one level gained", p.Level, p.XP, p.XPToNextLevel)
	}
}

func TestCompleteTwiceIsRejected(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "Journal", 40)
	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
		t.Fatalf("first CompleteQuest: %v", err)
	}
	before, _ := env.svc.Player(ctx, testUser)

	_, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second CompleteQuest err=%v, want ErrInvalidState", err)
	}
	var se StateError
	if !errors.As(err, &se) || se.Status != StatusCompleted {
		t.Fatalf("expected StateError with completed status, got %v", err)
	}

	after, _ := env.svc.Player(ctx, testUser)
	if after.XP != before.XP || after.Level != before.Level || after.CurrentStreak != before.CurrentStreak {
		t.Fatalf("player changed by rejected completion: before=%+v after=%+v", before, after)
	}
	recs, err := env.svc.Repos().Progress.ListByUser(ctx, testUser, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("progress records=%d, want 1", len(recs))
	}
}

func TestConcurrentCompletionHasSingleWinner(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	adm := admitCustom(t, env.svc, "Walk", 50)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidState):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || rejected != workers-1 {
		t.Fatalf("successes=%d rejected=%d, want 1 and %d", successes, rejected, workers-1)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if p.XP != 50 {
		t.Fatalf("xp=%d, want 50", p.XP)
	}
}

func TestRegenIsCapped(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	updatePlayer(t, env.svc, func(p *storage.Player) {
		p.HP = 95
		p.MP = 48
	})
	adm := admitCustom(t, env.svc, "Nap", 10)
	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if p.HP != p.MaxHP || p.MP != p.MaxMP {
		t.Fatalf("hp/mp=%d/%d, want capped at %d/%d", p.HP, p.MP, p.MaxHP, p.MaxMP)
	}

	updatePlayer(t, env.svc, func(p *storage.Player) {
		p.HP = 50
		p.MP = 10
	})
	adm = admitCustom(t, env.svc, "Nap again", 10)
	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	p, _ = env.svc.Player(ctx, testUser)
	if p.HP != 60 || p.MP != 15 {
		t.Fatalf("hp/mp=%d/%d, want 60/15", p.HP, p.MP)
	}
}

func TestTemplateBonusGrowsAttributes(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	quests, err := env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	var pushups *storage.Quest
	for i := range quests {
		if quests[i].Name == "Push-ups" {
			pushups = &quests[i]
		}
	}
	if pushups == nil {
		t.Fatalf("Push-ups quest not instantiated")
	}

	res, err := env.svc.CompleteQuest(ctx, testUser, pushups.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.Gains.Strength != 1 {
		t.Fatalf("gains=%+v, want strength 1", res.Gains)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if p.Strength != 11 {
		t.Fatalf("strength=%d, want 11", p.Strength)
	}
	recs, _ := env.svc.Repos().Progress.ListByUser(ctx, testUser, 1)
	if len(recs) != 1 || recs[0].Gains != res.Gains {
		t.Fatalf("progress record gains=%+v, want %+v", recs, res.Gains)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	completeOne := func() *CompleteResult {
		t.Helper()
		adm := admitCustom(t, env.svc, "Daily", 10)
		res, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
		if err != nil {
			t.Fatalf("CompleteQuest: %v", err)
		}
		return res
	}

	if got := completeOne().Streak; got != 1 {
		t.Fatalf("day 1 streak=%d, want 1", got)
	}
	if got := completeOne().Streak; got != 1 {
		t.Fatalf("same day streak=%d, want 1", got)
	}
	env.clock.Advance(24 * time.Hour)
	if got := completeOne().Streak; got != 2 {
		t.Fatalf("day 2 streak=%d, want 2", got)
	}
	env.clock.Advance(24 * time.Hour)
	if got := completeOne().Streak; got != 3 {
		t.Fatalf("day 3 streak=%d, want 3", got)
	}
	env.clock.Advance(48 * time.Hour)
	if got := completeOne().Streak; got != 1 {
		t.Fatalf("after gap streak=%d, want 1", got)
	}

	p, _ := env.svc.Player(ctx, testUser)
	if p.LongestStreak != 3 {
		t.Fatalf("longest=%d, want 3", p.LongestStreak)
	}
}

func TestFailResetsStreakAndRecordsPenalty(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	updatePlayer(t, env.svc, func(p *storage.Player) {
		p.CurrentStreak = 7
		p.LongestStreak = 7
		p.XP = 60
	})
	adm := admitCustom(t, env.svc, "Cold shower", 20)

	res, err := env.svc.FailQuest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("FailQuest: %v", err)
	}
	if res.StreakLost != 7 || res.HPLost != 20 {
		t.Fatalf("result=%+v, want streak 7 and hp 20 lost", res)
	}

	p, _ := env.svc.Player(ctx, testUser)
	if p.CurrentStreak != 0 || p.LongestStreak != 7 {
		t.Fatalf("streak=%d longest=%d, want 0 and 7", p.CurrentStreak, p.LongestStreak)
	}
	if p.XP != 60 || p.Level != 1 {
		t.Fatalf("xp/level=%d/%d, failure must not reduce them", p.XP, p.Level)
	}
	if p.HP != 80 {
		t.Fatalf("hp=%d, want 80", p.HP)
	}

	penalties, err := env.svc.Penalties(ctx, testUser, 10)
	if err != nil {
		t.Fatalf("Penalties: %v", err)
	}
	if len(penalties) != 1 || penalties[0].Reason != PenaltyReasonQuestFailed || penalties[0].Type != string(PenaltyStreakReset) {
		t.Fatalf("penalties=%+v", penalties)
	}
	got := env.events.ofType(EventPenalty)
	if len(got) != 1 {
		t.Fatalf("penalty events=%d, want 1", len(got))
	}
	if got[0].Reason != PenaltyReasonQuestFailed {
		t.Fatalf("penalty event reason=%q, want %q", got[0].Reason, PenaltyReasonQuestFailed)
	}

	if _, err := env.svc.FailQuest(ctx, testUser, adm.QuestID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second FailQuest err=%v, want ErrInvalidState", err)
	}
	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("CompleteQuest after fail err=%v, want ErrInvalidState", err)
	}
}

func TestHPPenaltyNeverGoesNegative(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	updatePlayer(t, env.svc, func(p *storage.Player) { p.HP = 5 })
	adm := admitCustom(t, env.svc, "Skipped", 20)
	res, err := env.svc.FailQuest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("FailQuest: %v", err)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if p.HP != 0 || res.HPLost != 5 {
		t.Fatalf("hp=%d lost=%d, want 0 and 5", p.HP, res.HPLost)
	}
}

func TestRecordProgressDoesNotComplete(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm, err := env.svc.AdmitCustomQuest(ctx, testUser, CustomQuestProposal{
		Name: "Pages", Category: CategoryLearning, Difficulty: DifficultyEasy,
		BaseXP: 20, TargetProgress: 10, Unit: "pages",
	})
	if err != nil {
		t.Fatalf("AdmitCustomQuest: %v", err)
	}

	q, err := env.svc.RecordProgress(ctx, testUser, adm.QuestID, 4)
	if err != nil || q.CurrentProgress != 4 {
		t.Fatalf("RecordProgress: %v progress=%v", err, q)
	}
	q, err = env.svc.RecordProgress(ctx, testUser, adm.QuestID, 12)
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	stored, _ := env.svc.Quest(ctx, testUser, adm.QuestID)
	if stored.CurrentProgress != 12 || stored.Status != string(StatusActive) {
		t.Fatalf("quest=%+v, want progress 12 and still active", stored)
	}
	if _, err := env.svc.RecordProgress(ctx, testUser, adm.QuestID, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative progress err=%v, want ErrValidation", err)
	}

	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if _, err := env.svc.RecordProgress(ctx, testUser, adm.QuestID, 13); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("progress on completed err=%v, want ErrInvalidState", err)
	}
}

func TestQuestsAreScopedToOwner(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	if _, err := env.svc.EnsurePlayer(ctx, 2, "other"); err != nil {
		t.Fatalf("EnsurePlayer: %v", err)
	}
	adm := admitCustom(t, env.svc, "Mine", 10)
	_, err := env.svc.CompleteQuest(ctx, 2, adm.QuestID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign complete err=%v, want ErrNotFound", err)
	}
	if _, err := env.svc.CompleteQuest(ctx, testUser, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quest err=%v, want ErrNotFound", err)
	}
	if _, err := env.svc.Player(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing player err=%v, want ErrNotFound", err)
	}
}

func TestEmitterFailureDoesNotRollBack(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	env.events.err = errors.New("notifier down")

	updatePlayer(t, env.svc, func(p *storage.Player) { p.XP = 99 })
	adm := admitCustom(t, env.svc, "Ship it", 10)
	if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	p, _ := env.svc.Player(ctx, testUser)
	if p.Level != 2 {
		t.Fatalf("level=%d, want 2", p.Level)
	}
}

func TestStartDayIsIdempotent(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	first, err := env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	if len(first) != len(builtinTemplates()) {
		t.Fatalf("quests=%d, want %d", len(first), len(builtinTemplates()))
	}
	second, err := env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay again: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("quests after restart=%d, want %d", len(second), len(first))
	}
	if got := env.events.ofType(EventQuestAvailable); len(got) != 1 {
		t.Fatalf("quest_available events=%d, want 1", len(got))
	}

	for _, q := range first {
		if q.Status != string(StatusActive) || q.CurrentProgress != 0 {
			t.Fatalf("new quest %+v is not fresh", q)
		}
		if !q.DueAt.Equal(env.svc.Today().End) {
			t.Fatalf("due=%v, want end of day %v", q.DueAt, env.svc.Today().End)
		}
	}
}

func TestStartDayIncludesActiveCustomQuests(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "Practice guitar", 30)
	env.clock.Advance(24 * time.Hour)

	quests, err := env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	found := false
	for _, q := range quests {
		if q.TemplateID != nil && *q.TemplateID == adm.TemplateID {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom template %d not instantiated", adm.TemplateID)
	}

	if err := env.svc.DeactivateCustomQuest(ctx, testUser, adm.TemplateID); err != nil {
		t.Fatalf("DeactivateCustomQuest: %v", err)
	}
	env.clock.Advance(24 * time.Hour)
	quests, err = env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	for _, q := range quests {
		if q.TemplateID != nil && *q.TemplateID == adm.TemplateID {
			t.Fatalf("deactivated template was instantiated")
		}
	}
}

func TestFailOverdue(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	quests, err := env.svc.StartDay(ctx, testUser)
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	if _, err := env.svc.CompleteQuest(ctx, testUser, quests[0].ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	failed, err := env.svc.FailOverdue(ctx, testUser)
	if err != nil || len(failed) != 0 {
		t.Fatalf("FailOverdue before deadline: %v %v", failed, err)
	}

	env.clock.Advance(24 * time.Hour)
	failed, err = env.svc.FailOverdue(ctx, testUser)
	if err != nil {
		t.Fatalf("FailOverdue: %v", err)
	}
	if len(failed) != len(quests)-1 {
		t.Fatalf("failed=%d, want %d", len(failed), len(quests)-1)
	}
	if got := env.events.ofType(EventQuestDeadline); len(got) != len(failed) {
		t.Fatalf("deadline events=%d, want %d", len(got), len(failed))
	}
}

func TestWeeklyReward(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	w, err := env.svc.CalculateWeeklyReward(ctx, testUser, 5)
	if err != nil {
		t.Fatalf("CalculateWeeklyReward: %v", err)
	}
	if w.TotalXPEarned != 250 || w.BonusXP != 350 || w.QuestsCompleted != 5 {
		t.Fatalf("reward=%+v, want 250/350", w)
	}
	if w.Year != 2025 || w.Week != 11 {
		t.Fatalf("year/week=%d/%d, want 2025/11", w.Year, w.Week)
	}

	w, err = env.svc.CalculateWeeklyReward(ctx, testUser, 0)
	if err != nil {
		t.Fatalf("CalculateWeeklyReward: %v", err)
	}
	if w.BonusXP != 100 || w.TotalXPEarned != 0 {
		t.Fatalf("reward=%+v, want bonus 100", w)
	}

	history, err := env.svc.WeeklyRewardHistory(ctx, testUser, 0)
	if err != nil {
		t.Fatalf("WeeklyRewardHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history=%d, want 2 rows for the same week", len(history))
	}

	if _, err := env.svc.CalculateWeeklyReward(ctx, testUser, -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative count err=%v, want ErrValidation", err)
	}
	if _, err := env.svc.CalculateWeeklyReward(ctx, 404, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown player err=%v, want ErrNotFound", err)
	}
}

func TestCompletionsThisWeek(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		adm := admitCustom(t, env.svc, "Repeat", 10)
		if _, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID); err != nil {
			t.Fatalf("CompleteQuest: %v", err)
		}
	}
	n, err := env.svc.CompletionsThisWeek(ctx, testUser)
	if err != nil || n != 3 {
		t.Fatalf("CompletionsThisWeek=%d, %v; want 3", n, err)
	}
	env.clock.Advance(8 * 24 * time.Hour)
	n, err = env.svc.CompletionsThisWeek(ctx, testUser)
	if err != nil || n != 0 {
		t.Fatalf("CompletionsThisWeek after a week=%d, %v; want 0", n, err)
	}
}

func TestChatAdmissionDescriptionBounds(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	base := ChatQuestProposal{
		Name:           "Drink water",
		Category:       CategoryHealth,
		Difficulty:     DifficultyEasy,
		BaseXP:         20,
		TargetProgress: 1,
	}

	short := base
	short.Description = strings.Repeat("a", 9)
	_, err := env.svc.AdmitChatQuest(ctx, testUser, short)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "description" || ve.Rule != "min" || ve.Param != "10" {
		t.Fatalf("9-char description err=%v, want min violation on description", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}

	runes := base
	runes.Description = strings.Repeat("é", 9)
	if _, err := env.svc.AdmitChatQuest(ctx, testUser, runes); !errors.Is(err, ErrValidation) {
		t.Fatalf("9-rune description err=%v, want ErrValidation", err)
	}

	ok := base
	ok.Description = strings.Repeat("a", 10)
	adm, err := env.svc.AdmitChatQuest(ctx, testUser, ok)
	if err != nil {
		t.Fatalf("10-char description: %v", err)
	}
	q, err := env.svc.Quest(ctx, testUser, adm.QuestID)
	if err != nil || q.Status != string(StatusActive) {
		t.Fatalf("admitted quest=%+v, %v", q, err)
	}

	p, _ := env.svc.Player(ctx, testUser)
	if p.XP != 0 {
		t.Fatalf("admission awarded xp=%d", p.XP)
	}
}

func TestAdmissionBounds(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	chat := func(mod func(p *ChatQuestProposal)) error {
		p := ChatQuestProposal{
			Name: "Go for a walk", Description: "Walk around the block twice.",
			Category: CategoryExercise, Difficulty: DifficultyMedium, BaseXP: 50, TargetProgress: 1,
		}
		mod(&p)
		_, err := env.svc.AdmitChatQuest(ctx, testUser, p)
		return err
	}
	custom := func(mod func(p *CustomQuestProposal)) error {
		p := CustomQuestProposal{
			Name: "Walk", Category: CategoryExercise, Difficulty: DifficultyMedium, BaseXP: 50, TargetProgress: 1,
		}
		mod(&p)
		_, err := env.svc.AdmitCustomQuest(ctx, testUser, p)
		return err
	}

	cases := []struct {
		name    string
		err     error
		field   string
		wantErr bool
	}{
		{"chat name 4 chars", chat(func(p *ChatQuestProposal) { p.Name = "Walk" }), "name", true},
		{"chat name 5 chars", chat(func(p *ChatQuestProposal) { p.Name = "Walks" }), "", false},
		{"chat xp 9", chat(func(p *ChatQuestProposal) { p.BaseXP = 9 }), "baseXp", true},
		{"chat xp 501", chat(func(p *ChatQuestProposal) { p.BaseXP = 501 }), "baseXp", true},
		{"chat bad category", chat(func(p *ChatQuestProposal) { p.Category = "sleep" }), "category", true},
		{"chat description 501", chat(func(p *ChatQuestProposal) { p.Description = strings.Repeat("d", 501) }), "description", true},
		{"custom empty name", custom(func(p *CustomQuestProposal) { p.Name = "" }), "name", true},
		{"custom 1 char name", custom(func(p *CustomQuestProposal) { p.Name = "W" }), "", false},
		{"custom no description", custom(func(p *CustomQuestProposal) { p.Description = "" }), "", false},
		{"custom target 0", custom(func(p *CustomQuestProposal) { p.TargetProgress = 0 }), "targetProgress", true},
		{"custom bad difficulty", custom(func(p *CustomQuestProposal) { p.Difficulty = "brutal" }), "difficulty", true},
		{"custom long unit", custom(func(p *CustomQuestProposal) { p.Unit = strings.Repeat("u", 51) }), "unit", true},
		{"custom xp 500", custom(func(p *CustomQuestProposal) { p.BaseXP = 500 }), "", false},
	}
	for _, tc := range cases {
		if !tc.wantErr {
			if tc.err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, tc.err)
			}
			continue
		}
		var ve ValidationError
		if !errors.As(tc.err, &ve) {
			t.Fatalf("%s: err=%v, want ValidationError", tc.name, tc.err)
		}
		if ve.Field != tc.field {
			t.Fatalf("%s: field=%q, want %q", tc.name, ve.Field, tc.field)
		}
	}
}

func TestMapVariationDifficulty(t *testing.T) {
	cases := []struct {
		in   int
		want Difficulty
	}{
		{1, DifficultyEasy},
		{2, DifficultyMedium},
		{3, DifficultyHard},
		{4, DifficultyExtreme},
		{5, DifficultyExtreme},
	}
	for _, tc := range cases {
		got, err := MapVariationDifficulty(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("MapVariationDifficulty(%d)=%q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []int{0, 6, -1} {
		if _, err := MapVariationDifficulty(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("MapVariationDifficulty(%d) err=%v, want ErrValidation", bad, err)
		}
	}
}

func TestAdmitVariation(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm, err := env.svc.AdmitVariation(ctx, testUser, QuestVariation{
		Title:       "Sunrise sprint",
		Description: "Sprint ten times up the nearest hill.",
		Difficulty:  4,
		XPReward:    120,
		Category:    "Exercise",
	})
	if err != nil {
		t.Fatalf("AdmitVariation: %v", err)
	}
	q, _ := env.svc.Quest(ctx, testUser, adm.QuestID)
	if q.Difficulty != string(DifficultyExtreme) || q.XPReward != 120 || q.TargetProgress != 1 || q.Category != "exercise" {
		t.Fatalf("quest=%+v", q)
	}
}

func TestValidateIdea(t *testing.T) {
	if err := ValidateIdea("too short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("9-char idea err=%v, want ErrValidation", err)
	}
	if err := ValidateIdea("run a 5k!!"); err != nil {
		t.Fatalf("10-char idea: %v", err)
	}
	if err := ValidateIdea(strings.Repeat("x", 501)); !errors.Is(err, ErrValidation) {
		t.Fatalf("501-char idea err=%v, want ErrValidation", err)
	}
}

func TestUpdateCustomQuest(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "Pushups", 20)
	xp := 80
	name := "Push-ups x50"
	tmpl, err := env.svc.UpdateCustomQuest(ctx, testUser, adm.TemplateID, CustomQuestPatch{Name: &name, BaseXP: &xp})
	if err != nil {
		t.Fatalf("UpdateCustomQuest: %v", err)
	}
	if tmpl.Name != name || tmpl.BaseXP != 80 || tmpl.Difficulty != string(DifficultyEasy) {
		t.Fatalf("template=%+v", tmpl)
	}

	q, _ := env.svc.Quest(ctx, testUser, adm.QuestID)
	if q.XPReward != 20 {
		t.Fatalf("existing quest reward=%d, want 20", q.XPReward)
	}

	bad := 5
	if _, err := env.svc.UpdateCustomQuest(ctx, testUser, adm.TemplateID, CustomQuestPatch{BaseXP: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid patch err=%v, want ErrValidation", err)
	}
	if _, err := env.svc.UpdateCustomQuest(ctx, 2, adm.TemplateID, CustomQuestPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign patch err=%v, want ErrNotFound", err)
	}

	list, err := env.svc.CustomQuests(ctx, testUser)
	if err != nil || len(list) != 1 {
		t.Fatalf("CustomQuests=%d, %v", len(list), err)
	}
	if err := env.svc.DeactivateCustomQuest(ctx, testUser, adm.TemplateID); err != nil {
		t.Fatalf("DeactivateCustomQuest: %v", err)
	}
	list, _ = env.svc.CustomQuests(ctx, testUser)
	if len(list) != 0 {
		t.Fatalf("CustomQuests after deactivate=%d, want 0", len(list))
	}
	if err := env.svc.DeactivateCustomQuest(ctx, testUser, adm.TemplateID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second deactivate err=%v, want ErrNotFound", err)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	for id := int64(2); id <= 3; id++ {
		if _, err := env.svc.EnsurePlayer(ctx, id, ""); err != nil {
			t.Fatalf("EnsurePlayer: %v", err)
		}
	}
	set := func(id int64, level, xp int) {
		p, _ := env.svc.Player(ctx, id)
		p.Level, p.XP = level, xp
		if err := env.svc.Repos().Players.Update(ctx, p); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	set(1, 2, 10)
	set(2, 3, 0)
	set(3, 2, 90)

	board, err := env.svc.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	var ids []int64
	for _, p := range board {
		ids = append(ids, p.ID)
	}
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 3 || ids[2] != 1 {
		t.Fatalf("order=%v, want [2 3 1]", ids)
	}
}

func TestAchievementsUnlockOnCompletion(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "First", 10)
	res, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if len(res.NewlyEarned) != 1 || res.NewlyEarned[0].ID != "first_quest" {
		t.Fatalf("newly earned=%+v, want first_quest", res.NewlyEarned)
	}
	if got := env.events.ofType(EventAchievementUnlocked); len(got) != 1 {
		t.Fatalf("achievement events=%d, want 1", len(got))
	}

	list, err := env.svc.Achievements(ctx, testUser)
	if err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	earned := 0
	for _, a := range list {
		if a.Earned {
			earned++
		}
	}
	if earned != 1 {
		t.Fatalf("earned=%d, want 1", earned)
	}

	checker, err := env.svc.AchievementProgress(ctx, testUser)
	if err != nil {
		t.Fatalf("AchievementProgress: %v", err)
	}
	if checker.CountEarned() != earned || checker.CountTotal() != len(list) {
		t.Fatalf("checker counts=%d/%d, want %d/%d", checker.CountEarned(), checker.CountTotal(), earned, len(list))
	}
}

func TestPeriods(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC) // Monday 01:30 in loc

	day := DayPeriod(at, loc)
	if day.Start.Weekday() != time.Monday || !day.Contains(at) {
		t.Fatalf("day=%v, want Monday containing %v", day, at)
	}
	if day.Previous().Contains(at) || !day.Previous().Contains(at.Add(-2*time.Hour)) {
		t.Fatalf("previous day boundaries wrong: %v", day.Previous())
	}

	week := WeekPeriod(time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC), time.UTC)
	if week.Start.Weekday() != WeekStartsOn || week.Start.Day() != 10 {
		t.Fatalf("week start=%v, want Monday March 10", week.Start)
	}
	if y, w := WeekOf(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), nil); y != 2025 || w != 1 {
		t.Fatalf("WeekOf=%d/%d, want 2025/1", y, w)
	}
}

func TestCompleteFailsClosedWhenStorageBreaks(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	adm := admitCustom(t, env.svc, "Journal", 40)
	before, err := env.svc.Player(ctx, testUser)
	if err != nil {
		t.Fatalf("Player: %v", err)
	}

	published := env.events.count()
	if _, err := env.svc.db.ExecContext(ctx, "DROP TABLE progress_records"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	_, err = env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err=%v, want ErrStorageUnavailable", err)
	}

	after, err := env.svc.Player(ctx, testUser)
	if err != nil {
		t.Fatalf("Player: %v", err)
	}
	if after.XP != before.XP || after.Level != before.Level || after.CurrentStreak != before.CurrentStreak {
		t.Fatalf("player changed after failed completion: before=%+v after=%+v", before, after)
	}
	q, err := env.svc.Quest(ctx, testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("Quest: %v", err)
	}
	if q.Status != string(StatusActive) {
		t.Fatalf("status=%s, want active", q.Status)
	}
	if n := env.events.count(); n != published {
		t.Fatalf("events=%d, want %d: a failed completion publishes nothing", n, published)
	}

	_ = env.svc.db.Close()
	if _, err := env.svc.Player(ctx, testUser); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("closed db err=%v, want ErrStorageUnavailable", err)
	}
}

func TestCanceledContextIsNotStorageFailure(t *testing.T) {
	env := newTestService(t)
	adm := admitCustom(t, env.svc, "Stretch", 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.svc.CompleteQuest(ctx, testUser, adm.QuestID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("canceled context reported as storage failure: %v", err)
	}

	q, err := env.svc.Quest(context.Background(), testUser, adm.QuestID)
	if err != nil {
		t.Fatalf("Quest: %v", err)
	}
	if q.Status != string(StatusActive) {
		t.Fatalf("status=%s, want active", q.Status)
	}
}

func TestThisWeek(t *testing.T) {
	env := newTestService(t)
	env.clock.Advance(4 * 24 * time.Hour)

	week := env.svc.ThisWeek()
	if week.Start.Weekday() != WeekStartsOn || week.Start.Day() != 10 || week.End.Day() != 17 {
		t.Fatalf("week=%v, want March 10 to 17", week)
	}
	if !week.Contains(env.clock.Now()) {
		t.Fatalf("week %v does not contain now", week)
	}
}

func TestParseCategoryAndDifficulty(t *testing.T) {
	cats := map[string]Category{
		"":         CategoryCustom,
		"Fitness":  CategoryExercise,
		"reading":  CategoryLearning,
		"wellness": CategoryHealth,
		"health":   CategoryHealth,
	}
	for in, want := range cats {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Errorf("ParseCategory(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	diffs := map[string]Difficulty{"": DifficultyEasy, "med": DifficultyMedium, "H": DifficultyHard, "extreme": DifficultyExtreme}
	for in, want := range diffs {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q)=%q,%v want %q", in, got, err, want)
		}
	}

	var ve ValidationError
	if _, err := ParseCategory("gardening"); !errors.As(err, &ve) || ve.Field != "category" {
		t.Fatalf("err=%v, want category validation error", err)
	}
	if _, err := ParseDifficulty("legendary"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}
}
