package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/internal/service"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON instead of text"}
}

func (e *env) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "status",
			Usage:  "show overall progress, streak and goal",
			Flags:  []cli.Flag{jsonFlag()},
			Action: e.status,
		},
		{
			Name:  "video",
			Usage: "record video progress",
			Subcommands: []*cli.Command{
				{Name: "done", ArgsUsage: "<module> <video>", Usage: "mark a video watched", Action: e.videoDone(true)},
				{Name: "undo", ArgsUsage: "<module> <video>", Usage: "unmark a watched video", Action: e.videoDone(false)},
				{Name: "open", ArgsUsage: "<module> <video>", Usage: "remember a video as last watched", Action: e.videoOpen},
				{Name: "seek", ArgsUsage: "<module> <video> <seconds>", Usage: "save the playback position", Action: e.videoSeek},
			},
		},
		{
			Name:  "lab",
			Usage: "record lab completion",
			Subcommands: []*cli.Command{
				{Name: "done", ArgsUsage: "<module>", Action: e.labDone(true)},
				{Name: "undo", ArgsUsage: "<module>", Action: e.labDone(false)},
			},
		},
		{
			Name:  "flashcards",
			Usage: "record that a module's flashcards were imported",
			Subcommands: []*cli.Command{
				{Name: "done", ArgsUsage: "<module>", Action: e.flashcardsDone(true)},
				{Name: "undo", ArgsUsage: "<module>", Action: e.flashcardsDone(false)},
			},
		},
		{
			Name:      "rate",
			Usage:     "rate confidence in a module (0 clears)",
			ArgsUsage: "<module> <0-5>",
			Action:    e.rate,
		},
		{
			Name:  "streak",
			Usage: "study streak",
			Subcommands: []*cli.Command{
				{Name: "show", Flags: []cli.Flag{jsonFlag()}, Action: e.streakShow},
				{
					Name:   "recent",
					Flags:  []cli.Flag{&cli.IntFlag{Name: "days", Value: 7}, jsonFlag()},
					Action: e.streakRecent,
				},
				{
					Name:   "calendar",
					Usage:  "activity per day of a month",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "month", Usage: "YYYY-MM, default current month"}, jsonFlag()},
					Action: e.streakCalendar,
				},
				{Name: "milestones", Flags: []cli.Flag{jsonFlag()}, Action: e.streakMilestones},
			},
		},
		{
			Name:  "perf",
			Usage: "performance analytics",
			Subcommands: []*cli.Command{
				{
					Name:   "recent",
					Flags:  []cli.Flag{&cli.IntFlag{Name: "days", Value: 14}, jsonFlag()},
					Action: e.perfRecent,
				},
				{
					Name:   "velocity",
					Flags:  []cli.Flag{&cli.IntFlag{Name: "weeks", Value: 4}, jsonFlag()},
					Action: e.perfVelocity,
				},
				{Name: "predict", Flags: []cli.Flag{jsonFlag()}, Action: e.perfPredict},
				{Name: "confidence", Flags: []cli.Flag{jsonFlag()}, Action: e.perfConfidence},
				{Name: "week", Flags: []cli.Flag{jsonFlag()}, Action: e.perfWeek},
			},
		},
		{
			Name:  "goal",
			Usage: "learning goals",
			Subcommands: []*cli.Command{
				{
					Name:      "create",
					ArgsUsage: "[flags] <weekly|monthly|custom>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "preset", Usage: "beginner, moderate or intense"},
						&cli.IntFlag{Name: "modules"},
						&cli.IntFlag{Name: "videos"},
						&cli.IntFlag{Name: "labs"},
						&cli.IntFlag{Name: "flashcards"},
						&cli.IntFlag{Name: "days", Usage: "duration of a custom goal"},
					},
					Action: e.goalCreate,
				},
				{Name: "show", Flags: []cli.Flag{jsonFlag()}, Action: e.goalShow},
				{Name: "complete", Action: e.goalComplete},
				{Name: "delete", Action: e.goalDelete},
				{
					Name:   "history",
					Flags:  []cli.Flag{&cli.IntFlag{Name: "limit", Value: 10}, jsonFlag()},
					Action: e.goalHistory,
				},
				{Name: "presets", Action: e.goalPresets},
			},
		},
		{
			Name:   "recommend",
			Usage:  "suggest what to study next",
			Flags:  []cli.Flag{jsonFlag()},
			Action: e.recommend,
		},
		{
			Name:      "export",
			Usage:     "write all progress data as JSON",
			ArgsUsage: "<file|->",
			Action:    e.export,
		},
		{
			Name:      "import",
			Usage:     "load progress data written by export",
			ArgsUsage: "<file>",
			Action:    e.importProgress,
		},
		{
			Name:   "reset",
			Usage:  "delete all progress data",
			Flags:  []cli.Flag{&cli.BoolFlag{Name: "force", Usage: "required"}},
			Action: e.reset,
		},
		{
			Name:  "settings",
			Usage: "application settings",
			Subcommands: []*cli.Command{
				{Name: "show", Flags: []cli.Flag{jsonFlag()}, Action: e.settingsShow},
				{Name: "theme", ArgsUsage: "<name>", Action: e.settingsTheme},
				{Name: "resources", ArgsUsage: "<path>", Action: e.settingsResources},
				{Name: "dashboard", ArgsUsage: "[<section> <on|off>]", Action: e.settingsDashboard},
			},
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func intArg(c *cli.Context, i int, name string) (int, error) {
	s := c.Args().Get(i)
	if s == "" {
		return 0, usageErr("missing %s", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageErr("%s must be a number, got %q", name, s)
	}
	return n, nil
}

func (e *env) moduleArg(c *cli.Context) (domain.Module, error) {
	id, err := intArg(c, 0, "module")
	if err != nil {
		return domain.Module{}, err
	}
	m := domain.FindModule(e.modules, id)
	if m == nil {
		return domain.Module{}, fmt.Errorf("module %d: %w", id, domain.ErrNotFound)
	}
	return *m, nil
}

func (e *env) videoArgs(c *cli.Context) (domain.Module, domain.Video, error) {
	m, err := e.moduleArg(c)
	if err != nil {
		return domain.Module{}, domain.Video{}, err
	}
	id := c.Args().Get(1)
	if id == "" {
		return domain.Module{}, domain.Video{}, usageErr("missing video")
	}
	v := m.FindVideo(id)
	if v == nil {
		return domain.Module{}, domain.Video{}, fmt.Errorf("video %q in module %d: %w", id, m.ID, domain.ErrNotFound)
	}
	return m, *v, nil
}

// refreshGoal keeps the active goal's progress current after a change.
func (e *env) refreshGoal(c *cli.Context) error {
	_, err := e.goals.UpdateGoalProgress(c.Context, e.modules)
	return err
}

func (e *env) status(c *cli.Context) error {
	stats, err := e.activity.ComprehensiveStats(c.Context, e.modules)
	if err != nil {
		return err
	}
	overall, err := e.progress.OverallProgress(c.Context, e.modules)
	if err != nil {
		return err
	}
	goal, err := e.goals.UpdateGoalProgress(c.Context, e.modules)
	if err != nil {
		return err
	}
	atRisk, err := e.streak.IsStreakAtRisk(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, struct {
			service.ComprehensiveStats
			OverallProgress float64      `json:"overallProgress"`
			Goal            *domain.Goal `json:"goal"`
		}{stats, overall, goal})
	}

	w := c.App.Writer
	p := stats.Progress
	fmt.Fprintf(w, "Overall progress: %.1f%%\n", overall)
	fmt.Fprintf(w, "Modules:    %d/%d\n", p.CompletedModules, p.TotalModules)
	fmt.Fprintf(w, "Videos:     %d/%d\n", p.CompletedVideos, p.TotalVideos)
	fmt.Fprintf(w, "Labs:       %d/%d\n", p.CompletedLabs, p.TotalLabs)
	fmt.Fprintf(w, "Flashcards: %d/%d\n", p.AddedFlashcards, p.TotalFlashcards)
	if p.AvgConfidence > 0 {
		fmt.Fprintf(w, "Confidence: %.1f/5\n", p.AvgConfidence)
	}
	fmt.Fprintf(w, "Streak:     %d days (longest %d)", stats.Streak.CurrentStreak, stats.Streak.LongestStreak)
	if atRisk {
		fmt.Fprint(w, ", study today to keep it")
	}
	fmt.Fprintln(w)
	if goal != nil {
		fmt.Fprintf(w, "Goal:       %s, %.0f%% complete, ends %s\n", goal.Type, service.GoalCompletion(goal), goal.EndDate)
	}
	return nil
}

func (e *env) videoDone(complete bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		m, v, err := e.videoArgs(c)
		if err != nil {
			return err
		}
		if err := e.activity.RecordVideoCompletion(c.Context, m.ID, v.ID, complete, e.modules); err != nil {
			return err
		}
		if err := e.refreshGoal(c); err != nil {
			return err
		}
		return e.printModuleProgress(c, m)
	}
}

func (e *env) videoOpen(c *cli.Context) error {
	m, v, err := e.videoArgs(c)
	if err != nil {
		return err
	}
	if err := e.activity.RecordVideoOpened(c.Context, m.ID, v.ID); err != nil {
		return err
	}
	pos, err := e.progress.VideoPosition(c.Context, m.ID, v.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Day %d: %s / %s", m.Day, m.Title, v.Title)
	if pos > 0 {
		fmt.Fprintf(c.App.Writer, " (resume at %s)", formatSeconds(pos))
	}
	fmt.Fprintln(c.App.Writer)
	return nil
}

func (e *env) videoSeek(c *cli.Context) error {
	m, v, err := e.videoArgs(c)
	if err != nil {
		return err
	}
	raw := c.Args().Get(2)
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return usageErr("seconds must be a finite non-negative number, got %q", raw)
	}
	if err := e.activity.RecordVideoPosition(c.Context, m.ID, v.ID, seconds); err != nil {
		return err
	}
	pct, err := e.progress.VideoWatchPercentage(c.Context, m.ID, v.ID, v.DurationSeconds())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s saved at %s (%.0f%% watched)\n", v.Title, formatSeconds(seconds), pct)
	return nil
}

func (e *env) labDone(complete bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		m, err := e.moduleArg(c)
		if err != nil {
			return err
		}
		if !m.HasLab() {
			return usageErr("module %d has no lab", m.ID)
		}
		if err := e.activity.RecordLabCompletion(c.Context, m.ID, complete, e.modules); err != nil {
			return err
		}
		if err := e.refreshGoal(c); err != nil {
			return err
		}
		return e.printModuleProgress(c, m)
	}
}

func (e *env) flashcardsDone(added bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		m, err := e.moduleArg(c)
		if err != nil {
			return err
		}
		if !m.HasFlashcards() {
			return usageErr("module %d has no flashcards", m.ID)
		}
		if err := e.activity.RecordFlashcardsAdded(c.Context, m.ID, added, e.modules); err != nil {
			return err
		}
		if err := e.refreshGoal(c); err != nil {
			return err
		}
		return e.printModuleProgress(c, m)
	}
}

func (e *env) printModuleProgress(c *cli.Context, m domain.Module) error {
	p, err := e.progress.ModuleProgress(c.Context, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Day %d: %s is %.0f%% complete\n", m.Day, m.Title, p)
	return nil
}

func (e *env) rate(c *cli.Context) error {
	m, err := e.moduleArg(c)
	if err != nil {
		return err
	}
	confidence, err := intArg(c, 1, "confidence")
	if err != nil {
		return err
	}
	if confidence < domain.ConfidenceUnrated || confidence > domain.ConfidenceMax {
		return usageErr("confidence must be between 0 and 5")
	}
	if err := e.activity.RecordConfidenceRating(c.Context, m.ID, confidence, e.modules); err != nil {
		return err
	}
	if confidence == domain.ConfidenceUnrated {
		fmt.Fprintf(c.App.Writer, "Cleared confidence for day %d\n", m.Day)
	} else {
		fmt.Fprintf(c.App.Writer, "Day %d confidence: %d/5\n", m.Day, confidence)
	}
	return nil
}

func (e *env) streakShow(c *cli.Context) error {
	st, err := e.streak.Info(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, st)
	}
	atRisk, err := e.streak.IsStreakAtRisk(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Current streak: %d days\n", st.CurrentStreak)
	fmt.Fprintf(w, "Longest streak: %d days\n", st.LongestStreak)
	if st.LastStudyDate != "" {
		fmt.Fprintf(w, "Last studied:   %s\n", st.LastStudyDate)
	}
	if atRisk {
		fmt.Fprintln(w, "Study today to keep your streak going.")
	}
	return nil
}

func (e *env) streakRecent(c *cli.Context) error {
	days, err := e.streak.RecentActivity(c.Context, c.Int("days"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, days)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Date, d.ActivitiesCompleted, strings.Repeat("#", d.ActivitiesCompleted))
	}
	return tw.Flush()
}

func (e *env) streakCalendar(c *cli.Context) error {
	month := e.clock()
	if s := c.String("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return usageErr("month must be YYYY-MM, got %q", s)
		}
		month = t
	}
	cal, err := e.streak.Calendar(c.Context, month.Year(), month.Month())
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, cal)
	}

	w := c.App.Writer
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	fmt.Fprintf(w, "%s\nMo Tu We Th Fr Sa Su\n", first.Format("January 2006"))
	fmt.Fprint(w, strings.Repeat("   ", (int(first.Weekday())+6)%7))
	shades := []string{" .", " -", " +", " *", " #"}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		fmt.Fprint(w, shades[cal[d.Format("2006-01-02")].Intensity])
		if d.Weekday() == time.Sunday {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, " ")
		}
	}
	fmt.Fprintln(w)
	return nil
}

func (e *env) streakMilestones(c *cli.Context) error {
	ms, err := e.streak.Milestones(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, ms)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, m := range ms {
		mark := " "
		if m.Achieved {
			mark = "x"
		}
		fmt.Fprintf(tw, "[%s]\t%s\t%d days\t%.0f%%\n", mark, m.Name, m.Days, m.Progress)
	}
	return tw.Flush()
}

func (e *env) perfRecent(c *cli.Context) error {
	snaps, err := e.performance.RecentPerformance(c.Context, c.Int("days"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, snaps)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPROGRESS\tMODULES\tVIDEOS\tLABS\tCONFIDENCE")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%.1f%%\t%d\t%d\t%d\t%.1f\n", s.Date, s.OverallProgress, s.ModulesCompleted, s.VideosCompleted, s.LabsCompleted, s.AvgConfidence)
	}
	return tw.Flush()
}

func (e *env) perfVelocity(c *cli.Context) error {
	weeks, err := e.performance.WeeklyVelocity(c.Context, c.Int("weeks"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, weeks)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, v := range weeks {
		fmt.Fprintf(tw, "%s\t%d modules\n", v.Label, v.ModulesCompleted)
	}
	return tw.Flush()
}

func (e *env) perfPredict(c *cli.Context) error {
	p, err := e.performance.PredictCompletionDate(c.Context, e.modules, len(e.modules))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, p)
	}
	w := c.App.Writer
	switch p.Status {
	case domain.PredictionInsufficientData:
		fmt.Fprintln(w, "Not enough history yet. Study for a week to get an estimate.")
	case domain.PredictionCompleted:
		fmt.Fprintln(w, "Course complete.")
	case domain.PredictionUnknown:
		fmt.Fprintln(w, "No modules completed in the last two weeks, so there is no estimate.")
	default:
		fmt.Fprintf(w, "Estimated completion: %s\n", p.Date.Format("Mon Jan 2, 2006"))
	}
	return nil
}

func (e *env) perfConfidence(c *cli.Context) error {
	d, err := e.performance.ConfidenceDistribution(c.Context, e.modules)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, d)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Needs review (1-2)\t%d\n", d.NeedsReview)
	fmt.Fprintf(tw, "Moderate (3)\t%d\n", d.Moderate)
	fmt.Fprintf(tw, "Confident (4-5)\t%d\n", d.Confident)
	fmt.Fprintf(tw, "Not rated\t%d\n", d.NotRated)
	return tw.Flush()
}

func (e *env) perfWeek(c *cli.Context) error {
	sum, err := e.performance.CurrentWeekSummary(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, sum)
	}
	w := c.App.Writer
	if sum == nil {
		fmt.Fprintln(w, "No activity recorded this week.")
		return nil
	}
	fmt.Fprintf(w, "Week of %s\n", sum.WeekStart)
	fmt.Fprintf(w, "Modules completed: %d\n", sum.ModulesCompletedThisWeek)
	fmt.Fprintf(w, "Videos completed:  %d\n", sum.VideosCompletedThisWeek)
	fmt.Fprintf(w, "Labs completed:    %d\n", sum.LabsCompletedThisWeek)
	fmt.Fprintf(w, "Progress gained:   %.1f%%\n", sum.ProgressGain)
	return nil
}

func (e *env) goalCreate(c *cli.Context) error {
	goalType := domain.GoalType(c.Args().First())
	if goalType == "" {
		return usageErr("missing goal type")
	}

	var targets domain.GoalTargets
	if key := c.String("preset"); key != "" {
		preset, err := e.goals.Preset(key)
		if err != nil {
			return err
		}
		targets.GoalCounters = preset.Weekly
	}
	if c.IsSet("modules") {
		targets.ModulesCompleted = c.Int("modules")
	}
	if c.IsSet("videos") {
		targets.VideosWatched = c.Int("videos")
	}
	if c.IsSet("labs") {
		targets.LabsCompleted = c.Int("labs")
	}
	if c.IsSet("flashcards") {
		targets.FlashcardsAdded = c.Int("flashcards")
	}
	targets.CustomDays = c.Int("days")

	goal, err := e.goals.CreateGoal(c.Context, goalType, targets)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Created %s goal %s, %s to %s\n", goal.Type, goal.ID, goal.StartDate, goal.EndDate)
	return nil
}

func (e *env) goalShow(c *cli.Context) error {
	goal, err := e.goals.UpdateGoalProgress(c.Context, e.modules)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, goal)
	}
	w := c.App.Writer
	if goal == nil {
		fmt.Fprintln(w, "No active goal.")
		return nil
	}
	fmt.Fprintf(w, "%s goal, %s to %s: %.0f%% complete\n", goal.Type, goal.StartDate, goal.EndDate, service.GoalCompletion(goal))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []struct {
		name             string
		target, progress int
	}{
		{"Modules", goal.Target.ModulesCompleted, goal.Progress.ModulesCompleted},
		{"Videos", goal.Target.VideosWatched, goal.Progress.VideosWatched},
		{"Labs", goal.Target.LabsCompleted, goal.Progress.LabsCompleted},
		{"Flashcards", goal.Target.FlashcardsAdded, goal.Progress.FlashcardsAdded},
	}
	for _, r := range rows {
		if r.target > 0 {
			fmt.Fprintf(tw, "  %s\t%d/%d\n", r.name, r.progress, r.target)
		}
	}
	return tw.Flush()
}

func (e *env) goalComplete(c *cli.Context) error {
	goal, err := e.goals.UpdateGoalProgress(c.Context, e.modules)
	if err != nil {
		return err
	}
	if goal == nil {
		fmt.Fprintln(c.App.Writer, "No active goal.")
		return nil
	}
	if err := e.goals.CompleteCurrentGoal(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Goal archived at %.0f%%.\n", service.GoalCompletion(goal))
	return nil
}

func (e *env) goalDelete(c *cli.Context) error {
	if err := e.goals.DeleteCurrentGoal(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Goal deleted.")
	return nil
}

func (e *env) goalHistory(c *cli.Context) error {
	history, err := e.goals.GoalHistory(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, history)
	}
	rate, err := e.goals.SuccessRate(c.Context)
	if err != nil {
		return err
	}
	streak, err := e.goals.StreakGoals(c.Context)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Success rate: %.0f%%, %d achieved in a row\n", rate, streak)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range history {
		result := "missed"
		if r.Achieved {
			result = "achieved"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\n", r.EndDate, r.Type, r.CompletionRate, result)
	}
	return tw.Flush()
}

func (e *env) goalPresets(c *cli.Context) error {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tMODULES\tVIDEOS\tLABS\tFLASHCARDS\tDESCRIPTION")
	for _, p := range e.goals.Presets() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", p.Key, p.Weekly.ModulesCompleted, p.Weekly.VideosWatched, p.Weekly.LabsCompleted, p.Weekly.FlashcardsAdded, p.Description)
	}
	return tw.Flush()
}

func (e *env) recommend(c *cli.Context) error {
	recs, err := e.insights.Recommendations(c.Context, e.modules)
	if err != nil {
		return err
	}
	insights, err := e.insights.Insights(c.Context, e.modules)
	if err != nil {
		return err
	}
	milestones, err := e.insights.CourseMilestones(c.Context, e.modules)
	if err != nil {
		return err
	}
	upcoming, err := e.insights.UpcomingModules(c.Context, e.modules, 5)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, struct {
			Recommendations []domain.Recommendation  `json:"recommendations"`
			Insights        []domain.Insight         `json:"insights"`
			Milestones      []domain.CourseMilestone `json:"milestones"`
			Upcoming        []domain.Module          `json:"upcoming"`
		}{recs, insights, milestones, upcoming})
	}

	w := c.App.Writer
	for _, in := range insights {
		fmt.Fprintf(w, "* %s\n", in.Text)
	}
	if len(recs) > 0 {
		fmt.Fprintln(w, "\nRecommended:")
		for _, r := range recs {
			fmt.Fprintf(w, "  %s: %s\n", r.Title, r.Description)
		}
	}
	for _, m := range milestones {
		if m.Next {
			fmt.Fprintf(w, "\nNext milestone: %s (%d%%), %d modules to go\n", m.Label, m.Percent, m.ModulesRemaining)
		}
	}
	if len(upcoming) > 0 {
		fmt.Fprintln(w, "\nUp next:")
		for _, m := range upcoming {
			fmt.Fprintf(w, "  Day %d: %s\n", m.Day, m.Title)
		}
	}
	return nil
}

func (e *env) export(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageErr("missing output file")
	}
	data, err := e.progress.ExportProgress(c.Context)
	if err != nil {
		return err
	}
	if path == "-" {
		return printJSON(c.App.Writer, data)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := printJSON(f, data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "Exported %d keys to %s\n", len(data), path)
	return nil
}

func (e *env) importProgress(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageErr("missing input file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return usageErr("%s is not a progress export: %v", path, err)
	}
	n, err := e.progress.ImportProgress(c.Context, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d keys\n", n)
	return nil
}

func (e *env) reset(c *cli.Context) error {
	if !c.Bool("force") {
		return usageErr("reset deletes all progress; pass --force to confirm")
	}
	if err := e.progress.ClearAllProgress(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "All progress deleted.")
	return nil
}

func (e *env) settingsShow(c *cli.Context) error {
	st, err := e.settings.Get(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, st)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Theme:     %s\n", st.Theme)
	resources := st.ResourcesPath
	if resources == "" {
		resources = "(not set)"
	}
	fmt.Fprintf(w, "Resources: %s\n", resources)
	fmt.Fprintf(w, "Database:  %s\n", e.storeDescription())
	return nil
}

func (e *env) storeDescription() string {
	if e.cfg.Ephemeral {
		return "in memory"
	}
	return e.cfg.DatabasePath
}

func (e *env) settingsTheme(c *cli.Context) error {
	theme := c.Args().First()
	if theme == "" {
		fmt.Fprintln(c.App.Writer, strings.Join(domain.Themes, "\n"))
		return nil
	}
	if _, err := e.settings.SetTheme(c.Context, theme); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Theme set to %s\n", theme)
	return nil
}

func (e *env) settingsResources(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return usageErr("missing path")
	}
	if _, err := e.settings.SetResourcesPath(c.Context, path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Resources path set to %s\n", path)
	return nil
}

func (e *env) settingsDashboard(c *cli.Context) error {
	var cfg domain.DashboardConfig
	var err error
	if c.NArg() == 0 {
		cfg, err = e.settings.DashboardConfig(c.Context)
	} else {
		var enabled bool
		switch c.Args().Get(1) {
		case "on":
			enabled = true
		case "off":
		default:
			return usageErr("state must be on or off")
		}
		cfg, err = e.settings.SetSectionEnabled(c.Context, c.Args().First(), enabled)
	}
	if err != nil {
		return err
	}

	titles := make(map[string]string)
	for _, s := range service.DashboardSections() {
		titles[s.ID] = s.Title
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	for _, s := range cfg.Sections {
		state := "off"
		if s.Enabled {
			state = "on"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, titles[s.ID], state)
	}
	return tw.Flush()
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	h, m, sec := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
