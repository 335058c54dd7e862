package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quadrantplanner/dto"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// AnalyticsService serves the reporting endpoints. Reads degrade to
// zero-valued responses instead of surfacing aggregate errors.
type AnalyticsService struct {
	store  store.Store
	score  *ScoreService
	logger *slog.Logger
}

func NewAnalyticsService(st store.Store, score *ScoreService, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{store: st, score: score, logger: logger}
}

// Distribution returns the active-task spread across quadrants.
func (s *AnalyticsService) Distribution(ctx context.Context, userID string) *model.QuadrantDistribution {
	dist, err := activeDistribution(ctx, s.store, userID)
	if err != nil {
		s.logger.Warn("quadrant distribution unavailable", "user_id", userID, "error", err)
		return &model.QuadrantDistribution{UserID: userID}
	}
	return dist
}

// QuadrantAnalysis pairs the distribution with the threshold
// recommendations and the ideal spread.
func (s *AnalyticsService) QuadrantAnalysis(ctx context.Context, userID string) *dto.QuadrantAnalysisResponse {
	dist := s.Distribution(ctx, userID)
	hasGoals := s.hasActiveGoals(ctx, userID)
	return &dto.QuadrantAnalysisResponse{
		Distribution:      *dist,
		Recommendations:   recommendations(dist, hasGoals),
		IdealDistribution: idealDistribution,
	}
}

// StagingReport returns staging throughput numbers, zeroed when the
// aggregate is unavailable.
func (s *AnalyticsService) StagingReport(ctx context.Context, userID string) *model.StagingAnalytics {
	sa, err := s.store.StagingAnalytics(ctx, userID)
	if err != nil {
		s.logger.Warn("staging analytics unavailable", "user_id", userID, "error", err)
		return &model.StagingAnalytics{}
	}
	sa.StagingEfficiency = clampScore(sa.StagingEfficiency)
	return sa
}

// Trends returns per-day activity counts for the requested number of
// days ending today.
func (s *AnalyticsService) Trends(ctx context.Context, userID string, days int) []model.ProductivityTrend {
	if days <= 0 {
		days = 30
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(days - 1))
	trends, err := s.store.ProductivityTrends(ctx, userID, from, to)
	if err != nil {
		s.logger.Warn("productivity trends unavailable", "user_id", userID, "error", err)
		return []model.ProductivityTrend{}
	}
	return trends
}

// Velocity summarizes completion throughput over the requested period.
func (s *AnalyticsService) Velocity(ctx context.Context, userID string, days int) *model.CompletionVelocity {
	if days <= 0 {
		days = 7
	}
	trends := s.Trends(ctx, userID, days)

	tasksCompleted := 0
	for _, tr := range trends {
		tasksCompleted += tr.TasksCompleted
	}
	perDay := 0.0
	if len(trends) > 0 {
		perDay = float64(tasksCompleted) / float64(len(trends))
	}

	return &model.CompletionVelocity{
		Period:             fmt.Sprintf("%dd", days),
		TasksCompleted:     tasksCompleted,
		GoalsCompleted:     s.goalsCompleted(ctx, userID),
		AverageTasksPerDay: perDay,
		VelocityTrend:      string(classifyTrend(trends)),
	}
}

// insightsWindowDays is the lookback for the trend rows and velocity
// bundled into the insights report.
const insightsWindowDays = 30

// Insights turns the score report into plain-language observations and
// action items, alongside the 30-day trend rows and velocity.
func (s *AnalyticsService) Insights(ctx context.Context, userID string) *dto.InsightsResponse {
	score := s.score.ProductivityScore(ctx, userID)
	trends := s.Trends(ctx, userID, insightsWindowDays)
	velocity := s.Velocity(ctx, userID, insightsWindowDays)

	var insights []string
	switch {
	case score.OverallScore >= 80:
		insights = append(insights, "Excellent productivity! You're effectively managing your quadrants.")
	case score.OverallScore >= 60:
		insights = append(insights, "Good productivity with room for improvement in task prioritization.")
	default:
		insights = append(insights, "Your productivity could benefit from better quadrant organization.")
	}

	switch score.ScoreTrend {
	case model.TrendImproving:
		insights = append(insights, "Your completion rate is trending upward. Keep up the momentum!")
	case model.TrendDeclining:
		insights = append(insights, "Your completion rate has dipped recently. Consider reviewing your workload.")
	}

	if velocity.AverageTasksPerDay < 1 {
		insights = append(insights, "You're completing less than one task per day. Try breaking work into smaller pieces.")
	} else if velocity.AverageTasksPerDay > 5 {
		insights = append(insights, "High task throughput. Make sure the important work isn't crowded out by volume.")
	}

	var actions []string
	if score.QuadrantBalanceScore < 50 {
		actions = append(actions, "Rebalance your tasks: aim for most of your work in Q2 (important, not urgent).")
	}
	if score.StagingEfficiencyScore < 60 {
		actions = append(actions, "Schedule a regular time to process your staging zone into quadrants.")
	}
	actions = append(actions, score.Recommendations...)

	return &dto.InsightsResponse{
		Score:       *score,
		Trends:      trends,
		Velocity:    *velocity,
		KeyInsights: insights,
		ActionItems: actions,
	}
}

// GoalProgress reports per-goal completion stats across the user's
// goals, archived goals included.
func (s *AnalyticsService) GoalProgress(ctx context.Context, userID string) *dto.GoalProgressResponse {
	resp := &dto.GoalProgressResponse{Goals: []model.GoalWithStats{}}
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID}, nil)
	if err != nil {
		s.logger.Warn("goal progress unavailable", "user_id", userID, "error", err)
		return resp
	}

	var totalRate float64
	for _, g := range goals {
		tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID}, store.TaskOrderDefault, nil)
		if err != nil {
			s.logger.Warn("goal progress unavailable", "goal_id", g.ID, "error", err)
			continue
		}
		stats := goalStatsFromTasks(tasks)
		totalRate += stats.CompletionRate
		resp.Goals = append(resp.Goals, model.GoalWithStats{Goal: g, GoalStats: *stats})
	}
	resp.TotalGoals = len(resp.Goals)
	if resp.TotalGoals > 0 {
		resp.AverageCompletionRate = totalRate / float64(resp.TotalGoals)
	}
	return resp
}

// goalGroupRollup accumulates one timeframe or category bucket.
type goalGroupRollup struct {
	totalGoals     int
	activeGoals    int
	completedGoals int
	totalTasks     int
	completedTasks int
	rateSum        float64
}

func (s *AnalyticsService) rollupGoals(ctx context.Context, userID string, key func(model.Goal) string) map[string]*goalGroupRollup {
	groups := make(map[string]*goalGroupRollup)
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID}, nil)
	if err != nil {
		s.logger.Warn("goal rollup unavailable", "user_id", userID, "error", err)
		return groups
	}

	for _, g := range goals {
		group := groups[key(g)]
		if group == nil {
			group = &goalGroupRollup{}
			groups[key(g)] = group
		}
		group.totalGoals++
		if !g.Archived {
			group.activeGoals++
		}

		tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID}, store.TaskOrderDefault, nil)
		if err != nil {
			s.logger.Warn("goal rollup unavailable", "goal_id", g.ID, "error", err)
			continue
		}
		stats := goalStatsFromTasks(tasks)
		group.totalTasks += stats.TotalTasks
		group.completedTasks += stats.CompletedTasks
		group.rateSum += stats.CompletionRate
		// a goal counts completed once every one of its tasks is done
		if stats.TotalTasks > 0 && stats.CompletedTasks == stats.TotalTasks {
			group.completedGoals++
		}
	}
	return groups
}

// TimeframeAnalysis summarizes goal progress per timeframe, in the
// fixed timeframe order. Timeframes with no goals are omitted.
func (s *AnalyticsService) TimeframeAnalysis(ctx context.Context, userID string) []model.TimeframeSummary {
	groups := s.rollupGoals(ctx, userID, func(g model.Goal) string { return string(g.Timeframe) })

	summaries := []model.TimeframeSummary{}
	for _, tf := range []model.GoalTimeframe{model.ThreeMonths, model.SixMonths, model.OneYear, model.Ongoing} {
		group := groups[string(tf)]
		if group == nil {
			continue
		}
		summaries = append(summaries, model.TimeframeSummary{
			Timeframe:             string(tf),
			TotalGoals:            group.totalGoals,
			ActiveGoals:           group.activeGoals,
			CompletedGoals:        group.completedGoals,
			TotalTasks:            group.totalTasks,
			CompletedTasks:        group.completedTasks,
			AverageCompletionRate: group.rateSum / float64(group.totalGoals),
		})
	}
	return summaries
}

// CategoryAnalysis summarizes goal progress per category. Categories
// with no goals are omitted.
func (s *AnalyticsService) CategoryAnalysis(ctx context.Context, userID string) []model.CategorySummary {
	groups := s.rollupGoals(ctx, userID, func(g model.Goal) string { return string(g.Category) })

	summaries := []model.CategorySummary{}
	for _, cat := range []model.GoalCategory{
		model.CategoryCareer, model.CategoryHealth, model.CategoryRelationships,
		model.CategoryLearning, model.CategoryFinancial, model.CategoryPersonal,
	} {
		group := groups[string(cat)]
		if group == nil {
			continue
		}
		summaries = append(summaries, model.CategorySummary{
			Category:              string(cat),
			TotalGoals:            group.totalGoals,
			ActiveGoals:           group.activeGoals,
			CompletedGoals:        group.completedGoals,
			TotalTasks:            group.totalTasks,
			CompletedTasks:        group.completedTasks,
			AverageCompletionRate: group.rateSum / float64(group.totalGoals),
		})
	}
	return summaries
}

// PriorityAnalysis breaks task throughput down by priority. Priorities
// with no tasks are omitted.
func (s *AnalyticsService) PriorityAnalysis(ctx context.Context, userID string) []model.PriorityAnalysis {
	analyses := []model.PriorityAnalysis{}
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID}, store.TaskOrderDefault, nil)
	if err != nil {
		s.logger.Warn("priority analysis unavailable", "user_id", userID, "error", err)
		return analyses
	}

	now := time.Now().UTC()
	for _, priority := range []model.Priority{
		model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent,
	} {
		analysis := model.PriorityAnalysis{Priority: string(priority)}
		var completionDays float64
		for _, t := range tasks {
			if t.Priority != priority {
				continue
			}
			analysis.TotalTasks++
			if t.Completed {
				analysis.CompletedTasks++
				if t.CompletedAt != nil {
					completionDays += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
				}
			} else if t.DueDate != nil && t.DueDate.Before(now) {
				analysis.OverdueTasks++
			}
		}
		if analysis.TotalTasks == 0 {
			continue
		}
		analysis.CompletionRate = float64(analysis.CompletedTasks) / float64(analysis.TotalTasks) * 100
		if analysis.CompletedTasks > 0 {
			avg := completionDays / float64(analysis.CompletedTasks)
			analysis.AverageCompletionTime = &avg
		}
		analyses = append(analyses, analysis)
	}
	return analyses
}

// OverdueAnalysis breaks non-completed tasks past their due date down
// by quadrant, priority, and age bucket.
func (s *AnalyticsService) OverdueAnalysis(ctx context.Context, userID string) *model.OverdueAnalysis {
	analysis := &model.OverdueAnalysis{
		OverdueByQuadrant: map[string]int{},
		OverdueByPriority: map[string]int{},
		OverdueByDays:     map[string]int{},
	}
	completed := false
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, Completed: &completed}, store.TaskOrderDefault, nil)
	if err != nil {
		s.logger.Warn("overdue analysis unavailable", "user_id", userID, "error", err)
		return analysis
	}

	now := time.Now().UTC()
	for _, t := range tasks {
		if t.DueDate == nil || !t.DueDate.Before(now) {
			continue
		}
		// a deadline missed by any margin counts as one day overdue
		daysOverdue := int(now.Sub(*t.DueDate).Hours()/24) + 1
		analysis.TotalOverdue++
		analysis.OverdueByQuadrant[string(t.Quadrant)]++
		analysis.OverdueByPriority[string(t.Priority)]++
		analysis.OverdueByDays[overdueBucket(daysOverdue)]++
		if analysis.OldestOverdueTask == nil || daysOverdue > analysis.OldestOverdueTask.DaysOverdue {
			analysis.OldestOverdueTask = &model.OverdueTaskInfo{
				TaskID:      t.ID,
				Title:       t.Title,
				Quadrant:    string(t.Quadrant),
				Priority:    string(t.Priority),
				DaysOverdue: daysOverdue,
			}
		}
	}
	return analysis
}

func overdueBucket(daysOverdue int) string {
	switch {
	case daysOverdue <= 7:
		return "1-7"
	case daysOverdue <= 30:
		return "8-30"
	default:
		return "31+"
	}
}

func (s *AnalyticsService) hasActiveGoals(ctx context.Context, userID string) bool {
	archived := false
	n, err := s.store.CountGoals(ctx, store.GoalFilter{UserID: userID, Archived: &archived})
	return err == nil && n > 0
}

// goalsCompleted counts archived goals whose tasks are all done. The
// planner has no explicit goal completion flag, so archival with full
// task completion is the closest signal.
func (s *AnalyticsService) goalsCompleted(ctx context.Context, userID string) int {
	archived := true
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID, Archived: &archived}, nil)
	if err != nil {
		return 0
	}
	n := 0
	for _, g := range goals {
		total, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID})
		if err != nil || total == 0 {
			continue
		}
		completed := true
		done, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID, Completed: &completed})
		if err == nil && done == total {
			n++
		}
	}
	return n
}
