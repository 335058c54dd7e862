package services

import (
	"context"
	"log/slog"
	"time"

	"quadrantplanner/model"
	"quadrantplanner/store"
)

// Weights define how the five component scores combine into the
// overall productivity score. They sum to 1.
type Weights struct {
	GoalCompletion    float64
	TaskCompletion    float64
	QuadrantBalance   float64
	Consistency       float64
	StagingEfficiency float64
}

var DefaultWeights = Weights{
	GoalCompletion:    0.25,
	TaskCompletion:    0.25,
	QuadrantBalance:   0.20,
	Consistency:       0.15,
	StagingEfficiency: 0.15,
}

// consistencyWindow is the number of days sampled for the consistency
// component and the trend comparison (two 7-day halves).
const consistencyWindow = 14

// ScoreService derives the composite productivity score. Each
// component reads its own aggregate; an unavailable aggregate
// contributes zero instead of failing the report.
type ScoreService struct {
	store   store.Store
	weights Weights
	logger  *slog.Logger
}

func NewScoreService(st store.Store, weights Weights, logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{store: st, weights: weights, logger: logger}
}

// ProductivityScore composes the report. It never fails: partial data
// degrades individual components to zero.
func (s *ScoreService) ProductivityScore(ctx context.Context, userID string) *model.ProductivityScore {
	goalScore, hasGoals := s.goalCompletionScore(ctx, userID)
	taskScore := s.taskCompletionScore(ctx, userID)
	dist := s.distribution(ctx, userID)
	balanceScore := balanceScore(dist)
	trends := s.trends(ctx, userID)
	consistency := consistencyScore(trends)
	stagingScore := s.stagingEfficiencyScore(ctx, userID)

	overall := s.weights.GoalCompletion*goalScore +
		s.weights.TaskCompletion*taskScore +
		s.weights.QuadrantBalance*balanceScore +
		s.weights.Consistency*consistency +
		s.weights.StagingEfficiency*stagingScore

	return &model.ProductivityScore{
		OverallScore:           clampScore(overall),
		GoalCompletionScore:    goalScore,
		TaskCompletionScore:    taskScore,
		QuadrantBalanceScore:   balanceScore,
		ConsistencyScore:       consistency,
		StagingEfficiencyScore: stagingScore,
		ScoreTrend:             classifyTrend(trends),
		Recommendations:        recommendations(dist, hasGoals),
	}
}

func (s *ScoreService) goalCompletionScore(ctx context.Context, userID string) (float64, bool) {
	archived := false
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID, Archived: &archived}, nil)
	if err != nil {
		s.logger.Warn("goal completion aggregate unavailable", "user_id", userID, "error", err)
		return 0, false
	}
	if len(goals) == 0 {
		return 0, false
	}

	var sum float64
	for _, g := range goals {
		total, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID})
		if err != nil || total == 0 {
			continue
		}
		completed := true
		done, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, GoalID: g.ID, Completed: &completed})
		if err != nil {
			continue
		}
		sum += float64(done) / float64(total) * 100
	}
	return sum / float64(len(goals)), true
}

func (s *ScoreService) taskCompletionScore(ctx context.Context, userID string) float64 {
	total, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID})
	if err != nil || total == 0 {
		return 0
	}
	completed := true
	done, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, Completed: &completed})
	if err != nil {
		return 0
	}
	return float64(done) / float64(total) * 100
}

func (s *ScoreService) distribution(ctx context.Context, userID string) *model.QuadrantDistribution {
	dist, err := activeDistribution(ctx, s.store, userID)
	if err != nil {
		s.logger.Warn("quadrant distribution aggregate unavailable", "user_id", userID, "error", err)
		return &model.QuadrantDistribution{UserID: userID}
	}
	return dist
}

func (s *ScoreService) trends(ctx context.Context, userID string) []model.ProductivityTrend {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(consistencyWindow - 1))
	trends, err := s.store.ProductivityTrends(ctx, userID, from, to)
	if err != nil {
		s.logger.Warn("productivity trend aggregate unavailable", "user_id", userID, "error", err)
		return nil
	}
	return trends
}

func (s *ScoreService) stagingEfficiencyScore(ctx context.Context, userID string) float64 {
	sa, err := s.store.StagingAnalytics(ctx, userID)
	if err != nil {
		s.logger.Warn("staging analytics aggregate unavailable", "user_id", userID, "error", err)
		return 0
	}
	// A user who never staged anything has nothing pending to process.
	if sa.TotalStagedItems == 0 {
		return 100
	}
	return clampScore(sa.StagingEfficiency)
}

// activeDistribution counts non-completed tasks per quadrant.
func activeDistribution(ctx context.Context, st store.Store, userID string) (*model.QuadrantDistribution, error) {
	completed := false
	dist := &model.QuadrantDistribution{UserID: userID}
	counts := []struct {
		quadrant model.Quadrant
		count    *int
		pct      *float64
	}{
		{model.QuadrantQ1, &dist.Q1Count, &dist.Q1Percentage},
		{model.QuadrantQ2, &dist.Q2Count, &dist.Q2Percentage},
		{model.QuadrantQ3, &dist.Q3Count, &dist.Q3Percentage},
		{model.QuadrantQ4, &dist.Q4Count, &dist.Q4Percentage},
		{model.QuadrantStaging, &dist.StagingCount, &dist.StagingPercentage},
	}
	for _, c := range counts {
		n, err := st.CountTasks(ctx, store.TaskFilter{
			UserID:    userID,
			Quadrant:  c.quadrant,
			Completed: &completed,
		})
		if err != nil {
			return nil, err
		}
		*c.count = n
		dist.TotalActiveTasks += n
	}
	if dist.TotalActiveTasks > 0 {
		total := float64(dist.TotalActiveTasks)
		for _, c := range counts {
			*c.pct = float64(*c.count) / total * 100
		}
	}
	return dist, nil
}

// idealDistribution is the target quadrant spread in percent.
var idealDistribution = map[string]float64{
	"Q1":      20,
	"Q2":      60,
	"Q3":      15,
	"Q4":      5,
	"staging": 0,
}

// balanceScore measures how close the active-task spread is to the
// ideal distribution: 100 minus half the total percentage-point
// deviation.
func balanceScore(dist *model.QuadrantDistribution) float64 {
	if dist.TotalActiveTasks == 0 {
		return 0
	}
	deviation := abs(dist.Q1Percentage-idealDistribution["Q1"]) +
		abs(dist.Q2Percentage-idealDistribution["Q2"]) +
		abs(dist.Q3Percentage-idealDistribution["Q3"]) +
		abs(dist.Q4Percentage-idealDistribution["Q4"]) +
		abs(dist.StagingPercentage-idealDistribution["staging"])
	return clampScore(100 - deviation/2)
}

// consistencyScore is the share of sampled days with any task activity.
func consistencyScore(trends []model.ProductivityTrend) float64 {
	if len(trends) == 0 {
		return 0
	}
	active := 0
	for _, tr := range trends {
		if tr.TasksCompleted > 0 || tr.TasksCreated > 0 {
			active++
		}
	}
	return float64(active) / float64(len(trends)) * 100
}

// classifyTrend compares the most recent 7-day completion average with
// the preceding 7 days: more than 10% up is improving, more than 10%
// down is declining.
func classifyTrend(trends []model.ProductivityTrend) model.ScoreTrend {
	if len(trends) < consistencyWindow {
		return model.TrendStable
	}
	half := len(trends) / 2
	earlier := completionAverage(trends[:half])
	recent := completionAverage(trends[half:])

	switch {
	case earlier == 0 && recent > 0:
		return model.TrendImproving
	case earlier == 0:
		return model.TrendStable
	case recent > earlier*1.1:
		return model.TrendImproving
	case recent < earlier*0.9:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func completionAverage(trends []model.ProductivityTrend) float64 {
	if len(trends) == 0 {
		return 0
	}
	sum := 0
	for _, tr := range trends {
		sum += tr.TasksCompleted
	}
	return float64(sum) / float64(len(trends))
}

// recommendations applies the quadrant threshold rules. Without any
// goals the report leads with the first-goal nudge.
func recommendations(dist *model.QuadrantDistribution, hasGoals bool) []string {
	if !hasGoals {
		return []string{"Create your first goal to start tracking productivity"}
	}

	var recs []string
	if dist.Q1Percentage > 30 {
		recs = append(recs, "You have too many urgent+important tasks. Focus on prevention and planning.")
	}
	if dist.Q2Percentage < 40 {
		recs = append(recs, "Increase focus on important but not urgent tasks (Q2) for better long-term results.")
	}
	if dist.Q3Percentage > 25 {
		recs = append(recs, "Too many urgent but unimportant tasks. Consider delegation or elimination.")
	}
	if dist.Q4Percentage > 10 {
		recs = append(recs, "Reduce time-wasting activities in Q4. Focus energy elsewhere.")
	}
	if dist.StagingPercentage > 20 {
		recs = append(recs, "High staging utilization. Process staged items into appropriate quadrants.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Great quadrant balance! Maintain this distribution for optimal productivity.")
	}
	return recs
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
