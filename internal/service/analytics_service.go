package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/sla"
)

const (
	seriesDateLayout = "2006-01-02"
	unclassifiedType = "unclassified"
)

// AnalyticsCache stores computed summaries. Key is resolved once per read
// and reused for the write that follows a miss.
type AnalyticsCache interface {
	Key(ctx context.Context, filter domain.IssueFilter) (string, error)
	Get(ctx context.Context, key string) (*domain.AnalyticsSummary, bool, error)
	Set(ctx context.Context, key string, summary *domain.AnalyticsSummary) error
}

// AnalyticsService folds the issue set into dashboard summaries.
type AnalyticsService struct {
	store     repository.Store
	evaluator *sla.Evaluator
	cache     AnalyticsCache
	logger    *zap.Logger
	now       Clock
}

// AnalyticsDependencies bundles collaborators. Cache is optional.
type AnalyticsDependencies struct {
	Store     repository.Store
	Evaluator *sla.Evaluator
	Cache     AnalyticsCache
	Logger    *zap.Logger
	Clock     Clock
}

// NewAnalyticsService creates the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.DefaultCalendar(nil), sla.DefaultPolicy())
	}
	return &AnalyticsService{
		store:     deps.Store,
		evaluator: evaluator,
		cache:     deps.Cache,
		logger:    loggerOrNop(deps.Logger),
		now:       clockOrDefault(deps.Clock),
	}
}

// GetAnalytics summarizes every issue matching filter. Pagination fields
// are ignored. An empty match yields a zero summary.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, filter domain.IssueFilter) (*domain.AnalyticsSummary, error) {
	filter.Limit = 0
	filter.Offset = 0

	key := s.cacheKey(ctx, filter)
	if key != "" {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	issues, err := s.store.Issues().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "issue", "")
	}
	summary := Summarize(issues, s.evaluator, s.now())

	if key != "" {
		if err := s.cache.Set(ctx, key, summary); err != nil {
			s.logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// cacheKey returns "" when caching is off or the key cannot be resolved.
func (s *AnalyticsService) cacheKey(ctx context.Context, filter domain.IssueFilter) string {
	if s.cache == nil {
		return ""
	}
	key, err := s.cache.Key(ctx, filter)
	if err != nil {
		s.logger.Warn("analytics cache key failed", zap.Error(err))
		return ""
	}
	return key
}

// Summarize is the pure fold behind GetAnalytics. Issues whose timestamps
// cannot be measured are excluded from the averages, counted as resolution
// breaches and reported in DataIntegrityIssues.
func Summarize(issues []domain.Issue, evaluator *sla.Evaluator, now time.Time) *domain.AnalyticsSummary {
	summary := domain.EmptyAnalyticsSummary()
	if len(issues) == 0 {
		return summary
	}

	summary.Total = len(issues)
	summary.ByStatus = lo.CountValuesBy(issues, func(i domain.Issue) domain.IssueStatus { return i.Status })
	summary.ByPriority = lo.CountValuesBy(issues, func(i domain.Issue) domain.IssuePriority { return i.Priority })
	summary.ByType = lo.CountValuesBy(issues, func(i domain.Issue) string {
		if i.TypeID == "" {
			return unclassifiedType
		}
		return i.TypeID
	})

	resolved := summary.ByStatus[domain.IssueStatusResolved] + summary.ByStatus[domain.IssueStatusClosed]
	summary.ResolutionRate = float64(resolved) / float64(summary.Total)

	var resolutionHours, firstResponseHours []float64
	for i := range issues {
		issue := &issues[i]
		report, err := evaluator.Evaluate(issue, now)
		if err != nil {
			summary.DataIntegrityIssues++
			summary.ResolutionBreaches++
			continue
		}
		if report.Resolution.Breached {
			summary.ResolutionBreaches++
		}
		if report.Resolution.Completed {
			resolutionHours = append(resolutionHours, report.Resolution.ElapsedHours)
		}
		if report.FirstResponse.Completed {
			firstResponseHours = append(firstResponseHours, report.FirstResponse.ElapsedHours)
		}
	}
	summary.AvgResolutionHours = mean(resolutionHours)
	summary.AvgFirstResponseHours = mean(firstResponseHours)
	summary.Series = dailySeries(issues, evaluator.Calendar.Location)
	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

func dailySeries(issues []domain.Issue, loc *time.Location) []domain.DailyCount {
	if loc == nil {
		loc = time.UTC
	}
	points := map[string]*domain.DailyCount{}
	point := func(t time.Time) *domain.DailyCount {
		date := t.In(loc).Format(seriesDateLayout)
		p, ok := points[date]
		if !ok {
			p = &domain.DailyCount{Date: date}
			points[date] = p
		}
		return p
	}
	for _, issue := range issues {
		if !issue.CreatedAt.IsZero() {
			point(issue.CreatedAt).Created++
		}
		if issue.ClosedAt != nil {
			point(*issue.ClosedAt).Closed++
		}
	}

	dates := lo.Keys(points)
	sort.Strings(dates)
	return lo.Map(dates, func(date string, _ int) domain.DailyCount {
		return *points[date]
	})
}
