package service

import (
	"context"

	"coursehub/internal/domain/report/model"
	"coursehub/internal/domain/report/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of orders shown on reports and the dashboard.
const RecentLimit = 5

type ReportService interface {
	Summary(ctx context.Context) (*model.Summary, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

type reportService struct {
	repo repository.ReportRepository
	log  *zap.Logger
}

func NewReportService(repo repository.ReportRepository, log *zap.Logger) ReportService {
	return &reportService{repo: repo, log: log}
}

type snapshot struct {
	users   model.UserCounts
	courses model.CourseCounts
	orders  model.OrderCounts
	recent  []model.RecentOrder
}

// collect runs the aggregate queries concurrently.
func (s *reportService) collect(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.users, err = s.repo.UserCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.courses, err = s.repo.CourseCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.orders, err = s.repo.OrderCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.recent, err = s.repo.RecentOrders(ctx, RecentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("report aggregation failed", zap.Error(err))
		return nil, err
	}
	return &snap, nil
}

func (s *reportService) Summary(ctx context.Context) (*model.Summary, error) {
	snap, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Summary{
		Totals: model.Totals{
			TotalUsers:       snap.users.TotalUsers,
			TotalAdmins:      snap.users.TotalAdmins,
			TotalClients:     snap.users.TotalClients,
			TotalCourses:     snap.courses.TotalCourses,
			PublishedCourses: snap.courses.PublishedCourses,
			DraftCourses:     snap.courses.DraftCourses,
			TotalPayments:    snap.orders.PaidOrders,
			TotalRevenue:     snap.orders.TotalRevenue,
		},
		RecentOrders: snap.recent,
	}, nil
}

func (s *reportService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	snap, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	activities := make([]model.Activity, 0, len(snap.recent))
	for _, o := range snap.recent {
		user := o.UserName
		if user == "" {
			user = "Unknown"
		}
		title := o.CourseTitle
		if title == "" {
			title = "a course"
		}
		activities = append(activities, model.Activity{
			ID:     o.ID,
			User:   user,
			Action: "purchased " + title,
			Time:   o.CreatedAt,
		})
	}

	return &model.Dashboard{
		Stats: model.DashboardStats{
			TotalUsers:    snap.users.TotalUsers,
			TotalCourses:  snap.courses.TotalCourses,
			TotalRevenue:  snap.orders.TotalRevenue,
			PendingOrders: snap.orders.PendingOrders,
		},
		Activities: activities,
	}, nil
}
