package services

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iolph/wpr/internal/validator"
)

// DashboardService computes the manager-facing aggregates over all stored
// reports. Results are cached for a bounded TTL since the underlying data
// changes at most weekly per employee.
type DashboardService struct {
	reports *ReportService
	config  *SystemConfigService

	mu       sync.Mutex
	cached   *DashboardResponse
	cachedAt time.Time
}

func NewDashboardService(reports *ReportService, config *SystemConfigService) *DashboardService {
	return &DashboardService{reports: reports, config: config}
}

type TeamStats struct {
	Team           string  `json:"team"`
	ReportCount    int     `json:"report_count"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	DroppedTasks   int     `json:"dropped_tasks"`
	AvgRating      float64 `json:"avg_rating"`
}

type EmployeeStats struct {
	Name           string  `json:"name"`
	Team           string  `json:"team"`
	ReportCount    int     `json:"report_count"`
	CompletedTasks int     `json:"completed_tasks"`
	AvgRating      float64 `json:"avg_rating"`
}

type PeerStanding struct {
	Name        string  `json:"name"`
	RatingCount int     `json:"rating_count"`
	AvgRating   float64 `json:"avg_rating"`
}

type ProjectStats struct {
	Name          string  `json:"name"`
	ReportCount   int     `json:"report_count"`
	AvgCompletion float64 `json:"avg_completion"`
}

type DashboardResponse struct {
	TotalReports    int             `json:"total_reports"`
	TeamStats       []TeamStats     `json:"team_stats"`
	TopEmployees    []EmployeeStats `json:"top_employees"`
	PeerLeaderboard []PeerStanding  `json:"peer_leaderboard"`
	ProjectStats    []ProjectStats  `json:"project_stats"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// GetStats returns the aggregates, serving a cached copy while it is fresh.
func (s *DashboardService) GetStats() *DashboardResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := time.Duration(3600) * time.Second
	if s.config != nil {
		ttl = time.Duration(s.config.DashboardCacheTTL()) * time.Second
	}
	if s.cached != nil && time.Since(s.cachedAt) < ttl {
		return s.cached
	}

	s.cached = s.compute(s.reports.ListAll())
	s.cachedAt = time.Now()
	return s.cached
}

// Invalidate drops the cached aggregates. Called after a new submission so
// managers see it on the next load.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

func (s *DashboardService) compute(records []ReportRecord) *DashboardResponse {
	resp := &DashboardResponse{
		TotalReports: len(records),
		GeneratedAt:  time.Now(),
	}

	teamAgg := map[string]*TeamStats{}
	teamRatings := map[string][]int{}
	employeeAgg := map[string]*EmployeeStats{}
	employeeRatings := map[string][]int{}
	peerRatings := map[string][]int{}
	projectAgg := map[string]*ProjectStats{}
	projectSums := map[string]float64{}

	for i := range records {
		r := &records[i]

		team := teamAgg[r.Team]
		if team == nil {
			team = &TeamStats{Team: r.Team}
			teamAgg[r.Team] = team
		}
		team.ReportCount++
		team.CompletedTasks += r.CompletedCount
		team.PendingTasks += r.PendingCount
		team.DroppedTasks += r.DroppedCount

		emp := employeeAgg[r.Name]
		if emp == nil {
			emp = &EmployeeStats{Name: r.Name, Team: r.Team}
			employeeAgg[r.Name] = emp
		}
		emp.ReportCount++
		emp.CompletedTasks += r.CompletedCount

		if rating, ok := ratingScore(r.ProductivityRating); ok {
			teamRatings[r.Team] = append(teamRatings[r.Team], rating)
			employeeRatings[r.Name] = append(employeeRatings[r.Name], rating)
		}

		for peer, rating := range r.PeerEvaluations {
			bare := validator.StripTeamSuffix(peer)
			peerRatings[bare] = append(peerRatings[bare], rating)
		}

		for _, p := range r.Projects {
			proj := projectAgg[p.Name]
			if proj == nil {
				proj = &ProjectStats{Name: p.Name}
				projectAgg[p.Name] = proj
			}
			proj.ReportCount++
			projectSums[p.Name] += p.Completion
		}
	}

	for team, stats := range teamAgg {
		stats.AvgRating = meanInt(teamRatings[team])
		resp.TeamStats = append(resp.TeamStats, *stats)
	}
	sort.Slice(resp.TeamStats, func(i, j int) bool {
		return resp.TeamStats[i].Team < resp.TeamStats[j].Team
	})

	for name, stats := range employeeAgg {
		stats.AvgRating = meanInt(employeeRatings[name])
		resp.TopEmployees = append(resp.TopEmployees, *stats)
	}
	sort.Slice(resp.TopEmployees, func(i, j int) bool {
		if resp.TopEmployees[i].AvgRating != resp.TopEmployees[j].AvgRating {
			return resp.TopEmployees[i].AvgRating > resp.TopEmployees[j].AvgRating
		}
		return resp.TopEmployees[i].Name < resp.TopEmployees[j].Name
	})
	if len(resp.TopEmployees) > 5 {
		resp.TopEmployees = resp.TopEmployees[:5]
	}

	// The leaderboard only lists employees who actually submitted; names
	// rated in a peer map but absent from the employee index are skipped.
	for name, ratings := range peerRatings {
		if _, ok := employeeAgg[name]; !ok {
			continue
		}
		resp.PeerLeaderboard = append(resp.PeerLeaderboard, PeerStanding{
			Name:        name,
			RatingCount: len(ratings),
			AvgRating:   meanInt(ratings),
		})
	}
	sort.Slice(resp.PeerLeaderboard, func(i, j int) bool {
		if resp.PeerLeaderboard[i].AvgRating != resp.PeerLeaderboard[j].AvgRating {
			return resp.PeerLeaderboard[i].AvgRating > resp.PeerLeaderboard[j].AvgRating
		}
		return resp.PeerLeaderboard[i].Name < resp.PeerLeaderboard[j].Name
	})

	for name, stats := range projectAgg {
		stats.AvgCompletion = round2(projectSums[name] / float64(stats.ReportCount))
		resp.ProjectStats = append(resp.ProjectStats, *stats)
	}
	sort.Slice(resp.ProjectStats, func(i, j int) bool {
		return resp.ProjectStats[i].Name < resp.ProjectStats[j].Name
	})

	return resp
}

// ratingScore extracts the numeric score from a catalog rating label like
// "3 - Productive".
func ratingScore(label string) (int, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > 4 {
		return 0, false
	}
	return n, true
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return round2(float64(sum) / float64(len(values)))
}
