package tui

import (
	"github.com/sadopc/carbontrack/internal/dashboard"
	"github.com/sadopc/carbontrack/internal/gateway"
)

// viewState represents the currently active tab.
type viewState int

const (
	viewOverview viewState = iota
	viewLog
	viewHistory
	viewRecommendations
	viewAnalytics
)

var viewNames = []string{"Dashboard", "Log Activity", "History", "Recommendations", "Analytics"}

// --- Messages ---

type loadedMsg struct {
	result dashboard.LoadResult
}

type emissionsLoadedMsg struct {
	result dashboard.EmissionsResult
}

type loggedMsg struct {
	result gateway.LogResult
}

type deletedMsg struct {
	id string
}

type exportDoneMsg struct {
	path string
}

type statusMsg struct {
	text    string
	isError bool
}

type notifyExitMsg struct {
	id int
}

type notifyRemoveMsg struct {
	id int
}

// analyticsReadyMsg is sent to self one tick after the analytics tab opens.
type analyticsReadyMsg struct{}

type statsLoadedMsg struct {
	stats gateway.Statistics
	err   error
}

// --- Helpers ---

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
