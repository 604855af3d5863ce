package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Plan is a rental duration tier. The string value is part of the persisted
// format: "1d", "7d", "30d", "90d", "365d", or "<N>m" for minute plans.
type Plan string

const (
	PlanOneDay     Plan = "1d"
	PlanSevenDays  Plan = "7d"
	PlanThirtyDays Plan = "30d"
	PlanNinetyDays Plan = "90d"
	PlanOneYear    Plan = "365d"
)

func GetPlans() []Plan {
	return []Plan{
		PlanOneDay,
		PlanSevenDays,
		PlanThirtyDays,
		PlanNinetyDays,
		PlanOneYear,
	}
}

// ParsePlan validates a plan key.
func ParsePlan(s string) (Plan, error) {
	plan := Plan(strings.TrimSpace(s))
	if _, err := plan.duration(); err != nil {
		return "", err
	}
	return plan, nil
}

func (p Plan) Duration() time.Duration {
	d, err := p.duration()
	if err != nil {
		return 0
	}
	return d
}

func (p Plan) Valid() bool {
	_, err := p.duration()
	return err == nil
}

func (p Plan) duration() (time.Duration, error) {
	switch p {
	case PlanOneDay:
		return 24 * time.Hour, nil
	case PlanSevenDays:
		return 7 * 24 * time.Hour, nil
	case PlanThirtyDays:
		return 30 * 24 * time.Hour, nil
	case PlanNinetyDays:
		return 90 * 24 * time.Hour, nil
	case PlanOneYear:
		return 365 * 24 * time.Hour, nil
	}

	s := string(p)
	if strings.HasSuffix(s, "m") {
		minutes, err := strconv.Atoi(strings.TrimSuffix(s, "m"))
		if err == nil && minutes > 0 && minutes <= 525600 {
			return time.Duration(minutes) * time.Minute, nil
		}
	}
	return 0, fmt.Errorf("unknown plan %q", s)
}
