package matching

import (
	"errors"
	"math"

	"parttime-match/internal/domain/profile"
)

// ErrIncompleteProfile is returned when not a single factor can be computed
// for a seeker/post pair.
var ErrIncompleteProfile = errors.New("incomplete profile")

// Factor is one sub-score in [0,1]. Valid is false when either side lacked the
// data to compute it; such factors carry no weight in the total.
type Factor struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

type Factors struct {
	Distance        Factor `json:"distance"`
	ScheduleOverlap Factor `json:"schedule_overlap"`
	SkillOverlap    Factor `json:"skill_overlap"`
	WageFit         Factor `json:"wage_fit"`
}

type Result struct {
	Total      float64
	DistanceKm *float64
	Factors    Factors
}

// Engine scores seeker/post pairs. It is safe for concurrent use.
type Engine struct {
	params Params
}

func NewEngine(p Params) (*Engine, error) {
	np, err := p.Normalized()
	if err != nil {
		return nil, err
	}
	return &Engine{params: np}, nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Score returns the weighted compatibility of s and p in [0,100], rounded to
// two decimals. Identical inputs always produce identical output.
func (e *Engine) Score(s profile.Seeker, p profile.Post) (Result, error) {
	var res Result

	if s.Location != nil && p.Location != nil {
		d := DistanceKm(*s.Location, *p.Location)
		res.DistanceKm = &d
		res.Factors.Distance = Factor{Value: distanceFactor(d, e.params.RadiusKm), Valid: true}
	}

	if !s.AvailableDays.Empty() && !p.RequiredDays.Empty() {
		res.Factors.ScheduleOverlap = Factor{Value: ScheduleOverlap(s.AvailableDays, p.RequiredDays), Valid: true}
	}

	if s.Skills != nil && p.RequiredSkills != nil {
		res.Factors.SkillOverlap = Factor{Value: Jaccard(s.Skills, p.RequiredSkills), Valid: true}
	}

	if p.Wage > 0 {
		res.Factors.WageFit = Factor{Value: wageFit(p.Wage, s.MinWage, e.params.WageFloorFactor), Valid: true}
	}

	w := e.params.Weights
	weighted := []struct {
		f Factor
		w float64
	}{
		{res.Factors.Distance, w.Distance},
		{res.Factors.ScheduleOverlap, w.Schedule},
		{res.Factors.SkillOverlap, w.Skill},
		{res.Factors.WageFit, w.Wage},
	}

	var sum, weightSum float64
	for _, it := range weighted {
		if !it.f.Valid {
			continue
		}
		sum += it.w * it.f.Value
		weightSum += it.w
	}
	if weightSum <= 0 {
		return Result{}, ErrIncompleteProfile
	}

	total := 100 * sum / weightSum
	res.Total = clampFloat(math.Round(total*100)/100, 0, 100)
	return res, nil
}

// Jaccard returns |a∩b| / |a∪b| over normalized tags. Two empty sets are a
// perfect match.
func Jaccard(a, b []string) float64 {
	as := toSet(a)
	bs := toSet(b)
	if len(as) == 0 && len(bs) == 0 {
		return 1
	}
	inter := 0
	for k := range as {
		if _, ok := bs[k]; ok {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

// ScheduleOverlap is the Jaccard similarity of two weekday sets.
func ScheduleOverlap(a, b profile.WeekdaySet) float64 {
	union := a.Union(b).Len()
	if union == 0 {
		return 0
	}
	return float64(a.Intersect(b).Len()) / float64(union)
}

func distanceFactor(km, radius float64) float64 {
	if radius <= 0 || km >= radius {
		return 0
	}
	return clampFloat(1-km/radius, 0, 1)
}

func wageFit(wage float64, minWage *float64, floorFactor float64) float64 {
	if minWage == nil || *minWage <= 0 || wage >= *minWage {
		return 1
	}
	floor := *minWage * floorFactor
	if wage <= floor {
		return 0
	}
	return clampFloat((wage-floor)/(*minWage-floor), 0, 1)
}

func toSet(tags []string) map[string]struct{} {
	norm := profile.NormalizeSkills(tags)
	out := make(map[string]struct{}, len(norm))
	for _, t := range norm {
		out[t] = struct{}{}
	}
	return out
}

func clampFloat(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
