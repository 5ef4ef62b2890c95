package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// MonthPoint is the average of one calendar month
type MonthPoint struct {
	Year    int
	Month   time.Month
	Average decimal.Decimal
	Count   int
}

// MonthlySeries averages grades per (year, month), oldest first, keeping the most recent limit buckets.
// A non-positive limit keeps every bucket.
func MonthlySeries(facts []models.GradeFact, limit int) []MonthPoint {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key][]decimal.Decimal)
	for _, g := range facts {
		k := key{g.GradedAt.Year(), g.GradedAt.Month()}
		buckets[k] = append(buckets[k], g.Value)
	}

	out := make([]MonthPoint, 0, len(buckets))
	for k, vals := range buckets {
		out = append(out, MonthPoint{Year: k.year, Month: k.month, Average: Mean(vals), Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// DayPoint is the average of one calendar day
type DayPoint struct {
	Date    time.Time
	Average decimal.Decimal
}

// DailySeries averages grades per calendar day, oldest first
func DailySeries(facts []models.GradeFact) []DayPoint {
	buckets := make(map[time.Time][]decimal.Decimal)
	for _, g := range facts {
		y, m, d := g.GradedAt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, g.GradedAt.Location())
		buckets[day] = append(buckets[day], g.Value)
	}

	out := make([]DayPoint, 0, len(buckets))
	for day, vals := range buckets {
		out = append(out, DayPoint{Date: day, Average: Mean(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SubjectStat is the grade summary of one subject
type SubjectStat struct {
	SubjectID int64
	Name      string
	ShortName string
	Average   decimal.Decimal
	Count     int
	// Values are the subject's grades in ascending order
	Values []decimal.Decimal
}

// SubjectAverages summarises grades per subject, highest average first.
// Equal averages keep subject id order.
func SubjectAverages(facts []models.GradeFact) []SubjectStat {
	bySubject := make(map[int64]*SubjectStat)
	for _, g := range facts {
		s, ok := bySubject[g.SubjectID]
		if !ok {
			s = &SubjectStat{SubjectID: g.SubjectID, Name: g.SubjectName, ShortName: g.SubjectShortName}
			bySubject[g.SubjectID] = s
		}
		s.Values = append(s.Values, g.Value)
	}

	out := make([]SubjectStat, 0, len(bySubject))
	for _, s := range bySubject {
		s.Average = Mean(s.Values)
		s.Count = len(s.Values)
		sort.Slice(s.Values, func(i, j int) bool { return s.Values[i].LessThan(s.Values[j]) })
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average.GreaterThan(out[j].Average) })
	return out
}
