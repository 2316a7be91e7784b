package attendance

// Summary is the rollup over one identity's records for a period.
type Summary struct {
	PresentCount int     `json:"presentCount"`
	AbsentCount  int     `json:"absentCount"`
	HalfDayCount int     `json:"halfDayCount"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
}

// Rollup computes counts and the attendance percentage, where a half day
// counts as half a present day. An empty period yields 0%.
func Rollup(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.PresentCount++
		case StatusAbsent:
			s.AbsentCount++
		case StatusHalfDay:
			s.HalfDayCount++
		default:
			continue
		}
		s.Total++
	}
	if s.Total == 0 {
		return s
	}
	s.Percentage = (float64(s.PresentCount) + 0.5*float64(s.HalfDayCount)) / float64(s.Total) * 100
	return s
}
