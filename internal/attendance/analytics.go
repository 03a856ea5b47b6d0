package attendance

// Summary is the aggregated view of one session's ledger.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`

	AttendanceRate float64 `json:"attendance_rate"`

	FaceVerified     int `json:"face_verified"`
	GeoVerified      int `json:"geo_verified"`
	LivenessVerified int `json:"liveness_verified"`

	FaceRate     float64 `json:"face_rate"`
	GeoRate      float64 `json:"geo_rate"`
	LivenessRate float64 `json:"liveness_rate"`
}

// Summarize computes counts and rates from a session's records. Rates are 0
// for an empty session, never NaN. Read-only projection; safe to run while
// writes continue, last-committed reads are good enough.
func Summarize(records []Record) Summary {
	var s Summary
	s.Total = len(records)
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		case StatusExcused:
			s.Excused++
		}
		if rec.FaceVerified {
			s.FaceVerified++
		}
		if rec.GeoVerified {
			s.GeoVerified++
		}
		if rec.LivenessVerified {
			s.LivenessVerified++
		}
	}
	if s.Total == 0 {
		return s
	}
	total := float64(s.Total)
	s.AttendanceRate = float64(s.Present) / total
	s.FaceRate = float64(s.FaceVerified) / total
	s.GeoRate = float64(s.GeoVerified) / total
	s.LivenessRate = float64(s.LivenessVerified) / total
	return s
}
