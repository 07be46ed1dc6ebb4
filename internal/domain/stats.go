package domain

// StatusCount pairs a raw stored status value with its row count.
// The raw value is preserved so clients can see legacy spellings.
type StatusCount struct {
	Stato string `json:"stato"`
	Count int    `json:"count"`
}

// BookStats aggregates a user's shelf by reading state. Rows whose stored
// status matches no known spelling land in Other rather than being dropped,
// so the buckets always sum to Total.
type BookStats struct {
	Total   int            `json:"total"`
	ToRead  int            `json:"toRead"`
	Reading int            `json:"reading"`
	Read    int            `json:"read"`
	Other   int            `json:"other"`
	ByState map[string]int `json:"byState"`
}

// BuildBookStats folds raw per-status counts into the normalized buckets.
func BuildBookStats(counts []StatusCount) BookStats {
	stats := BookStats{ByState: make(map[string]int, len(counts))}

	for _, c := range counts {
		stats.Total += c.Count
		stats.ByState[c.Stato] += c.Count

		status, ok := NormalizeStatus(c.Stato)
		if !ok {
			stats.Other += c.Count
			continue
		}
		switch status {
		case StatusToRead:
			stats.ToRead += c.Count
		case StatusReading:
			stats.Reading += c.Count
		case StatusRead:
			stats.Read += c.Count
		}
	}

	return stats
}
