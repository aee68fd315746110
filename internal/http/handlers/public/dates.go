package public

import "time"

func parseDateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return nil, nil, err
		}
		from = &parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return nil, nil, err
		}
		end := parsed.Add(24*time.Hour - time.Second)
		to = &end
	}
	return from, to, nil
}
