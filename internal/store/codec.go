package store

import (
	"encoding/json"
	"fmt"

	"github.com/pbaille/jobtrack/internal/domain"
)

// Encode serializes the whole collection as a JSON array
func Encode(apps []domain.Application) (string, error) {
	if apps == nil {
		apps = []domain.Application{}
	}
	b, err := json.Marshal(apps)
	if err != nil {
		return "", fmt.Errorf("encode applications: %w", err)
	}
	return string(b), nil
}

// Decode parses a serialized collection. Records that cannot be decoded, fail
// validation or repeat an earlier id are skipped and reported in problems. err
// is non-nil only when the value is not a JSON array at all.
func Decode(value string) (apps []domain.Application, problems []error, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raws); err != nil {
		return nil, nil, fmt.Errorf("decode applications: %w", err)
	}

	seen := make(map[string]bool, len(raws))
	apps = make([]domain.Application, 0, len(raws))
	for i, raw := range raws {
		var app domain.Application
		if err := json.Unmarshal(raw, &app); err != nil {
			problems = append(problems, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if app.ID == "" {
			problems = append(problems, fmt.Errorf("record %d: missing id", i))
			continue
		}
		if seen[app.ID] {
			problems = append(problems, fmt.Errorf("record %d: duplicate id %s", i, app.ID))
			continue
		}
		if err := app.Fields().Validate(); err != nil {
			problems = append(problems, fmt.Errorf("record %d (%s): %w", i, app.ID, err))
			continue
		}
		seen[app.ID] = true
		apps = append(apps, app)
	}
	return apps, problems, nil
}
