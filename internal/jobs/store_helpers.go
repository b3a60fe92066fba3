package jobs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const jobColumns = "id, original_name, source_path, status, settings_json, transcript, caption_path, processed_path, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id            string
		originalName  string
		sourcePath    string
		statusStr     string
		settingsJSON  sql.NullString
		transcript    sql.NullString
		captionPath   sql.NullString
		processedPath sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&originalName,
		&sourcePath,
		&statusStr,
		&settingsJSON,
		&transcript,
		&captionPath,
		&processedPath,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		OriginalName:  originalName,
		SourcePath:    sourcePath,
		Status:        Status(statusStr),
		Settings:      DefaultSettings(),
		Transcript:    transcript.String,
		CaptionPath:   captionPath.String,
		ProcessedPath: processedPath.String,
	}
	if settingsJSON.Valid && settingsJSON.String != "" {
		var settings Settings
		if err := json.Unmarshal([]byte(settingsJSON.String), &settings); err == nil {
			job.Settings = settings.WithDefaults()
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func encodeSettings(settings Settings) (string, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
