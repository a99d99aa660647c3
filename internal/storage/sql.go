package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      source_type,
                      sample_rate,
                      channels,
                      labels,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source_type,
    sample_rate,
    channels,
    labels,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source_type,
    sample_rate,
    channels,
    labels,
    config
FROM sessions
ORDER BY start_time`

	insertSampleSQL = `
INSERT INTO samples (session_id,
                     sample_idx,
                     time,
                     channel,
                     value)
VALUES (?, ?, ?, ?, ?)`

	selectSeriesSQL = `
SELECT
    sample_idx,
    time,
    channel,
    value
FROM samples
WHERE
    session_id = ?
ORDER BY
    sample_idx, channel`
)

//go:embed schema.sql
var schemaSQL string
