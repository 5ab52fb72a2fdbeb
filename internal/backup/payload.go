// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zlib"

	"github.com/tomtom215/agenda/internal/models"
)

// maxInflatedSize bounds decompression so a hostile payload cannot exhaust
// memory.
const maxInflatedSize = 256 << 20

// Payload is a full backup, plain or compressed.
type Payload struct {
	SchemaVersion int       `json:"schemaVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
	Compressed    bool      `json:"compressed"`
	Data          *Data     `json:"data,omitempty"`
	Bytes         ByteArray `json:"bytes,omitempty"`
	Metadata      Metadata  `json:"metadata"`

	// inflated is set by Decode when the input was compressed.
	inflated bool
}

// Data holds every restorable record.
type Data struct {
	Jobs       []*models.Job                `json:"jobs"`
	Tasks      []*models.Task               `json:"tasks"`
	Config     []*models.ConfigEntry        `json:"config"`
	Statistics []*models.StatisticsSnapshot `json:"statistics"`
}

// Metadata summarizes the payload without decoding Data.
type Metadata struct {
	TotalJobs          int        `json:"totalJobs"`
	TotalTasks         int        `json:"totalTasks"`
	LastAuditTimestamp *time.Time `json:"lastAuditTimestamp"`
	EstimatedSizeBytes int64      `json:"estimatedSizeBytes"`
}

// ByteArray is raw bytes that encode as a JSON array of numbers, the form
// browser deflate libraries produce. Decoding also accepts a base64
// string.
type ByteArray []byte

// MarshalJSON implements json.Marshaler.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d", v)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*b = nil
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("bytes: %w", err)
		}
		*b = raw
		return nil
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("bytes: %w", err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("bytes: value %d at index %d is not a byte", n, i)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// Compress returns the compressed envelope of a plain payload.
func (p *Payload) Compress() (*Payload, error) {
	if p.Compressed {
		return p, nil
	}
	plain, err := json.Marshal(p)
	if err != nil {
		return nil, &models.CompressionError{Op: "encode payload", Err: err}
	}
	packed, err := deflate(plain)
	if err != nil {
		return nil, err
	}
	return &Payload{
		SchemaVersion: p.SchemaVersion,
		GeneratedAt:   p.GeneratedAt,
		Compressed:    true,
		Bytes:         packed,
		Metadata:      p.Metadata,
	}, nil
}

func deflate(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, &models.CompressionError{Op: "deflate", Err: err}
	}
	if _, err := w.Write(plain); err != nil {
		return nil, &models.CompressionError{Op: "deflate", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &models.CompressionError{Op: "deflate", Err: err}
	}
	return buf.Bytes(), nil
}

func inflate(packed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, &models.CompressionError{Op: "inflate", Err: err}
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, maxInflatedSize+1))
	if err != nil {
		return nil, &models.CompressionError{Op: "inflate", Err: err}
	}
	if len(out) > maxInflatedSize {
		return nil, &models.CompressionError{Op: "inflate", Err: fmt.Errorf("payload exceeds %d bytes", maxInflatedSize)}
	}
	return out, nil
}

// wirePayload is the loosest accepted shape, decoded before validation.
type wirePayload struct {
	SchemaVersion int             `json:"schemaVersion"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	Compressed    bool            `json:"compressed"`
	Data          json.RawMessage `json:"data"`
	Bytes         json.RawMessage `json:"bytes"`
	Metadata      Metadata        `json:"metadata"`
}

// Decode parses raw into a plain Payload, inflating it first when it is
// compressed. Shape problems are *models.ValidationError, inflate problems
// *models.CompressionError.
func Decode(raw []byte) (*Payload, error) {
	return decode(raw, 0)
}

func decode(raw []byte, depth int) (*Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &models.ValidationError{Reason: "backup is not valid JSON", Err: err}
	}

	if w.Compressed {
		if depth > 0 {
			return nil, &models.ValidationError{Reason: "compressed backup contains another compressed backup"}
		}
		src := w.Bytes
		if isNull(src) {
			src = w.Data
		}
		if isNull(src) {
			return nil, &models.ValidationError{Reason: "compressed backup has no bytes"}
		}
		var packed ByteArray
		if err := json.Unmarshal(src, &packed); err != nil {
			return nil, &models.ValidationError{Reason: "compressed backup bytes are malformed", Err: err}
		}
		plain, err := inflate(packed)
		if err != nil {
			return nil, err
		}
		p, err := decode(plain, depth+1)
		if err != nil {
			return nil, err
		}
		p.inflated = true
		return p, nil
	}

	if err := checkShape(w.Data); err != nil {
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(w.Data, &data); err != nil {
		return nil, &models.ValidationError{Reason: "backup data is malformed", Err: err}
	}
	return &Payload{
		SchemaVersion: w.SchemaVersion,
		GeneratedAt:   w.GeneratedAt,
		Data:          &data,
		Metadata:      w.Metadata,
	}, nil
}

// checkShape requires data.jobs and data.tasks to be arrays. config and
// statistics may be absent.
func checkShape(data json.RawMessage) error {
	if isNull(data) {
		return &models.ValidationError{Reason: "backup has no data"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &models.ValidationError{Reason: "backup data is not an object", Err: err}
	}
	for _, key := range []string{"jobs", "tasks"} {
		if !isArray(fields[key]) {
			return &models.ValidationError{Reason: fmt.Sprintf("backup data.%s must be an array", key)}
		}
	}
	for _, key := range []string{"config", "statistics"} {
		if v, ok := fields[key]; ok && !isNull(v) && !isArray(v) {
			return &models.ValidationError{Reason: fmt.Sprintf("backup data.%s must be an array", key)}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
