// Package savecodec turns save records into compressed blobs and back.
// A blob is a zstd stream holding a header line and the JSON record; the
// record is checked against save.schema.json before it is decoded.
package savecodec

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"dronefarm/internal/app/ports"
)

const (
	Format  = "dronefarm.save"
	Version = 1
)

var ErrInvalidBlob = errors.New("invalid save blob")

//go:embed save.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("save.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

func Encode(rec ports.SaveRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	hb, _ := json.Marshal(header{Format: Format, Version: Version})
	body, err := json.Marshal(rec)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("marshal save: %w", err)
	}
	bw := bufio.NewWriter(enc)
	bw.Write(hb)
	bw.WriteByte('\n')
	bw.Write(body)
	if err := bw.Flush(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress save: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress save: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(blob []byte) (ports.SaveRecord, error) {
	var rec ports.SaveRecord
	dec, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return rec, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return rec, fmt.Errorf("%w: read header: %v", ErrInvalidBlob, err)
	}
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return rec, fmt.Errorf("%w: header: %v", ErrInvalidBlob, err)
	}
	if h.Format != Format || h.Version != Version {
		return rec, fmt.Errorf("%w: unsupported format %s v%d", ErrInvalidBlob, h.Format, h.Version)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return rec, fmt.Errorf("%w: decompress: %v", ErrInvalidBlob, err)
	}
	if err := Validate(body); err != nil {
		return rec, err
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	return rec, nil
}

// Validate checks a JSON save record against the save schema.
func Validate(body []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile save schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	return nil
}
