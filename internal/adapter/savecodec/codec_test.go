package savecodec

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"

	"dronefarm/internal/app/ports"
	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"
)

func sampleRecord(t *testing.T) ports.SaveRecord {
	t.Helper()
	st, err := farm.NewState(farm.DefaultConfig(), farm.DefaultCatalog())
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	planted := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	st.Grid[0].IsPlowed = true
	st.Grid[0].Plant(farm.CropWheat, planted)
	st.Inventory["wheat_seeds"] = 4
	return ports.SaveRecord{
		Name: "morning",
		Farm: st.Snapshot(),
		Sessions: []console.SessionSnapshot{{
			ID:          "s1",
			ProgramText: "plow()",
			OutputLog: []console.Entry{
				{Text: ">>> plow()", Kind: console.KindCommand},
				{Text: "Successfully plowed tile at (0, 0)", Kind: console.KindNormal},
			},
		}},
		SavedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	rec := sampleRecord(t)
	blob, err := Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not zstd")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func compress(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeRejectsWrongHeader(t *testing.T) {
	blob := compress(t, `{"format":"other","version":1}`+"\n"+`{}`)
	if _, err := Decode(blob); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("expected invalid blob, got %v", err)
	}
}

func TestDecodeRejectsSchemaViolation(t *testing.T) {
	body := `{"name":"x","saved_at":"2026-01-01T00:00:00Z","sessions":[],` +
		`"farm":{"grid":[{}],"size":1,"drone_position":{"x":0,"y":0},"inventory":{"wheat":-1},"money":5,"unlocked_crops":[]}}`
	blob := compress(t, `{"format":"dronefarm.save","version":1}`+"\n"+body)
	if _, err := Decode(blob); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("expected invalid blob, got %v", err)
	}
}

func TestValidateAcceptsEncodedRecord(t *testing.T) {
	body := `{"name":"x","saved_at":"2026-01-01T00:00:00Z","sessions":null,` +
		`"farm":{"grid":[{}],"size":1,"drone_position":{"x":0,"y":0},"inventory":{},"money":5,"unlocked_crops":["wheat"]}}`
	if err := Validate([]byte(body)); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestValidateRejectsZeroMaxSize(t *testing.T) {
	body := `{"name":"x","saved_at":"2026-01-01T00:00:00Z","sessions":null,` +
		`"farm":{"grid":[{}],"size":1,"max_size":0,"drone_position":{"x":0,"y":0},"inventory":{},"money":5,"unlocked_crops":["wheat"]}}`
	if err := Validate([]byte(body)); err == nil {
		t.Fatalf("expected max_size 0 rejected")
	}
}
