package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("history")

// ErrCorrupt reports a history file whose contents fail schema validation.
var ErrCorrupt = errors.New("history file is corrupt")

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC. It marshals as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// CountRecord is one dated observation of download counts for the tracked
// package.
type CountRecord struct {
	Date         Date  `json:"date"`
	DailyCount   int64 `json:"daily_count"`
	MonthlyCount int64 `json:"monthly_count"`
}

// Store holds the recorded history, ordered by date with unique dates. A
// single invocation is the only writer; concurrent invocations must be
// excluded by the external scheduler.
type Store struct {
	records []CountRecord
}

// Load reads the history at path. A missing file yields an empty store; an
// unreadable or schema-invalid file is an error.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("No history at %s, starting empty", path)
			return &Store{}, nil
		}
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}

	var records []CountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, rec := range records {
		if rec.DailyCount < 0 || rec.MonthlyCount < 0 {
			return nil, fmt.Errorf("%w: negative count on %s", ErrCorrupt, rec.Date)
		}
	}

	slices.SortFunc(records, func(a, b CountRecord) int {
		return a.Date.Compare(b.Date.Time)
	})

	for i := 1; i < len(records); i++ {
		if records[i].Date.Equal(records[i-1].Date.Time) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrCorrupt, records[i].Date)
		}
	}

	return &Store{records: records}, nil
}

// Upsert replaces the record with the same date, or inserts the record
// preserving date order.
func (s *Store) Upsert(rec CountRecord) {
	i, found := slices.BinarySearchFunc(s.records, rec, func(a, b CountRecord) int {
		return a.Date.Compare(b.Date.Time)
	})
	if found {
		s.records[i] = rec
		return
	}
	s.records = slices.Insert(s.records, i, rec)
}

// Records returns the stored records in date order.
func (s *Store) Records() []CountRecord {
	return slices.Clone(s.records)
}

func (s *Store) Len() int {
	return len(s.records)
}

// Latest returns the most recent record, if any.
func (s *Store) Latest() (CountRecord, bool) {
	if len(s.records) == 0 {
		return CountRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// Save writes the full store to path, replacing any previous file. The data
// is written to a temp file in the same directory and renamed over the
// target, so a crash never leaves a truncated history behind.
func (s *Store) Save(path string) error {
	records := s.records
	if records == nil {
		records = []CountRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing history: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing history %s: %w", path, err)
	}

	return nil
}
