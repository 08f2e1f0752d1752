package migration

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lherron/habitus/internal/domain"
)

// bucketWindow is how far a completed task may sit from a task-log entry's
// timestamp and still belong to it.
const bucketWindow = time.Hour

// Decoded is the content of a backup file, grouped by section.
type Decoded struct {
	Collections

	// Meta is nil when the file has no METADATA row.
	Meta *Metadata
	// Rows counts the data rows read, including skipped ones.
	Rows int
	// Skipped counts rows that could not be decoded.
	Skipped int
	// Warnings lists every row-level problem, in file order.
	Warnings []*Error
	// RevMismatch is set when the rows do not hash to the recorded revision.
	RevMismatch bool
}

// DecodeRows turns parsed CSV records into collections. The first record
// must be the exact header; anything else is InvalidFormat. Rows whose
// payload cannot be decoded are skipped and reported in Warnings.
func DecodeRows(records [][]string) (*Decoded, error) {
	if len(records) == 0 {
		return nil, &Error{Kind: KindInvalidFormat, Op: "import", Msg: "file is empty"}
	}
	if !isHeader(records[0]) {
		return nil, &Error{
			Kind: KindInvalidFormat,
			Op:   "import",
			Msg:  fmt.Sprintf("unexpected header %q", strings.Join(records[0], ",")),
		}
	}

	d := &Decoded{Collections: NewCollections()}
	dec := &decoder{
		d:     d,
		tasks: map[string]int{},
		goals: map[string]int{},
		ideas: map[string]int{},
	}

	var data [][]string
	for i, rec := range records[1:] {
		line := i + 2
		d.Rows++

		if len(rec) < len(Header) {
			rec = append(rec, make([]string, len(Header)-len(rec))...)
		}
		row := Row{
			Section:   Section(rec[0]),
			Type:      rec[1],
			ID:        rec[2],
			Data:      rec[3],
			Timestamp: rec[4],
			Summary:   rec[5],
		}
		if row.Section != SectionMetadata {
			data = append(data, row.fields())
		}

		if err := dec.decode(line, row); err != nil {
			d.Skipped++
			d.Warnings = append(d.Warnings, err)
		}
	}

	if d.Meta != nil && d.Meta.SnapshotRev != "" {
		d.RevMismatch = ComputeSnapshotRev(data) != d.Meta.SnapshotRev
	}

	return d, nil
}

func isHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i, name := range Header {
		field := rec[i]
		if i == 0 {
			field = strings.TrimPrefix(field, "\ufeff")
		}
		if field != name {
			return false
		}
	}
	return true
}

type bucket struct {
	at    time.Time
	raw   string
	timed bool
	index int
}

type decoder struct {
	d *Decoded

	// positions of records by id, for replacing duplicates in place
	tasks map[string]int
	goals map[string]int
	ideas map[string]int

	buckets []bucket
}

func (dec *decoder) decode(line int, row Row) *Error {
	d := dec.d

	fail := func(msg string, err error) *Error {
		return rowError(line, row.Section, msg, err)
	}

	switch row.Section {
	case SectionMetadata:
		var meta Metadata
		if err := json.Unmarshal([]byte(row.Data), &meta); err != nil {
			return fail("invalid metadata", err)
		}
		d.Meta = &meta

	case SectionTasks:
		var t domain.Task
		if err := json.Unmarshal([]byte(row.Data), &t); err != nil {
			return fail("invalid task", err)
		}
		if t.ID == "" {
			t.ID = row.ID
		}
		if dup := upsert(&d.Tasks, dec.tasks, t.ID, t); dup {
			d.Warnings = append(d.Warnings, fail("duplicate task id "+t.ID+", keeping the later row", nil))
		}

	case SectionRoles:
		var r rolePayload
		if err := json.Unmarshal([]byte(row.Data), &r); err != nil {
			return fail("invalid role", err)
		}
		d.Roles = append(d.Roles, r.Name)

	case SectionGoals:
		var g domain.Goal
		if err := json.Unmarshal([]byte(row.Data), &g); err != nil {
			return fail("invalid goal", err)
		}
		if g.ID == "" {
			g.ID = row.ID
		}
		if dup := upsert(&d.Goals, dec.goals, g.ID, g); dup {
			d.Warnings = append(d.Warnings, fail("duplicate goal id "+g.ID+", keeping the later row", nil))
		}

	case SectionMetrics:
		var m domain.WeeklyMetric
		if err := json.Unmarshal([]byte(row.Data), &m); err != nil {
			return fail("invalid metric", err)
		}
		d.Metrics = append(d.Metrics, m)

	case SectionTaskLog:
		var t domain.Task
		if err := json.Unmarshal([]byte(row.Data), &t); err != nil {
			return fail("invalid completed task", err)
		}
		dec.addToLog(row.Timestamp, t)

	case SectionCheckIn:
		var state domain.CheckInState
		if err := json.Unmarshal([]byte(row.Data), &state); err != nil {
			return fail("invalid check-in state", err)
		}
		if state == nil {
			state = domain.CheckInState{}
		}
		d.CheckIn = state

	case SectionIdeas:
		var idea domain.Idea
		if err := json.Unmarshal([]byte(row.Data), &idea); err != nil {
			return fail("invalid idea", err)
		}
		if idea.ID == "" {
			idea.ID = row.ID
		}
		if dup := upsert(&d.Ideas, dec.ideas, idea.ID, idea); dup {
			d.Warnings = append(d.Warnings, fail("duplicate idea id "+idea.ID+", keeping the later row", nil))
		}

	case SectionSettings:
		var p settingPayload
		if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
			return fail("invalid setting", err)
		}
		if p.Key == "" {
			p.Key = row.ID
		}
		f, ok := lookupSetting(p.Key)
		if !ok {
			return fail("unknown setting "+p.Key, nil)
		}
		if len(p.Value) == 0 {
			return fail("setting "+p.Key+" has no value", nil)
		}
		if err := f.load(&d.Settings, p.Value); err != nil {
			return fail("invalid value for setting "+p.Key, err)
		}

	default:
		return fail("unknown section", nil)
	}

	return nil
}

// addToLog puts t into the nearest bucket within bucketWindow of the row
// timestamp, or opens a new bucket stamped with it. Rows whose timestamp
// does not parse share a bucket only with rows carrying the same string.
func (dec *decoder) addToLog(stamp string, t domain.Task) {
	at, err := domain.ParseTimestamp(stamp)
	timed := err == nil

	best := -1
	bestDist := time.Duration(math.MaxInt64)
	for i, b := range dec.buckets {
		if b.timed != timed {
			continue
		}
		if !timed {
			if b.raw == stamp {
				best = i
				break
			}
			continue
		}
		dist := at.Sub(b.at)
		if dist < 0 {
			dist = -dist
		}
		if dist <= bucketWindow && dist < bestDist {
			best, bestDist = i, dist
		}
	}

	log := &dec.d.TaskLog
	if best >= 0 {
		entry := &(*log)[dec.buckets[best].index]
		entry.Tasks = append(entry.Tasks, t)
		return
	}

	dec.buckets = append(dec.buckets, bucket{at: at, raw: stamp, timed: timed, index: len(*log)})
	*log = append(*log, domain.TaskLogEntry{Timestamp: stamp, Tasks: []domain.Task{t}})
}

// upsert appends v to list, or replaces the earlier record with the same id.
// It reports whether a replacement happened.
func upsert[T any](list *[]T, index map[string]int, id string, v T) bool {
	if i, ok := index[id]; ok {
		(*list)[i] = v
		return true
	}
	index[id] = len(*list)
	*list = append(*list, v)
	return false
}
